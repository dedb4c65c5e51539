package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/storefront/internal/cart"
	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Exporter produces the receipt document.
type Exporter interface {
	Export(ctx context.Context, receipt Receipt) error
}

// Ledger is the part of the cart ledger checkout reads and resets.
type Ledger interface {
	Len() int
	Lines() []cart.Line
	Totals() cart.Totals
	Clear()
}

// Coordinator finalizes purchases.
type Coordinator struct {
	exporter Exporter
	logger   *slog.Logger
	now      func() time.Time
	receipts metric.Int64Counter
}

// NewCoordinator creates a Coordinator that hands receipts to exporter.
func NewCoordinator(exporter Exporter, logger *slog.Logger) *Coordinator {
	meter := otel.Meter("storefront-checkout")
	receipts, err := meter.Int64Counter("receipts_finalized", metric.WithDescription("Total number of finalized receipts"))
	if err != nil {
		panic(fmt.Sprintf("failed to create receipts_finalized counter: %v", err))
	}
	return &Coordinator{
		exporter: exporter,
		logger:   logger.With("component", "checkout"),
		now:      time.Now,
		receipts: receipts,
	}
}

// Finalize snapshots the ledger into a receipt, exports it and clears the ledger.
// Returns ErrEmptyCart, without exporting, when the ledger has no lines.
// The ledger is cleared even when the export fails; the receipt is then returned
// together with an error wrapping ErrReceiptExport.
func (c *Coordinator) Finalize(ctx context.Context, ledger Ledger, customer Customer) (Receipt, error) {
	if ledger.Len() == 0 {
		return Receipt{}, sferrors.ErrEmptyCart
	}

	receipt := Receipt{
		ID:       uuid.New(),
		IssuedAt: c.now().UTC(),
		Customer: customer,
		Lines:    ledger.Lines(),
		Totals:   ledger.Totals(),
	}

	exportErr := c.exporter.Export(ctx, receipt)
	ledger.Clear()
	c.receipts.Add(ctx, 1)

	if exportErr != nil {
		c.logger.ErrorContext(ctx, "Receipt export failed, cart cleared anyway", "receipt_id", receipt.ID, "error", exportErr)
		return receipt, fmt.Errorf("receipt %s: %w: %w", receipt.ID, sferrors.ErrReceiptExport, exportErr)
	}
	c.logger.InfoContext(ctx, "Purchase finalized", "receipt_id", receipt.ID,
		"items", receipt.ItemCount(), "total", receipt.Totals.Total.StringFixed(2))
	return receipt, nil
}
