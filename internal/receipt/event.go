package receipt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/abgdnv/storefront/internal/checkout"
	"github.com/abgdnv/storefront/internal/platform/messaging"
	"github.com/google/uuid"
)

// FinalizedEvent announces a finalized purchase. Amounts are rounded strings.
type FinalizedEvent struct {
	ReceiptID uuid.UUID `json:"receipt_id"`
	Email     string    `json:"email"`
	Items     int       `json:"items"`
	Subtotal  string    `json:"subtotal"`
	Tax       string    `json:"tax"`
	Total     string    `json:"total"`
	IssuedAt  time.Time `json:"issued_at"`
}

func (e FinalizedEvent) Subject() string {
	return messaging.ReceiptsFinalizedSubject
}

func (e FinalizedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// EventExporter publishes a FinalizedEvent for each receipt.
type EventExporter struct {
	publisher messaging.Publisher
}

func NewEventExporter(publisher messaging.Publisher) *EventExporter {
	return &EventExporter{publisher: publisher}
}

func (e *EventExporter) Export(ctx context.Context, r checkout.Receipt) error {
	totals := r.Totals.Rounded()
	return e.publisher.Publish(ctx, FinalizedEvent{
		ReceiptID: r.ID,
		Email:     r.Customer.Email,
		Items:     r.ItemCount(),
		Subtotal:  totals.Subtotal.StringFixed(2),
		Tax:       totals.Tax.StringFixed(2),
		Total:     totals.Total.StringFixed(2),
		IssuedAt:  r.IssuedAt,
	})
}
