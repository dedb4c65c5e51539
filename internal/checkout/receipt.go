// Package checkout finalizes a cart into a receipt and hands it to the exporter.
package checkout

import (
	"time"

	"github.com/abgdnv/storefront/internal/cart"
	"github.com/google/uuid"
)

// Customer is the buyer printed on the receipt. It comes from configuration.
type Customer struct {
	Name    string `json:"name"    koanf:"name"    validate:"required"`
	Email   string `json:"email"   koanf:"email"   validate:"required,email"`
	Address string `json:"address" koanf:"address" validate:"required"`
}

// Receipt is the finalized snapshot of a purchase.
type Receipt struct {
	ID       uuid.UUID   `json:"id"`
	IssuedAt time.Time   `json:"issued_at"`
	Customer Customer    `json:"customer"`
	Lines    []cart.Line `json:"lines"`
	Totals   cart.Totals `json:"totals"`
}

// ItemCount is the sum of the line quantities.
func (r Receipt) ItemCount() int {
	n := 0
	for _, l := range r.Lines {
		n += l.Quantity
	}
	return n
}
