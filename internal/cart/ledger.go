// Package cart implements the cart ledger: one line per product, bounded by stock.
package cart

import (
	"fmt"
	"slices"

	"github.com/abgdnv/storefront/internal/catalog"
	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/shopspring/decimal"
)

// TaxRate is applied to the subtotal.
var TaxRate = decimal.RequireFromString("0.21")

// Catalog is the product lookup the ledger needs.
type Catalog interface {
	FindByID(id int64) (catalog.Product, error)
}

// Line is one product in the cart. Product is a snapshot taken when the
// product was first added; later catalog loads do not change it.
type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Amount is the exact line amount, price × quantity.
func (l Line) Amount() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals are exact amounts; call Rounded for presentation.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Rounded returns the totals rounded half away from zero to two decimals.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal: t.Subtotal.Round(2),
		Tax:      t.Tax.Round(2),
		Total:    t.Total.Round(2),
	}
}

// Ledger holds the cart lines of one session. It is not safe for concurrent use.
type Ledger struct {
	catalog Catalog
	lines   []Line
}

// NewLedger creates an empty ledger backed by the given catalog.
func NewLedger(c Catalog) *Ledger {
	return &Ledger{catalog: c}
}

// AddProduct adds one unit of the product.
// The stock ceiling is the one of the current catalog entry; the line keeps the
// snapshot taken when it was created.
// Returns ErrProductNotFound if the product is not in the catalog and ErrStockExceeded
// if one more unit would exceed the stock; the ledger is unchanged in both cases.
func (l *Ledger) AddProduct(productID int64) (Line, error) {
	p, err := l.catalog.FindByID(productID)
	if err != nil {
		return Line{}, err
	}

	if i := l.find(productID); i >= 0 {
		line := &l.lines[i]
		if line.Quantity >= p.Stock {
			return *line, fmt.Errorf("product %d at %d of %d units: %w",
				productID, line.Quantity, p.Stock, sferrors.ErrStockExceeded)
		}
		line.Quantity++
		return *line, nil
	}

	if p.Stock < 1 {
		return Line{Product: p}, fmt.Errorf("product %d is out of stock: %w", productID, sferrors.ErrStockExceeded)
	}
	line := Line{Product: p, Quantity: 1}
	l.lines = append(l.lines, line)
	return line, nil
}

// Reconcile brings every line back within the stock of the current catalog.
// Quantities above the stock are lowered to it; lines whose product is gone or
// out of stock are dropped. It returns the number of lines changed.
func (l *Ledger) Reconcile() int {
	changed := 0
	l.lines = slices.DeleteFunc(l.lines, func(line Line) bool {
		p, err := l.catalog.FindByID(line.Product.ID)
		if err != nil || p.Stock < 1 {
			changed++
			return true
		}
		return false
	})
	for i := range l.lines {
		p, _ := l.catalog.FindByID(l.lines[i].Product.ID)
		if l.lines[i].Quantity > p.Stock {
			l.lines[i].Quantity = p.Stock
			changed++
		}
	}
	return changed
}

// RemoveProduct deletes the line of the product. Absent products are ignored.
func (l *Ledger) RemoveProduct(productID int64) {
	if i := l.find(productID); i >= 0 {
		l.lines = slices.Delete(l.lines, i, i+1)
	}
}

// Clear removes all lines.
func (l *Ledger) Clear() {
	l.lines = nil
}

// Lines returns a copy of the lines in the order products were first added.
func (l *Ledger) Lines() []Line {
	return slices.Clone(l.lines)
}

// Len is the number of distinct products in the cart.
func (l *Ledger) Len() int {
	return len(l.lines)
}

// ItemCount is the sum of all quantities.
func (l *Ledger) ItemCount() int {
	n := 0
	for _, line := range l.lines {
		n += line.Quantity
	}
	return n
}

// Totals sums the exact line amounts and derives tax and total from that sum.
func (l *Ledger) Totals() Totals {
	return ComputeTotals(l.lines)
}

// ComputeTotals is Totals over an arbitrary set of lines.
func ComputeTotals(lines []Line) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Amount())
	}
	tax := subtotal.Mul(TaxRate)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

func (l *Ledger) find(productID int64) int {
	return slices.IndexFunc(l.lines, func(line Line) bool {
		return line.Product.ID == productID
	})
}
