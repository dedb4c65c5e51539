package session

import (
	"github.com/abgdnv/storefront/internal/cart"
	"github.com/abgdnv/storefront/internal/catalog"
)

// ViewUpdate changes the view inputs; nil fields are left as they are.
type ViewUpdate struct {
	Category *string
	Search   *string
	Sort     *catalog.SortCriterion
	Page     *int
}

// CatalogView is the render model of the product grid.
type CatalogView struct {
	Categories []string              `json:"categories"`
	Category   string                `json:"category"`
	Search     string                `json:"search"`
	Sort       catalog.SortCriterion `json:"sort"`
	Result     catalog.PageResult    `json:"result"`
}

// LineView is one cart line with presentation amounts.
type LineView struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Amount    string `json:"amount"`
}

// CartView is the render model of the cart panel. Amounts are rounded to cents.
type CartView struct {
	Lines     []LineView `json:"lines"`
	ItemCount int        `json:"item_count"`
	Subtotal  string     `json:"subtotal"`
	Tax       string     `json:"tax"`
	Total     string     `json:"total"`
}

func newCartView(lines []cart.Line, totals cart.Totals) CartView {
	view := CartView{Lines: make([]LineView, 0, len(lines))}
	for _, l := range lines {
		view.Lines = append(view.Lines, LineView{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Image:     l.Product.Image,
			UnitPrice: l.Product.Price.StringFixed(2),
			Quantity:  l.Quantity,
			Amount:    l.Amount().StringFixed(2),
		})
		view.ItemCount += l.Quantity
	}
	rounded := totals.Rounded()
	view.Subtotal = rounded.Subtotal.StringFixed(2)
	view.Tax = rounded.Tax.StringFixed(2)
	view.Total = rounded.Total.StringFixed(2)
	return view
}
