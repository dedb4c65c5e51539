// Package catalog holds the session product catalog and the view query engine over it.
package catalog

import (
	"github.com/shopspring/decimal"
)

// AllCategories is the sentinel category that disables the category filter.
const AllCategories = "all"

// Product is an immutable catalog entry. JSON names follow the catalog document.
type Product struct {
	ID       int64           `json:"id"        validate:"required"`
	Name     string          `json:"nombre"    validate:"required,max=200"`
	Category string          `json:"categoria" validate:"required"`
	Price    decimal.Decimal `json:"precio"`
	Image    string          `json:"imagen"`
	Stock    int             `json:"stock"     validate:"min=0"`
}
