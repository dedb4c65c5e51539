// Package errors provides the sentinel errors of the storefront engine.
// None of them is fatal; callers match them with errors.Is and tell the user.
package errors

import "errors"

// ErrCatalogLoadFailure means a catalog load did not produce a usable product list.
var ErrCatalogLoadFailure = errors.New("catalog load failed")

// ErrInvalidProduct is wrapped by ErrCatalogLoadFailure when a record fails validation.
var ErrInvalidProduct = errors.New("invalid product")

var ErrProductNotFound = errors.New("product not found")

// ErrStockExceeded means one more unit would exceed the product stock.
var ErrStockExceeded = errors.New("stock exceeded")

var ErrEmptyCart = errors.New("cart is empty")

// ErrReceiptExport is returned by checkout when the receipt document could not be produced.
var ErrReceiptExport = errors.New("receipt export failed")
