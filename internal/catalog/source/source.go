// Package source fetches the catalog document the store is loaded from.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/abgdnv/storefront/internal/catalog"
)

// Source produces the full product list. It is called once at startup and
// again only when a reload is requested.
type Source interface {
	Fetch(ctx context.Context) ([]catalog.Product, error)
}

// decode reads a JSON array of products.
func decode(r io.Reader) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, fmt.Errorf("failed to decode catalog document: %w", err)
	}
	if products == nil {
		return nil, fmt.Errorf("catalog document is not a product list")
	}
	return products, nil
}
