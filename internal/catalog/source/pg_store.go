package source

import (
	"context"
	"fmt"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const selectProducts = `SELECT id, name, category, price::text, image, stock FROM products ORDER BY id`

// Querier is satisfied by *pgxpool.Pool.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PgSource reads the catalog from the products table.
type PgSource struct {
	db Querier
}

// NewPgSource creates a catalog source backed by a PostgreSQL connection pool.
func NewPgSource(dbp Querier) *PgSource {
	return &PgSource{db: dbp}
}

// Fetch returns every product ordered by id.
func (p *PgSource) Fetch(ctx context.Context) ([]catalog.Product, error) {
	rows, err := p.db.Query(ctx, selectProducts)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var (
		p     catalog.Product
		price string
		stock int32
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Category, &price, &p.Image, &stock); err != nil {
		return catalog.Product{}, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("invalid price %q for product %d: %w", price, p.ID, err)
	}
	p.Price = d
	p.Stock = int(stock)
	return p, nil
}
