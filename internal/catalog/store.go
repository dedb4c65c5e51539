package catalog

import (
	"fmt"
	"slices"
	"sync"

	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/go-playground/validator/v10"
)

// Store holds the products of the current session and the derived category list.
// It is replaced wholesale by Load and read concurrently while a load is in flight.
type Store struct {
	mu         sync.RWMutex
	products   []Product
	index      map[int64]int
	categories []string
	validate   *validator.Validate
}

// NewStore creates an empty Store. Until Load succeeds every query sees an empty catalog.
func NewStore() *Store {
	return &Store{
		index:      make(map[int64]int),
		categories: []string{AllCategories},
		validate:   validator.New(),
	}
}

// Load validates products and replaces the catalog.
// On error the previous content is dropped and the store is left empty.
func (s *Store) Load(products []Product) error {
	index := make(map[int64]int, len(products))
	categories := []string{AllCategories}
	seen := make(map[string]struct{})

	for i, p := range products {
		if err := s.validateProduct(p); err != nil {
			s.Reset()
			return fmt.Errorf("%w: record %d: %w", sferrors.ErrCatalogLoadFailure, i, err)
		}
		if _, dup := index[p.ID]; dup {
			s.Reset()
			return fmt.Errorf("%w: duplicate product id %d: %w", sferrors.ErrCatalogLoadFailure, p.ID, sferrors.ErrInvalidProduct)
		}
		index[p.ID] = i
		if _, ok := seen[p.Category]; !ok {
			seen[p.Category] = struct{}{}
			categories = append(categories, p.Category)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = slices.Clone(products)
	s.index = index
	s.categories = categories
	return nil
}

// Reset empties the catalog.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = nil
	s.index = make(map[int64]int)
	s.categories = []string{AllCategories}
}

// Categories returns "all" followed by the distinct categories in first-seen order.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories)
}

// Products returns a copy of the catalog in load order.
func (s *Store) Products() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.products)
}

// FindByID returns a copy of the product.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Store) FindByID(id int64) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return Product{}, fmt.Errorf("product %d: %w", id, sferrors.ErrProductNotFound)
	}
	return s.products[i], nil
}

// Len reports the number of loaded products.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

func (s *Store) validateProduct(p Product) error {
	if err := s.validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", sferrors.ErrInvalidProduct, err)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: negative price for product %d", sferrors.ErrInvalidProduct, p.ID)
	}
	return nil
}
