// Package session is the command interface of the storefront: every user action is a
// method call that mutates the owned catalog/cart state and returns a render model.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/abgdnv/storefront/internal/cart"
	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/catalog/source"
	"github.com/abgdnv/storefront/internal/checkout"
	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/notify"
)

// Session owns the catalog, the cart and the current view inputs of one shopper.
// Commands are serialized; the catalog load runs outside the lock so views taken
// while it is in flight see an empty catalog.
type Session struct {
	mu       sync.Mutex
	view     catalog.ViewQuery
	store    *catalog.Store
	engine   *catalog.QueryEngine
	ledger   *cart.Ledger
	checkout *checkout.Coordinator
	source   source.Source
	notifier notify.Notifier
	customer checkout.Customer
	logger   *slog.Logger
}

// Dependencies groups the collaborators of a Session.
type Dependencies struct {
	Source   source.Source
	Engine   *catalog.QueryEngine
	Checkout *checkout.Coordinator
	Notifier notify.Notifier
	Customer checkout.Customer
	Logger   *slog.Logger
}

// New creates a session with an empty catalog and cart.
func New(deps Dependencies) *Session {
	store := catalog.NewStore()
	return &Session{
		view:     catalog.ViewQuery{Category: catalog.AllCategories, Page: 1},
		store:    store,
		engine:   deps.Engine,
		ledger:   cart.NewLedger(store),
		checkout: deps.Checkout,
		source:   deps.Source,
		notifier: deps.Notifier,
		customer: deps.Customer,
		logger:   deps.Logger.With("component", "session"),
	}
}

// LoadCatalog fetches the catalog and replaces the store content. The view goes back
// to all categories, no search text, page 1. After a successful load the cart lines
// are clamped to the new stock.
// On failure the store is left empty, the cart is kept, the user is notified and an
// error wrapping ErrCatalogLoadFailure is returned. Nothing is retried.
func (s *Session) LoadCatalog(ctx context.Context) error {
	products, err := s.source.Fetch(ctx)
	if err == nil {
		err = s.store.Load(products)
	} else {
		s.store.Reset()
		err = fmt.Errorf("%w: %w", sferrors.ErrCatalogLoadFailure, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Category = catalog.AllCategories
	s.view.Search = ""
	s.view.Page = 1

	if err != nil {
		s.logger.ErrorContext(ctx, "Catalog load failed", "error", err)
		s.notify(ctx, "Error", "Products could not be loaded", notify.SeverityError)
		return err
	}
	s.logger.InfoContext(ctx, "Catalog loaded", "products", len(products))
	if changed := s.ledger.Reconcile(); changed > 0 {
		s.logger.WarnContext(ctx, "Cart adjusted to the new catalog", "lines", changed)
		s.notify(ctx, "Cart updated", "Some products are no longer available in the requested quantity", notify.SeverityWarning)
	}
	return nil
}

// Ready reports whether a catalog is loaded.
func (s *Session) Ready() bool {
	return s.store.Len() > 0
}

// Catalog returns the current product view.
func (s *Session) Catalog() CatalogView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalogView()
}

// UpdateView applies the non-nil fields of u. A change of category or search text
// resets the page to 1 unless u also sets the page.
func (s *Session) UpdateView(u ViewUpdate) CatalogView {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.Category != nil && *u.Category != s.view.Category {
		s.view.Category = *u.Category
		s.view.Page = 1
	}
	if u.Search != nil && *u.Search != s.view.Search {
		s.view.Search = *u.Search
		s.view.Page = 1
	}
	if u.Sort != nil {
		s.view.Sort = *u.Sort
	}
	if u.Page != nil {
		s.view.Page = *u.Page
	}
	return s.catalogView()
}

// ChangePage moves delta pages, staying within the pages of the current view.
func (s *Session) ChangePage(delta int) CatalogView {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.engine.Query(s.store.Products(), s.view)
	page := min(s.view.Page, current.PageCount+1) + delta
	if page > current.PageCount {
		page = current.PageCount
	}
	s.view.Page = max(page, 1)
	return s.catalogView()
}

// AddToCart adds one unit of the product to the cart.
func (s *Session) AddToCart(ctx context.Context, productID int64) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, err := s.ledger.AddProduct(productID)
	switch {
	case errors.Is(err, sferrors.ErrStockExceeded):
		s.notify(ctx, "Insufficient stock", "No more units available", notify.SeverityWarning)
		return s.cartView(), err
	case err != nil:
		s.logger.WarnContext(ctx, "Add to cart rejected", "product_id", productID, "error", err)
		return s.cartView(), err
	}
	s.notify(ctx, "Product added", fmt.Sprintf("%s was added to the cart", line.Product.Name), notify.SeveritySuccess)
	return s.cartView(), nil
}

// RemoveFromCart drops the product line; unknown ids are ignored.
func (s *Session) RemoveFromCart(productID int64) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.RemoveProduct(productID)
	return s.cartView()
}

// ClearCart empties the cart.
func (s *Session) ClearCart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.Clear()
	return s.cartView()
}

// Cart returns the current cart.
func (s *Session) Cart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartView()
}

// Checkout finalizes the purchase for the configured customer.
// An empty cart yields ErrEmptyCart. When the receipt export fails the cart is
// still cleared and the receipt is returned with an error wrapping ErrReceiptExport.
func (s *Session) Checkout(ctx context.Context) (checkout.Receipt, CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	receipt, err := s.checkout.Finalize(ctx, s.ledger, s.customer)
	switch {
	case errors.Is(err, sferrors.ErrEmptyCart):
		s.notify(ctx, "Empty cart", "Add products before buying", notify.SeverityInfo)
	case errors.Is(err, sferrors.ErrReceiptExport):
		s.notify(ctx, "Purchase finalized", "The purchase receipt could not be generated", notify.SeverityError)
	case err == nil:
		s.notify(ctx, "Purchase finalized", "The purchase receipt was generated", notify.SeveritySuccess)
	}
	return receipt, s.cartView(), err
}

func (s *Session) catalogView() CatalogView {
	return CatalogView{
		Categories: s.store.Categories(),
		Category:   s.view.Category,
		Search:     s.view.Search,
		Sort:       s.view.Sort,
		Result:     s.engine.Query(s.store.Products(), s.view),
	}
}

func (s *Session) cartView() CartView {
	return newCartView(s.ledger.Lines(), s.ledger.Totals())
}

// notify is best effort; a failing notifier never fails the command.
func (s *Session) notify(ctx context.Context, title, message string, severity notify.Severity) {
	n := notify.Notification{Title: title, Message: message, Severity: severity}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.WarnContext(ctx, "Notification not delivered", "title", title, "error", err)
	}
}
