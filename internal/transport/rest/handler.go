// Package rest exposes the storefront session commands over HTTP.
package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/checkout"
	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/platform/web"
	"github.com/abgdnv/storefront/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Storefront is the command set the handler drives.
type Storefront interface {
	LoadCatalog(ctx context.Context) error
	Catalog() session.CatalogView
	UpdateView(u session.ViewUpdate) session.CatalogView
	ChangePage(delta int) session.CatalogView
	AddToCart(ctx context.Context, productID int64) (session.CartView, error)
	RemoveFromCart(productID int64) session.CartView
	ClearCart() session.CartView
	Cart() session.CartView
	Checkout(ctx context.Context) (checkout.Receipt, session.CartView, error)
}

type Handler struct {
	storefront Storefront
	validate   *validator.Validate
	logger     *slog.Logger
}

// ViewRequest changes the catalog view inputs. Absent fields keep their value.
type ViewRequest struct {
	Category *string `json:"category" validate:"omitempty,max=100"`
	Search   *string `json:"search"   validate:"omitempty,max=100"`
	Sort     *string `json:"sort"     validate:"omitempty,oneof=none price-asc price-desc name-asc name-desc"`
	Page     *int    `json:"page"     validate:"omitempty,gte=1,lte=10000"`
}

// ReceiptResponse is the finalized purchase as returned to the client.
type ReceiptResponse struct {
	ID        uuid.UUID         `json:"id"`
	IssuedAt  string            `json:"issued_at"`
	Customer  checkout.Customer `json:"customer"`
	ItemCount int               `json:"item_count"`
	Subtotal  string            `json:"subtotal"`
	Tax       string            `json:"tax"`
	Total     string            `json:"total"`
}

// CheckoutResponse carries the receipt and the cart left after checkout.
// Exported is false when the receipt document could not be produced.
type CheckoutResponse struct {
	Receipt  ReceiptResponse  `json:"receipt"`
	Exported bool             `json:"exported"`
	Cart     session.CartView `json:"cart"`
}

// NewHandler creates a new Handler over the given storefront.
func NewHandler(storefront Storefront, logger *slog.Logger) *Handler {
	return &Handler{
		storefront: storefront,
		validate:   validator.New(),
		logger:     logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the storefront routes.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/", h.GetCatalog)
		r.Put("/view", h.UpdateView)
		r.Post("/view/page", h.ChangePage)
		r.Post("/reload", h.ReloadCatalog)
	})
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/checkout", h.Checkout)
		r.Route("/items/{id}", func(r chi.Router) {
			r.Post("/", h.AddItem)
			r.Delete("/", h.RemoveItem)
		})
	})
	r.Get("/healthz", h.HealthCheck)
}

func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	web.RespondJSON(w, mLogger, http.StatusOK, h.storefront.Catalog())
}

// UpdateView sets category, search text, sort criterion or page.
func (h *Handler) UpdateView(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var req ViewRequest
	if !web.DecodeAndValidate(w, r, mLogger, h.validate, &req) {
		return
	}

	update := session.ViewUpdate{Category: req.Category, Search: req.Search, Page: req.Page}
	if req.Sort != nil {
		sort, err := catalog.ParseSortCriterion(*req.Sort)
		if err != nil {
			web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
			return
		}
		update.Sort = &sort
	}
	mLogger.DebugContext(r.Context(), "Received request to update view", "view", req)
	web.RespondJSON(w, mLogger, http.StatusOK, h.storefront.UpdateView(update))
}

// ChangePage moves one page forward (delta=1) or back (delta=-1).
func (h *Handler) ChangePage(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	delta, ok := web.ParseValidateOneOf(r, w, mLogger, "delta", -1, 1)
	if !ok {
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, h.storefront.ChangePage(delta))
}

// ReloadCatalog fetches the catalog document again.
func (h *Handler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	if err := h.storefront.LoadCatalog(r.Context()); err != nil {
		mLogger.ErrorContext(r.Context(), "Catalog reload failed", "error", err)
		web.RespondError(w, mLogger, http.StatusBadGateway, "Products could not be loaded")
		return
	}
	mLogger.InfoContext(r.Context(), "Catalog reloaded")
	web.RespondJSON(w, mLogger, http.StatusOK, h.storefront.Catalog())
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	web.RespondJSON(w, mLogger, http.StatusOK, h.storefront.Cart())
}

// AddItem adds one unit of the product to the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseProductID(w, r, mLogger)
	if !ok {
		return
	}

	view, err := h.storefront.AddToCart(r.Context(), id)
	if err != nil {
		if errors.Is(err, sferrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
			return
		} else if errors.Is(err, sferrors.ErrStockExceeded) {
			mLogger.WarnContext(r.Context(), "Insufficient stock", "ID", id)
			web.RespondError(w, mLogger, http.StatusConflict, fmt.Sprintf("No more units available for product %d", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error adding product to cart", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to add product to cart")
		return
	}
	mLogger.DebugContext(r.Context(), "Product added to cart", "ID", id, "items", view.ItemCount)
	web.RespondJSON(w, mLogger, http.StatusOK, view)
}

// RemoveItem removes the whole line of the product. Unknown products are ignored.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseProductID(w, r, mLogger)
	if !ok {
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, h.storefront.RemoveFromCart(id))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	web.RespondJSON(w, mLogger, http.StatusOK, h.storefront.ClearCart())
}

// Checkout finalizes the purchase. A failed receipt export is not an HTTP error:
// the purchase is complete and the cart is already cleared.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	receipt, view, err := h.storefront.Checkout(r.Context())
	if err != nil && !errors.Is(err, sferrors.ErrReceiptExport) {
		if errors.Is(err, sferrors.ErrEmptyCart) {
			web.RespondError(w, mLogger, http.StatusConflict, "Add products before buying")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error finalizing purchase", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to finalize purchase")
		return
	}

	totals := receipt.Totals.Rounded()
	resp := CheckoutResponse{
		Receipt: ReceiptResponse{
			ID:        receipt.ID,
			IssuedAt:  receipt.IssuedAt.Format(time.RFC3339),
			Customer:  receipt.Customer,
			ItemCount: receipt.ItemCount(),
			Subtotal:  totals.Subtotal.StringFixed(2),
			Tax:       totals.Tax.StringFixed(2),
			Total:     totals.Total.StringFixed(2),
		},
		Exported: err == nil,
		Cart:     view,
	}
	mLogger.InfoContext(r.Context(), "Purchase finalized", slog.String("ID", receipt.ID.String()), "exported", resp.Exported)
	web.RespondJSON(w, mLogger, http.StatusCreated, resp)
}

// HealthCheck is a simple liveness endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
