package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ShadEl7/her-essence-website/internal/cart"
	"github.com/ShadEl7/her-essence-website/internal/catalog"
	"github.com/ShadEl7/her-essence-website/internal/domain"
	"github.com/ShadEl7/her-essence-website/internal/notify"
	apperrors "github.com/ShadEl7/her-essence-website/pkg/errors"
	"github.com/ShadEl7/her-essence-website/pkg/httputil"
	"github.com/ShadEl7/her-essence-website/pkg/logger"
)

// CartHandler handles the cart endpoints. Every request is scoped to the
// cart session set by middleware.CartSession.
type CartHandler struct {
	carts    *cart.Registry
	catalog  *catalog.Service
	notifier *notify.Notifier
	currency string
	logger   *slog.Logger
}

// NewCartHandler creates a cart HTTP handler.
func NewCartHandler(carts *cart.Registry, cat *catalog.Service, notifier *notify.Notifier, currency string, l *slog.Logger) *CartHandler {
	return &CartHandler{
		carts:    carts,
		catalog:  cat,
		notifier: notifier,
		currency: currency,
		logger:   l,
	}
}

// AddItemRequest is the body of POST /api/v1/cart/items. Only id is required
// when the product is in the catalog.
type AddItemRequest struct {
	ID       domain.ItemID `json:"id"`
	Name     string        `json:"name"`
	Price    *int64        `json:"price"`
	Image    string        `json:"image"`
	Category string        `json:"category"`
}

// UpdateQuantityRequest is the body of PUT /api/v1/cart/items/{id}.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

// CartResponse is the cart view returned by every cart endpoint.
type CartResponse struct {
	Items     domain.Items `json:"items"`
	Total     int64        `json:"total"`
	ItemCount int          `json:"item_count"`
	Currency  string       `json:"currency"`
}

// NotificationsResponse is the badge and toast state of a cart.
type NotificationsResponse struct {
	Badge  notify.Badge   `json:"badge"`
	Toasts []notify.Toast `json:"toasts"`
}

func (h *CartHandler) store(r *http.Request) *cart.Store {
	return h.carts.Cart(r.Context(), logger.CartSessionFromContext(r.Context()))
}

func (h *CartHandler) writeCart(w http.ResponseWriter, status int, s *cart.Store) {
	items := s.Items()
	httputil.WriteData(w, status, CartResponse{
		Items:     items,
		Total:     items.Total(),
		ItemCount: items.ItemCount(),
		Currency:  h.currency,
	})
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, http.StatusOK, h.store(r))
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	if strings.TrimSpace(req.ID.String()) == "" {
		httputil.WriteValidationError(w, errors.New("id is required"))
		return
	}

	product, err := h.resolve(r, req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	s := h.store(r)
	if err := s.AddItem(r.Context(), product); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeCart(w, http.StatusCreated, s)
}

// resolve completes a bare {id} from the catalog. A full descriptor is used
// as sent.
func (h *CartHandler) resolve(r *http.Request, req AddItemRequest) (domain.Product, error) {
	if req.Name != "" && req.Price != nil {
		return domain.Product{
			ID:       req.ID,
			Name:     req.Name,
			Price:    *req.Price,
			Image:    req.Image,
			Category: req.Category,
		}, nil
	}
	if h.catalog == nil {
		return domain.Product{}, apperrors.InvalidInput("name and price are required")
	}
	p, err := h.catalog.Product(r.Context(), req.ID)
	if err != nil {
		return domain.Product{}, err
	}
	return p.Descriptor(), nil
}

// UpdateQuantity handles PUT /api/v1/cart/items/{id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	if req.Quantity == nil {
		httputil.WriteValidationError(w, errors.New("quantity is required"))
		return
	}

	s := h.store(r)
	if err := s.SetQuantity(r.Context(), domain.ItemID(chi.URLParam(r, "id")), *req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeCart(w, http.StatusOK, s)
}

// RemoveItem handles DELETE /api/v1/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s := h.store(r)
	if err := s.RemoveItem(r.Context(), domain.ItemID(chi.URLParam(r, "id"))); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeCart(w, http.StatusOK, s)
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.store(r).Clear(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Notifications handles GET /api/v1/cart/notifications
func (h *CartHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	key := h.carts.Key(logger.CartSessionFromContext(r.Context()))
	httputil.WriteData(w, http.StatusOK, NotificationsResponse{
		Badge:  h.notifier.Badge(key),
		Toasts: h.notifier.Toasts(key),
	})
}
