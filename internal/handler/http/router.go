// Package http exposes the storefront API over chi.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ShadEl7/her-essence-website/internal/cart"
	"github.com/ShadEl7/her-essence-website/internal/catalog"
	"github.com/ShadEl7/her-essence-website/internal/checkout"
	"github.com/ShadEl7/her-essence-website/internal/notify"
	"github.com/ShadEl7/her-essence-website/internal/tracking"
	"github.com/ShadEl7/her-essence-website/pkg/health"
	"github.com/ShadEl7/her-essence-website/pkg/logger"
	"github.com/ShadEl7/her-essence-website/pkg/middleware"
)

// searchMaxAge is how long browsers may cache search results.
const searchMaxAge = time.Minute

// RouterConfig holds the services and settings the router is built from.
type RouterConfig struct {
	ServiceName string
	Currency    string
	CORS        middleware.CORSConfig
	PprofCIDRs  []string

	Carts    *cart.Registry
	Catalog  *catalog.Service
	Checkout *checkout.Service
	Tracking tracking.Tracker
	Notifier *notify.Notifier
	Health   *health.Handler
	Logger   *slog.Logger
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	l := cfg.Logger
	if l == nil {
		l = logger.Discard()
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "storefront"
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(l))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(l))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(l))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	if cfg.Health != nil {
		r.Get("/health/live", cfg.Health.LivenessHandler())
		r.Get("/health/ready", cfg.Health.ReadinessHandler())
	}
	r.Handle("/metrics", promhttp.Handler())

	middleware.RegisterPprof(r, cfg.PprofCIDRs, l)

	if cfg.Carts != nil {
		cartHandler := NewCartHandler(cfg.Carts, cfg.Catalog, cfg.Notifier, cfg.Currency, l)

		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(middleware.NoStore)
			r.Use(middleware.CartSession())

			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Get("/notifications", cartHandler.Notifications)

			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{id}", cartHandler.RemoveItem)
		})
	}

	if cfg.Catalog != nil {
		catalogHandler := NewCatalogHandler(cfg.Catalog, l)
		r.With(middleware.CacheControl(searchMaxAge)).Get("/api/v1/products/search", catalogHandler.Search)
	}

	if cfg.Checkout != nil {
		checkoutHandler := NewCheckoutHandler(cfg.Checkout, l)
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(middleware.NoStore)
			r.Post("/create-checkout-session", checkoutHandler.CreateSession)
			r.Get("/order-details", checkoutHandler.OrderDetails)
		})
	}

	if cfg.Tracking != nil {
		trackingHandler := NewTrackingHandler(cfg.Tracking, l)
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(middleware.NoStore)
			r.Post("/api/track-order", trackingHandler.TrackOrder)
			r.Get("/api/order-status/{orderNumber}", trackingHandler.OrderStatus)
			r.Post("/api/tracking-updates", trackingHandler.TrackingUpdates)
		})
	}

	return r
}
