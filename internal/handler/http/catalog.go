package http

import (
	"log/slog"
	"net/http"

	"github.com/ShadEl7/her-essence-website/internal/catalog"
	"github.com/ShadEl7/her-essence-website/pkg/httputil"
)

// CatalogHandler serves the product search widget.
type CatalogHandler struct {
	catalog *catalog.Service
	logger  *slog.Logger
}

// NewCatalogHandler creates a catalog HTTP handler.
func NewCatalogHandler(svc *catalog.Service, l *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: svc, logger: l}
}

// Search handles GET /api/v1/products/search?q=
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	result, err := h.catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}
