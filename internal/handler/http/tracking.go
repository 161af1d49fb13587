package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ShadEl7/her-essence-website/internal/tracking"
	apperrors "github.com/ShadEl7/her-essence-website/pkg/errors"
	"github.com/ShadEl7/her-essence-website/pkg/httputil"
)

// TrackingHandler serves the order tracking page. Every response carries a
// success flag; failures add a message.
type TrackingHandler struct {
	tracking tracking.Tracker
	logger   *slog.Logger
}

// NewTrackingHandler creates a tracking HTTP handler.
func NewTrackingHandler(svc tracking.Tracker, l *slog.Logger) *TrackingHandler {
	return &TrackingHandler{tracking: svc, logger: l}
}

// TrackRequest is the body of the order lookup endpoints.
type TrackRequest struct {
	OrderNumber string `json:"orderNumber"`
	Email       string `json:"email"`
}

type trackingFailure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type trackOrderResponse struct {
	Success bool            `json:"success"`
	Order   *tracking.Order `json:"order"`
}

type orderStatusResponse struct {
	Success bool `json:"success"`
	*tracking.StatusSummary
}

type trackingUpdatesResponse struct {
	Success bool `json:"success"`
	*tracking.UpdatesSummary
}

// TrackOrder handles POST /api/track-order
func (h *TrackingHandler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	var req TrackRequest
	_ = decodeJSON(w, r, &req)

	order, err := h.tracking.TrackOrder(r.Context(), req.OrderNumber, req.Email)
	if err != nil {
		h.writeFailure(w, r, err, tracking.MsgTrackFailed)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, trackOrderResponse{Success: true, Order: order})
}

// OrderStatus handles GET /api/order-status/{orderNumber}
func (h *TrackingHandler) OrderStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.tracking.OrderStatus(r.Context(), chi.URLParam(r, "orderNumber"))
	if err != nil {
		h.writeFailure(w, r, err, tracking.MsgStatusFailed)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, orderStatusResponse{Success: true, StatusSummary: status})
}

// TrackingUpdates handles POST /api/tracking-updates
func (h *TrackingHandler) TrackingUpdates(w http.ResponseWriter, r *http.Request) {
	var req TrackRequest
	_ = decodeJSON(w, r, &req)

	updates, err := h.tracking.TrackingUpdates(r.Context(), req.OrderNumber, req.Email)
	if err != nil {
		h.writeFailure(w, r, err, tracking.MsgUpdatesFailed)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, trackingUpdatesResponse{Success: true, UpdatesSummary: updates})
}

func (h *TrackingHandler) writeFailure(w http.ResponseWriter, r *http.Request, err error, internalMsg string) {
	status := apperrors.HTTPStatus(err)
	message := apperrors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "order tracking failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		message = internalMsg
	}
	httputil.WriteJSON(w, status, trackingFailure{Success: false, Message: message})
}
