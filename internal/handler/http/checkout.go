package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ShadEl7/her-essence-website/internal/checkout"
	apperrors "github.com/ShadEl7/her-essence-website/pkg/errors"
	"github.com/ShadEl7/her-essence-website/pkg/httputil"
	"github.com/ShadEl7/her-essence-website/pkg/logger"
	"github.com/ShadEl7/her-essence-website/pkg/validator"
)

// msgCheckoutFailed is shown when the payment provider fails unexpectedly.
const msgCheckoutFailed = "Unable to process payment right now. Please try again later."

// CheckoutHandler serves the checkout page's session endpoints. Responses
// are bare JSON objects; failures are {"error": "..."}.
type CheckoutHandler struct {
	checkout *checkout.Service
	logger   *slog.Logger
}

// NewCheckoutHandler creates a checkout HTTP handler.
func NewCheckoutHandler(svc *checkout.Service, l *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: svc, logger: l}
}

type checkoutError struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// CreateSession handles POST /create-checkout-session
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var in checkout.CreateSessionInput
	if err := decodeJSON(w, r, &in); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, checkoutError{Error: checkout.MsgMissingInformation})
		return
	}

	session, err := h.checkout.CreateSession(r.Context(), &in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, session)
}

// OrderDetails handles GET /order-details?session_id=
func (h *CheckoutHandler) OrderDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.checkout.OrderDetails(r.Context(), r.URL.Query().Get("session_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, details)
}

func (h *CheckoutHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		httputil.WriteJSON(w, http.StatusBadRequest, checkoutError{
			Error:  checkout.MsgMissingInformation,
			Fields: valErr.Fields(),
		})
		return
	}

	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		l := logger.FromContext(r.Context())
		if l == slog.Default() && h.logger != nil {
			l = h.logger
		}
		l.ErrorContext(r.Context(), "checkout failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		message := msgCheckoutFailed
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Status == http.StatusServiceUnavailable {
			message = appErr.Message
		}
		httputil.WriteJSON(w, status, checkoutError{Error: message})
		return
	}
	httputil.WriteJSON(w, status, checkoutError{Error: apperrors.UserMessage(err)})
}
