package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/ShadEl7/her-essence-website/pkg/errors"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 1 << 20

// ServerError is returned through the circuit breaker for 5xx responses. The
// body is kept so callers can still surface the remote message.
type ServerError struct {
	StatusCode int
	Body       []byte
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.StatusCode, strings.TrimSpace(string(e.Body)))
}

// remoteError accepts the error payload shapes the storefront's collaborators
// produce:
//
//	{"error": {"code": "NOT_FOUND", "message": "..."}}
//	{"error": "Missing card details."}
//	{"success": false, "message": "Order not found"}
type remoteError struct {
	Code    string
	Message string
}

func (r *remoteError) UnmarshalJSON(data []byte) error {
	var raw struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if len(raw.Error) > 0 && string(raw.Error) != "null" {
		var structured struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(raw.Error, &structured) == nil {
			r.Code, r.Message = structured.Code, structured.Message
			return nil
		}
		var s string
		if json.Unmarshal(raw.Error, &s) == nil {
			r.Message = s
			return nil
		}
	}
	r.Message = raw.Message
	return nil
}

// ParseResponseError reads a non-2xx response and translates it into an
// AppError carrying the remote message. The body is consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}
	return ParseErrorBody(resp.StatusCode, body, serviceName)
}

// ParseErrorBody is ParseResponseError for an already-read body.
func ParseErrorBody(status int, body []byte, serviceName string) error {
	var remote remoteError
	if json.Unmarshal(body, &remote) == nil && remote.Message != "" {
		return mapRemoteError(status, remote.Code, remote.Message, serviceName)
	}
	return fmt.Errorf("%s returned status %d: %s", serviceName, status, strings.TrimSpace(string(body)))
}

// mapRemoteError keeps the remote message verbatim; it is what the shopper
// sees.
func mapRemoteError(status int, code, message, serviceName string) error {
	var appErr *apperrors.AppError
	switch {
	case status == http.StatusNotFound:
		appErr = apperrors.NotFound(serviceName, message)
	case status == http.StatusBadRequest:
		appErr = apperrors.InvalidInput(message)
	case status == http.StatusConflict:
		appErr = apperrors.Conflict(message)
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		appErr = apperrors.Unauthorized(message)
	case status == http.StatusUnprocessableEntity:
		appErr = apperrors.PaymentFailed(message)
	case status == http.StatusServiceUnavailable:
		appErr = apperrors.Unavailable(message)
	case status >= 500:
		return fmt.Errorf("%s server error (%d): %s", serviceName, status, message)
	default:
		appErr = &apperrors.AppError{Code: "REMOTE_ERROR", Status: status}
	}
	appErr = appErr.WithMessage(message)
	if code != "" {
		appErr.Code = code
	}
	return appErr
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
