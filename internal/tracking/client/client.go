// Package client calls a remote order-tracking API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ShadEl7/her-essence-website/internal/tracking"
	apperrors "github.com/ShadEl7/her-essence-website/pkg/errors"
	"github.com/ShadEl7/her-essence-website/pkg/httpclient"
)

// Failure kinds reported by the tracking API.
var (
	ErrValidation    = errors.New("tracking: validation failed")
	ErrNotFound      = errors.New("tracking: order not found")
	ErrEmailMismatch = errors.New("tracking: email mismatch")
)

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// Error is a failed tracking call. Message is the text the API returned for
// the shopper. It matches both its failure kind and the equivalent
// *apperrors.AppError, so HTTP handlers map it like a local lookup failure.
type Error struct {
	StatusCode int
	Message    string
	kind       error
	app        *apperrors.AppError
}

func (e *Error) Error() string {
	return fmt.Sprintf("tracking api %d: %s", e.StatusCode, e.Message)
}

func (e *Error) Unwrap() []error {
	if e.kind == nil {
		return []error{e.app}
	}
	return []error{e.kind, e.app}
}

// HTTPDoer executes HTTP requests.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client is a tracking API consumer. It satisfies tracking.Tracker.
type Client struct {
	baseURL string
	http    HTTPDoer
}

var _ tracking.Tracker = (*Client)(nil)

// New creates a client. A nil doer uses an httpclient that never retries:
// a failed lookup is reported to the shopper as is.
func New(baseURL string, doer HTTPDoer) *Client {
	if doer == nil {
		cfg := httpclient.DefaultConfig()
		cfg.MaxRetries = 0
		doer = httpclient.New(cfg)
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: doer}
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type lookupRequest struct {
	OrderNumber string `json:"orderNumber"`
	Email       string `json:"email"`
}

// TrackOrder posts to /api/track-order.
func (c *Client) TrackOrder(ctx context.Context, orderNumber, email string) (*tracking.Order, error) {
	var out struct {
		envelope
		Order *tracking.Order `json:"order"`
	}
	if err := c.post(ctx, "/api/track-order", lookupRequest{orderNumber, email}, &out); err != nil {
		return nil, err
	}
	if out.Order == nil {
		return nil, fmt.Errorf("tracking api: response has no order")
	}
	return out.Order, nil
}

// OrderStatus fetches /api/order-status/{orderNumber}.
func (c *Client) OrderStatus(ctx context.Context, orderNumber string) (*tracking.StatusSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/order-status/"+url.PathEscape(orderNumber), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create order status request: %w", err)
	}

	var out struct {
		envelope
		tracking.StatusSummary
	}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out.StatusSummary, nil
}

// TrackingUpdates posts to /api/tracking-updates.
func (c *Client) TrackingUpdates(ctx context.Context, orderNumber, email string) (*tracking.UpdatesSummary, error) {
	var out struct {
		envelope
		tracking.UpdatesSummary
	}
	if err := c.post(ctx, "/api/tracking-updates", lookupRequest{orderNumber, email}, &out); err != nil {
		return nil, err
	}
	return &out.UpdatesSummary, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal tracking request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create tracking request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req.Context(), req)
	if err != nil {
		return fmt.Errorf("tracking api %s: %w: %w", req.URL.Path, apperrors.ErrServiceUnavail, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("read tracking response: %w", err)
	}

	var env envelope
	_ = json.Unmarshal(body, &env)
	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		return classify(resp.StatusCode, env.Message)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode tracking response: %w", err)
	}
	return nil
}

func classify(status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	e := &Error{StatusCode: status, Message: message}
	switch status {
	case http.StatusBadRequest:
		e.kind = ErrValidation
		e.app = apperrors.InvalidInput(message)
	case http.StatusNotFound:
		e.kind = ErrNotFound
		e.app = apperrors.NotFound("order", "").WithMessage(message)
	case http.StatusUnauthorized:
		e.kind = ErrEmailMismatch
		e.app = apperrors.Unauthorized(message)
	default:
		e.app = apperrors.Unavailable(message)
	}
	return e
}
