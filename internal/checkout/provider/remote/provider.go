// Package remote is a checkout.Provider backed by an external session
// service speaking the create-checkout-session / order-details protocol.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ShadEl7/her-essence-website/internal/checkout"
	apperrors "github.com/ShadEl7/her-essence-website/pkg/errors"
	"github.com/ShadEl7/her-essence-website/pkg/httpclient"
	"github.com/ShadEl7/her-essence-website/pkg/logger"
)

const serviceName = "checkout"

// HTTPDoer executes HTTP requests. httpclient.Client and
// httpclient.CircuitBreakerClient both satisfy it.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Config configures the remote provider.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Provider is the remote checkout.Provider.
type Provider struct {
	baseURL string
	client  HTTPDoer
	logger  *slog.Logger
}

var _ checkout.Provider = (*Provider)(nil)

// New builds a provider whose requests go through a circuit breaker. Session
// creation is not idempotent, so the underlying client never retries.
func New(cfg Config, l *slog.Logger) *Provider {
	if l == nil {
		l = logger.Discard()
	}
	httpCfg := httpclient.DefaultConfig()
	httpCfg.MaxRetries = 0
	if cfg.Timeout > 0 {
		httpCfg.Timeout = cfg.Timeout
	}

	cb := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpCfg),
		httpclient.DefaultCircuitBreakerConfig("checkout-sessions"),
		l,
	).WithFallback(CircuitOpenFallback)

	return NewWithClient(cfg.BaseURL, cb, l)
}

// NewWithClient builds a provider on an existing client.
func NewWithClient(baseURL string, client HTTPDoer, l *slog.Logger) *Provider {
	if l == nil {
		l = logger.Discard()
	}
	return &Provider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  l,
	}
}

// CircuitOpenFallback replaces the breaker's open-state error with a 503.
func CircuitOpenFallback(_ context.Context, _ error) (*http.Response, error) {
	return nil, apperrors.Unavailable("payment service is temporarily unavailable, please try again shortly")
}

// Name implements checkout.Provider.
func (p *Provider) Name() string { return "remote" }

// sessionResponse is a create-checkout-session reply. The session service
// reports rejections as {"error": "..."} with a 200 status.
type sessionResponse struct {
	checkout.Session
	Error string `json:"error,omitempty"`
}

// CreateSession implements checkout.Provider.
func (p *Provider) CreateSession(ctx context.Context, in *checkout.CreateSessionInput) (*checkout.Session, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal checkout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/create-checkout-session", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create checkout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(ctx, req)
	if err != nil {
		return nil, p.transportError(ctx, "create-checkout-session", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	var out sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	if out.Error != "" {
		return nil, checkout.Rejected(out.Error)
	}
	return &out.Session, nil
}

// RetrieveSession implements checkout.Provider.
func (p *Provider) RetrieveSession(ctx context.Context, id string) (*checkout.OrderDetails, error) {
	endpoint := p.baseURL + "/order-details?session_id=" + url.QueryEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create order details request: %w", err)
	}

	resp, err := p.client.Do(ctx, req)
	if err != nil {
		return nil, p.transportError(ctx, "order-details", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	var details checkout.OrderDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return nil, fmt.Errorf("decode order details: %w", err)
	}
	if details.Items == nil {
		details.Items = []checkout.OrderItem{}
	}
	return &details, nil
}

// transportError unwraps 5xx replies kept by the circuit breaker so the
// remote message survives.
func (p *Provider) transportError(ctx context.Context, op string, err error) error {
	p.logger.WarnContext(ctx, "checkout service call failed",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)

	var srvErr *httpclient.ServerError
	if errors.As(err, &srvErr) {
		return httpclient.ParseErrorBody(srvErr.StatusCode, srvErr.Body, serviceName)
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return fmt.Errorf("%s %s: %w", serviceName, op, err)
}
