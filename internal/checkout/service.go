package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/ShadEl7/her-essence-website/pkg/errors"
	"github.com/ShadEl7/her-essence-website/pkg/logger"
	"github.com/ShadEl7/her-essence-website/pkg/tracing"
	"github.com/ShadEl7/her-essence-website/pkg/validator"
)

const tracerName = "github.com/ShadEl7/her-essence-website/internal/checkout"

// Service validates checkout requests and forwards them to a Provider.
type Service struct {
	provider Provider
	logger   *slog.Logger
}

// NewService creates a checkout service.
func NewService(p Provider, l *slog.Logger) *Service {
	if l == nil {
		l = logger.Discard()
	}
	return &Service{provider: p, logger: l}
}

// ProviderName reports the configured provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// CreateSession validates in and creates a session with the provider.
func (s *Service) CreateSession(ctx context.Context, in *CreateSessionInput) (_ *Session, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "checkout.create_session",
		attribute.String("checkout.provider", s.provider.Name()))
	defer func() { tracing.EndSpan(span, err) }()

	if in == nil || in.BillingInfo == nil || in.CartDetails == nil || in.PaymentMethod == "" {
		return nil, apperrors.InvalidInput(MsgMissingInformation)
	}
	if err := validator.Validate(in); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("checkout.method", string(in.PaymentMethod)))

	session, err := s.provider.CreateSession(ctx, in)
	if err != nil {
		s.logger.WarnContext(ctx, "checkout session rejected",
			slog.String("provider", s.provider.Name()),
			slog.String("method", string(in.PaymentMethod)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	s.logger.InfoContext(ctx, "checkout session created",
		slog.String("provider", s.provider.Name()),
		slog.String("session_id", session.ID),
		slog.String("method", string(in.PaymentMethod)),
		slog.Int64("amount_total", in.CartDetails.AmountTotal()),
		slog.String("currency", in.CartDetails.Currency),
	)
	return session, nil
}

// OrderDetails returns the summary of a checkout session.
func (s *Service) OrderDetails(ctx context.Context, sessionID string) (_ *OrderDetails, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "checkout.order_details",
		attribute.String("checkout.session_id", sessionID))
	defer func() { tracing.EndSpan(span, err) }()

	if strings.TrimSpace(sessionID) == "" {
		return nil, apperrors.InvalidInput("session_id is required")
	}

	details, err := s.provider.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session %s: %w", sessionID, err)
	}
	return details, nil
}
