package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/ShadEl7/her-essence-website/pkg/errors"
	"github.com/ShadEl7/her-essence-website/pkg/logger"
)

// Service answers order tracking queries. Order numbers are matched
// upper-cased and emails case-insensitively.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

var _ Tracker = (*Service)(nil)

// NewService creates a tracking service.
func NewService(repo Repository, l *slog.Logger) *Service {
	if l == nil {
		l = logger.Discard()
	}
	return &Service{repo: repo, logger: l}
}

// TrackOrder returns the full order when orderNumber exists and email
// matches the order's email.
func (s *Service) TrackOrder(ctx context.Context, orderNumber, email string) (*Order, error) {
	orderNumber, email = strings.TrimSpace(orderNumber), strings.TrimSpace(email)
	if orderNumber == "" || email == "" {
		return nil, apperrors.InvalidInput(MsgRequired)
	}

	order, err := s.find(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("order", orderNumber).WithMessage(MsgOrderNotFound)
		}
		return nil, err
	}

	if !strings.EqualFold(order.Email, email) {
		s.logger.WarnContext(ctx, "order tracking email mismatch", slog.String("order_number", order.ID))
		return nil, apperrors.Unauthorized(MsgEmailMismatch)
	}

	s.logger.InfoContext(ctx, "order tracked",
		slog.String("order_number", order.ID),
		slog.String("status", order.Status),
	)
	return order, nil
}

// OrderStatus returns the public status of an order. No email is needed.
func (s *Service) OrderStatus(ctx context.Context, orderNumber string) (*StatusSummary, error) {
	order, err := s.find(ctx, strings.TrimSpace(orderNumber))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("order", orderNumber).WithMessage(MsgStatusNotFound)
		}
		return nil, err
	}
	return &StatusSummary{
		OrderNumber: order.ID,
		Status:      order.Status,
		LastUpdate:  order.Tracking.LastUpdate,
	}, nil
}

// TrackingUpdates returns the carrier events of an order. An unknown order
// and an email mismatch are reported identically.
func (s *Service) TrackingUpdates(ctx context.Context, orderNumber, email string) (*UpdatesSummary, error) {
	notFound := apperrors.NotFound("order", orderNumber).WithMessage(MsgUpdatesNotFound)

	orderNumber, email = strings.TrimSpace(orderNumber), strings.TrimSpace(email)
	if orderNumber == "" || email == "" {
		return nil, notFound
	}

	order, err := s.find(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, notFound
		}
		return nil, err
	}
	if !strings.EqualFold(order.Email, email) {
		return nil, notFound
	}

	updates := order.Tracking.Updates
	if updates == nil {
		updates = []Update{}
	}
	return &UpdatesSummary{
		Updates:        updates,
		Carrier:        order.Tracking.Carrier,
		TrackingNumber: order.Tracking.TrackingNumber,
	}, nil
}

func (s *Service) find(ctx context.Context, orderNumber string) (*Order, error) {
	if orderNumber == "" {
		return nil, apperrors.NotFound("order", orderNumber)
	}
	order, err := s.repo.FindByNumber(ctx, strings.ToUpper(orderNumber))
	if err != nil {
		return nil, fmt.Errorf("find order %s: %w", orderNumber, err)
	}
	return order, nil
}
