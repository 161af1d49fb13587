// Package mock is an in-process payment provider. It accepts every complete
// request and keeps sessions in memory.
package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ShadEl7/her-essence-website/internal/checkout"
	apperrors "github.com/ShadEl7/her-essence-website/pkg/errors"
)

// Redirect targets for the hosted payment flows.
const (
	PayPalCheckoutURL = "https://www.sandbox.paypal.com/checkoutnow?token="
	MobileMoneyPayURL = "https://mobilemoney.example.com/pay?ref="
)

// Provider is the mock checkout.Provider.
type Provider struct {
	mu       sync.RWMutex
	sessions map[string]*checkout.OrderDetails
	newID    func() string
}

var _ checkout.Provider = (*Provider)(nil)

// New creates an empty mock provider.
func New() *Provider {
	return &Provider{
		sessions: make(map[string]*checkout.OrderDetails),
		newID:    func() string { return "cs_test_" + strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
}

// Name implements checkout.Provider.
func (p *Provider) Name() string { return "mock" }

// CreateSession implements checkout.Provider.
func (p *Provider) CreateSession(_ context.Context, in *checkout.CreateSessionInput) (*checkout.Session, error) {
	if in == nil || in.BillingInfo == nil || in.CartDetails == nil || in.PaymentMethod == "" {
		return nil, checkout.Rejected(checkout.MsgMissingInformation)
	}
	details := in.PaymentDetails
	if details == nil {
		details = &checkout.PaymentDetails{}
	}

	id := p.newID()
	session := &checkout.Session{ID: id}

	switch in.PaymentMethod {
	case checkout.MethodCard:
		if details.CardNumber == "" || details.CardExpiry == "" || details.CardCVC == "" {
			return nil, checkout.Rejected(checkout.MsgMissingCard)
		}
		session.Success = true
	case checkout.MethodPayPal:
		session.PayPalURL = PayPalCheckoutURL + id
	case checkout.MethodMobile:
		if details.MobileNumber == "" || details.Provider == "" {
			return nil, checkout.Rejected(checkout.MsgMissingMobileMoney)
		}
		session.MobileMoneyURL = MobileMoneyPayURL + id
	default:
		return nil, checkout.Rejected(checkout.MsgUnsupportedMethod)
	}

	p.store(id, in.CartDetails)
	return session, nil
}

func (p *Provider) store(id string, cart *checkout.CartDetails) {
	items := make([]checkout.OrderItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, checkout.OrderItem{Name: it.Name, Quantity: it.Quantity})
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[id] = &checkout.OrderDetails{
		ID:          id,
		AmountTotal: cart.AmountTotal(),
		Currency:    strings.ToLower(cart.Currency),
		Items:       items,
	}
}

// RetrieveSession implements checkout.Provider.
func (p *Provider) RetrieveSession(_ context.Context, id string) (*checkout.OrderDetails, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	details, ok := p.sessions[id]
	if !ok {
		return nil, apperrors.NotFound("checkout session", id)
	}
	cpy := *details
	cpy.Items = append([]checkout.OrderItem(nil), details.Items...)
	return &cpy, nil
}
