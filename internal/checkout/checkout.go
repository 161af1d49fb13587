// Package checkout creates payment sessions for the contents of a cart and
// retrieves the order details of a completed session.
package checkout

import (
	"context"
	"strings"

	"github.com/ShadEl7/her-essence-website/internal/domain"
	apperrors "github.com/ShadEl7/her-essence-website/pkg/errors"
)

// Rejection messages returned to the checkout page.
const (
	MsgMissingInformation = "Missing required information."
	MsgMissingCard        = "Missing card details."
	MsgMissingMobileMoney = "Missing mobile money details."
	MsgUnsupportedMethod  = "Unsupported payment method."
)

// PaymentMethod selects the payment flow of a session.
type PaymentMethod string

const (
	MethodCard   PaymentMethod = "card"
	MethodPayPal PaymentMethod = "paypal"
	MethodMobile PaymentMethod = "mobile"
)

// BillingInfo is the customer block of the checkout form.
type BillingInfo struct {
	Name       string `json:"name" validate:"required,max=200"`
	Email      string `json:"email" validate:"required,email"`
	Address    string `json:"address,omitempty" validate:"max=500"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// CartItem is one line of the cart sent to the payment provider. Price is
// the unit amount in minor currency units.
type CartItem struct {
	Name     string `json:"name" validate:"required"`
	Price    int64  `json:"price" validate:"gte=0"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

// CartDetails is the cart summary sent to the payment provider.
type CartDetails struct {
	Items    []CartItem `json:"items" validate:"required,min=1,dive"`
	Currency string     `json:"currency" validate:"required,len=3"`
}

// AmountTotal returns the sum of price * quantity over all items.
func (d CartDetails) AmountTotal() int64 {
	var total int64
	for _, it := range d.Items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}

// DetailsFromItems converts cart line items into provider cart details.
func DetailsFromItems(items domain.Items, currency string) *CartDetails {
	out := make([]CartItem, 0, len(items))
	for _, li := range items {
		out = append(out, CartItem{Name: li.Name, Price: li.Price, Quantity: li.Quantity})
	}
	return &CartDetails{Items: out, Currency: strings.ToUpper(currency)}
}

// PaymentDetails carries method-specific payment fields.
type PaymentDetails struct {
	CardNumber   string `json:"cardNumber,omitempty"`
	CardExpiry   string `json:"cardExpiry,omitempty"`
	CardCVC      string `json:"cardCVC,omitempty"`
	MobileNumber string `json:"mobileNumber,omitempty"`
	Provider     string `json:"provider,omitempty"`
}

// CreateSessionInput is the body of a create-checkout-session request.
type CreateSessionInput struct {
	BillingInfo    *BillingInfo    `json:"billingInfo"`
	CartDetails    *CartDetails    `json:"cartDetails"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod"`
	PaymentDetails *PaymentDetails `json:"paymentDetails,omitempty"`
}

// Session is the result of a successful create-checkout-session call. Only
// the field matching the payment method is set besides ID.
type Session struct {
	ID             string `json:"id"`
	Success        bool   `json:"success,omitempty"`
	PayPalURL      string `json:"paypalUrl,omitempty"`
	MobileMoneyURL string `json:"mobileMoneyUrl,omitempty"`
}

// OrderItem is one purchased line in OrderDetails.
type OrderItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// OrderDetails summarizes a completed checkout session.
type OrderDetails struct {
	ID          string      `json:"id"`
	AmountTotal int64       `json:"amount_total"`
	Currency    string      `json:"currency"`
	Items       []OrderItem `json:"items"`
}

// Provider creates and retrieves checkout sessions.
type Provider interface {
	Name() string
	CreateSession(ctx context.Context, in *CreateSessionInput) (*Session, error)
	RetrieveSession(ctx context.Context, id string) (*OrderDetails, error)
}

// Rejected converts a provider rejection message into an application error.
// Missing information is the caller's fault; every other rejection is a
// failed payment.
func Rejected(message string) error {
	if message == MsgMissingInformation {
		return apperrors.InvalidInput(message)
	}
	return apperrors.PaymentFailed(message)
}
