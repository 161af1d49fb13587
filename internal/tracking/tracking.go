// Package tracking looks up shipped orders for the order-tracking page.
package tracking

import (
	"context"
)

// Messages shown on the tracking page.
const (
	MsgRequired        = "Order number and email are required"
	MsgOrderNotFound   = "Order not found. Please check your order number."
	MsgEmailMismatch   = "Email address does not match our records for this order."
	MsgStatusNotFound  = "Order not found"
	MsgUpdatesNotFound = "Order not found or email mismatch"
	MsgTrackFailed     = "An error occurred while tracking your order. Please try again later."
	MsgStatusFailed    = "An error occurred while checking order status."
	MsgUpdatesFailed   = "An error occurred while retrieving tracking updates."
)

// Order statuses.
const (
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
)

// Address is a shipping address.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// OrderItem is one purchased line. Price is in minor currency units.
type OrderItem struct {
	Name     string `json:"name"`
	Size     string `json:"size,omitempty"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// Update is one carrier scan event.
type Update struct {
	Date     string `json:"date"`
	Status   string `json:"status"`
	Location string `json:"location"`
}

// Tracking is the carrier information of a shipped order.
type Tracking struct {
	Carrier           string   `json:"carrier"`
	TrackingNumber    string   `json:"trackingNumber"`
	EstimatedDelivery string   `json:"estimatedDelivery"`
	LastUpdate        string   `json:"lastUpdate"`
	Updates           []Update `json:"updates"`
}

// Order is a placed order as known to the tracking service. Email is never
// serialized.
type Order struct {
	ID              string      `json:"id"`
	Email           string      `json:"-"`
	Status          string      `json:"status"`
	OrderDate       string      `json:"orderDate"`
	Total           int64       `json:"total"`
	Currency        string      `json:"currency"`
	ShippingAddress Address     `json:"shippingAddress"`
	Items           []OrderItem `json:"items"`
	Tracking        Tracking    `json:"tracking"`
}

// StatusSummary is the public status of an order.
type StatusSummary struct {
	OrderNumber string `json:"orderNumber"`
	Status      string `json:"status"`
	LastUpdate  string `json:"lastUpdate"`
}

// Tracker answers the order tracking page. *Service looks orders up locally;
// the client package forwards to a remote tracking API.
type Tracker interface {
	TrackOrder(ctx context.Context, orderNumber, email string) (*Order, error)
	OrderStatus(ctx context.Context, orderNumber string) (*StatusSummary, error)
	TrackingUpdates(ctx context.Context, orderNumber, email string) (*UpdatesSummary, error)
}

// UpdatesSummary lists the carrier events of an order.
type UpdatesSummary struct {
	Updates        []Update `json:"updates"`
	Carrier        string   `json:"carrier"`
	TrackingNumber string   `json:"trackingNumber"`
}

// Repository looks up orders.
type Repository interface {
	// FindByNumber returns the order with the given upper-case number or an
	// error matching apperrors.ErrNotFound.
	FindByNumber(ctx context.Context, orderNumber string) (*Order, error)
}
