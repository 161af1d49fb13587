// Package memory is an in-memory order repository.
package memory

import (
	"context"
	"sync"

	"github.com/ShadEl7/her-essence-website/internal/tracking"
	apperrors "github.com/ShadEl7/her-essence-website/pkg/errors"
)

// Repository keeps orders keyed by order number.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]tracking.Order
}

var _ tracking.Repository = (*Repository)(nil)

// New creates a repository holding orders.
func New(orders ...tracking.Order) *Repository {
	r := &Repository{orders: make(map[string]tracking.Order, len(orders))}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

// NewSeeded creates a repository holding the demo orders.
func NewSeeded() *Repository {
	return New(SeedOrders()...)
}

// Save adds or replaces an order.
func (r *Repository) Save(_ context.Context, o tracking.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	return nil
}

// FindByNumber implements tracking.Repository.
func (r *Repository) FindByNumber(_ context.Context, orderNumber string) (*tracking.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[orderNumber]
	if !ok {
		return nil, apperrors.NotFound("order", orderNumber)
	}
	o.Items = append([]tracking.OrderItem(nil), o.Items...)
	o.Tracking.Updates = append([]tracking.Update(nil), o.Tracking.Updates...)
	return &o, nil
}

// SeedOrders returns the demo orders shown on the tracking page.
func SeedOrders() []tracking.Order {
	return []tracking.Order{
		{
			ID:        "HER-2025-001234",
			Email:     "customer@example.com",
			Status:    tracking.StatusShipped,
			OrderDate: "2025-08-12",
			Total:     12750,
			Currency:  "USD",
			ShippingAddress: tracking.Address{
				Street: "123 Fashion St", City: "Style City", State: "SC", ZipCode: "12345",
			},
			Items: []tracking.OrderItem{
				{Name: "Vintage Denim Jacket", Size: "M", Quantity: 1, Price: 8999},
				{Name: "Classic White Tee", Size: "S", Quantity: 1, Price: 3751},
			},
			Tracking: tracking.Tracking{
				Carrier:           "FedEx",
				TrackingNumber:    "1234567890123456",
				EstimatedDelivery: "2025-08-16",
				LastUpdate:        "Package is in transit - August 15, 2025 2:30 PM",
				Updates: []tracking.Update{
					{Date: "2025-08-12 10:00 AM", Status: "Order confirmed", Location: "Processing Center"},
					{Date: "2025-08-13 2:30 PM", Status: "Order processed and packaged", Location: "Fulfillment Center"},
					{Date: "2025-08-14 8:45 AM", Status: "Package shipped", Location: "Windhoek, Namibia"},
					{Date: "2025-08-15 2:30 PM", Status: "In transit", Location: "Regional Sorting Facility"},
				},
			},
		},
		{
			ID:        "HER-2025-001235",
			Email:     "jane.doe@email.com",
			Status:    tracking.StatusDelivered,
			OrderDate: "2025-08-10",
			Total:     9500,
			Currency:  "USD",
			ShippingAddress: tracking.Address{
				Street: "456 Style Ave", City: "Fashion Town", State: "FT", ZipCode: "67890",
			},
			Items: []tracking.OrderItem{
				{Name: "Elegant Evening Dress", Size: "L", Quantity: 1, Price: 9500},
			},
			Tracking: tracking.Tracking{
				Carrier:           "DHL",
				TrackingNumber:    "9876543210987654",
				EstimatedDelivery: "2025-08-14",
				LastUpdate:        "Package delivered - August 14, 2025 3:15 PM",
				Updates: []tracking.Update{
					{Date: "2025-08-10 11:30 AM", Status: "Order confirmed", Location: "Processing Center"},
					{Date: "2025-08-11 1:15 PM", Status: "Order processed and packaged", Location: "Fulfillment Center"},
					{Date: "2025-08-12 9:20 AM", Status: "Package shipped", Location: "Windhoek, Namibia"},
					{Date: "2025-08-14 3:15 PM", Status: "Delivered", Location: "Fashion Town, FT"},
				},
			},
		},
	}
}
