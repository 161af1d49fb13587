package cart

import (
	"context"

	"github.com/ShadEl7/her-essence-website/internal/domain"
)

// EventType names a cart notification.
type EventType string

const (
	// EventCountChanged follows every mutation and carries the new unit count.
	EventCountChanged EventType = "count_changed"
	// EventItemAdded follows AddItem and carries the product name.
	EventItemAdded EventType = "item_added"
)

// Event is delivered to observers after a mutation has been persisted (or the
// write attempted).
type Event struct {
	Type        EventType
	Key         string
	Count       int
	ProductName string
	Items       domain.Items
}

// Observer receives cart events. Notify runs synchronously on the mutating
// goroutine after the store lock is released. Events of one Store arrive in
// mutation order, so a slow observer delays later mutations' events, and an
// observer must not mutate the Store it observes from inside Notify.
type Observer interface {
	Notify(ctx context.Context, e Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, e Event)

// Notify calls f(ctx, e).
func (f ObserverFunc) Notify(ctx context.Context, e Event) { f(ctx, e) }
