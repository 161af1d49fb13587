// Package cart implements the shopping cart store: an ordered list of line
// items persisted as one JSON array under a storage key and rewritten in full
// after every mutation.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/ShadEl7/her-essence-website/internal/domain"
	"github.com/ShadEl7/her-essence-website/internal/storage"
	apperrors "github.com/ShadEl7/her-essence-website/pkg/errors"
	"github.com/ShadEl7/her-essence-website/pkg/logger"
	"github.com/ShadEl7/her-essence-website/pkg/tracing"
	"github.com/ShadEl7/her-essence-website/pkg/validator"
)

// DefaultKey is the storage key used when Open is given an empty key.
const DefaultKey = "cartItems"

const tracerName = "github.com/ShadEl7/her-essence-website/internal/cart"

// Store owns one cart's line items. Operations on a Store are serialized.
// Separate Stores opened on the same key do not coordinate; the last write
// wins.
type Store struct {
	mu     sync.Mutex
	store  storage.Store
	key    string
	items  domain.Items
	logger *slog.Logger

	obsMu     sync.RWMutex
	observers map[uint64]Observer
	nextObsID uint64

	// seq is issued under mu; delivered trails it under emitMu so events
	// reach observers in mutation order.
	seq       uint64
	emitMu    sync.Mutex
	emitCond  *sync.Cond
	delivered uint64
}

// Open loads the cart stored under key. A missing key, a read failure or a
// malformed document all yield an empty cart; load problems are logged and
// never returned.
func Open(ctx context.Context, store storage.Store, key string, opts ...Option) *Store {
	if key == "" {
		key = DefaultKey
	}
	s := &Store{
		store:     store,
		key:       key,
		items:     domain.Items{},
		logger:    logger.FromContext(ctx),
		observers: make(map[uint64]Observer),
	}
	s.emitCond = sync.NewCond(&s.emitMu)
	for _, opt := range opts {
		opt(s)
	}
	s.items = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) domain.Items {
	data, err := s.store.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.WarnContext(ctx, "cart load failed, starting empty",
				slog.String("key", s.key),
				slog.String("error", err.Error()),
			)
		}
		return domain.Items{}
	}

	var items domain.Items
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.WarnContext(ctx, "malformed cart document, starting empty",
			slog.String("key", s.key),
			slog.String("error", err.Error()),
		)
		return domain.Items{}
	}
	return normalize(items)
}

// normalize drops entries without a positive quantity and merges duplicate
// ids so loaded carts honor the one-line-per-id invariant.
func normalize(items domain.Items) domain.Items {
	out := make(domain.Items, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		if i := out.FindIndex(item.ID); i >= 0 {
			out[i].Quantity += item.Quantity
			continue
		}
		out = append(out, item)
	}
	return out
}

// Key returns the storage key of this cart.
func (s *Store) Key() string {
	return s.key
}

// AddItem adds one unit of product. An existing line keeps its captured
// price; a new line is appended. The product is validated before the cart is
// touched.
func (s *Store) AddItem(ctx context.Context, product domain.Product) (err error) {
	if err := validator.Validate(product); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
	}

	ctx, span := tracing.StartSpan(ctx, tracerName, "cart.add_item",
		attribute.String("cart.key", s.key),
		attribute.String("cart.item_id", product.ID.String()),
	)
	defer func() { tracing.EndSpan(span, err) }()

	s.mu.Lock()
	if i := s.items.FindIndex(product.ID); i >= 0 {
		s.items[i].Quantity++
	} else {
		s.items = append(s.items, domain.NewLineItem(product))
	}
	err = s.persistLocked(ctx, "add_item")
	snapshot := s.items.Clone()
	seq := s.nextSeqLocked()
	s.mu.Unlock()

	s.deliver(ctx, seq,
		Event{Type: EventCountChanged, Key: s.key, Count: snapshot.ItemCount(), Items: snapshot},
		Event{Type: EventItemAdded, Key: s.key, Count: snapshot.ItemCount(), ProductName: product.Name, Items: snapshot},
	)
	return err
}

// RemoveItem removes the line with the given id. Removing an absent id
// leaves the items unchanged but still persists and notifies.
func (s *Store) RemoveItem(ctx context.Context, id domain.ItemID) (err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "cart.remove_item",
		attribute.String("cart.key", s.key),
		attribute.String("cart.item_id", id.String()),
	)
	defer func() { tracing.EndSpan(span, err) }()

	s.mu.Lock()
	s.removeLocked(id)
	err = s.persistLocked(ctx, "remove_item")
	snapshot := s.items.Clone()
	seq := s.nextSeqLocked()
	s.mu.Unlock()

	s.deliver(ctx, seq, Event{Type: EventCountChanged, Key: s.key, Count: snapshot.ItemCount(), Items: snapshot})
	return err
}

// SetQuantity sets the quantity of the line with the given id. Zero removes
// the line, a negative quantity is rejected, and an absent id is a no-op on
// the items.
func (s *Store) SetQuantity(ctx context.Context, id domain.ItemID, quantity int) (err error) {
	if quantity < 0 {
		return apperrors.InvalidInput(fmt.Sprintf("quantity must not be negative, got %d", quantity))
	}

	ctx, span := tracing.StartSpan(ctx, tracerName, "cart.set_quantity",
		attribute.String("cart.key", s.key),
		attribute.String("cart.item_id", id.String()),
		attribute.Int("cart.quantity", quantity),
	)
	defer func() { tracing.EndSpan(span, err) }()

	s.mu.Lock()
	if quantity == 0 {
		s.removeLocked(id)
	} else if i := s.items.FindIndex(id); i >= 0 {
		s.items[i].Quantity = quantity
	}
	err = s.persistLocked(ctx, "set_quantity")
	snapshot := s.items.Clone()
	seq := s.nextSeqLocked()
	s.mu.Unlock()

	s.deliver(ctx, seq, Event{Type: EventCountChanged, Key: s.key, Count: snapshot.ItemCount(), Items: snapshot})
	return err
}

// Clear empties the cart and deletes its storage key.
func (s *Store) Clear(ctx context.Context) (err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "cart.clear", attribute.String("cart.key", s.key))
	defer func() { tracing.EndSpan(span, err) }()

	s.mu.Lock()
	s.items = domain.Items{}
	mutationsTotal.WithLabelValues("clear").Inc()
	if derr := s.store.Delete(ctx, s.key); derr != nil {
		persistErrorsTotal.Inc()
		s.logger.ErrorContext(ctx, "cart clear failed",
			slog.String("key", s.key),
			slog.String("error", derr.Error()),
		)
		err = fmt.Errorf("clear cart %s: %w", s.key, derr)
	}
	seq := s.nextSeqLocked()
	s.mu.Unlock()

	s.deliver(ctx, seq, Event{Type: EventCountChanged, Key: s.key, Count: 0, Items: domain.Items{}})
	return err
}

// Total returns the sum of price * quantity over all lines.
func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Total()
}

// ItemCount returns the total number of units in the cart.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.ItemCount()
}

// Items returns a copy of the lines in display order.
func (s *Store) Items() domain.Items {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Clone()
}

// Subscribe registers o and returns a function that unregisters it.
func (s *Store) Subscribe(o Observer) (unsubscribe func()) {
	id := s.subscribe(o)
	var once sync.Once
	return func() {
		once.Do(func() {
			s.obsMu.Lock()
			delete(s.observers, id)
			s.obsMu.Unlock()
		})
	}
}

func (s *Store) subscribe(o Observer) uint64 {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.nextObsID++
	s.observers[s.nextObsID] = o
	return s.nextObsID
}

func (s *Store) removeLocked(id domain.ItemID) {
	if i := s.items.FindIndex(id); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
}

// persistLocked writes the full item list. A failed write is returned but
// the in-memory state is kept.
func (s *Store) persistLocked(ctx context.Context, operation string) error {
	mutationsTotal.WithLabelValues(operation).Inc()

	data, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("marshal cart %s: %w", s.key, err)
	}
	if err := s.store.Set(ctx, s.key, data); err != nil {
		persistErrorsTotal.Inc()
		s.logger.ErrorContext(ctx, "cart persist failed",
			slog.String("key", s.key),
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("persist cart %s: %w", s.key, err)
	}
	return nil
}

func (s *Store) nextSeqLocked() uint64 {
	s.seq++
	return s.seq
}

// deliver waits until every earlier mutation's events have been delivered,
// then hands events to the observers. The wait happens outside mu, so
// observers may read the store; they must not mutate it synchronously.
func (s *Store) deliver(ctx context.Context, seq uint64, events ...Event) {
	s.emitMu.Lock()
	for s.delivered != seq-1 {
		s.emitCond.Wait()
	}
	s.emitMu.Unlock()

	defer func() {
		s.emitMu.Lock()
		s.delivered = seq
		s.emitCond.Broadcast()
		s.emitMu.Unlock()
	}()
	for _, e := range events {
		s.emit(ctx, e)
	}
}

// emit delivers e to every observer in subscription order.
func (s *Store) emit(ctx context.Context, e Event) {
	s.obsMu.RLock()
	ids := make([]uint64, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	obs := make([]Observer, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		obs = append(obs, s.observers[id])
	}
	s.obsMu.RUnlock()

	for _, o := range obs {
		o.Notify(ctx, e)
	}
}
