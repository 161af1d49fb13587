package cart

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/ShadEl7/her-essence-website/internal/storage"
)

// Registry hands out one Store per cart session so that every request for a
// session goes through the same serialized Store. Each session's cart lives
// under "<baseKey>:<session>".
type Registry struct {
	store   storage.Store
	baseKey string
	opts    []Option

	mu    sync.RWMutex
	carts map[string]*Store
	group singleflight.Group
}

// NewRegistry creates a registry. opts are applied to every Store it opens.
func NewRegistry(store storage.Store, baseKey string, opts ...Option) *Registry {
	if baseKey == "" {
		baseKey = DefaultKey
	}
	return &Registry{
		store:   store,
		baseKey: baseKey,
		opts:    opts,
		carts:   make(map[string]*Store),
	}
}

// Key returns the storage key of a session's cart.
func (r *Registry) Key(session string) string {
	return r.baseKey + ":" + session
}

// Cart returns the Store for session, opening it on first use. Concurrent
// first calls for the same session share one Open.
func (r *Registry) Cart(ctx context.Context, session string) *Store {
	r.mu.RLock()
	s, ok := r.carts[session]
	r.mu.RUnlock()
	if ok {
		return s
	}

	v, _, _ := r.group.Do(session, func() (any, error) {
		r.mu.RLock()
		s, ok := r.carts[session]
		r.mu.RUnlock()
		if ok {
			return s, nil
		}

		s = Open(context.WithoutCancel(ctx), r.store, r.Key(session), r.opts...)
		r.mu.Lock()
		r.carts[session] = s
		r.mu.Unlock()
		return s, nil
	})
	return v.(*Store)
}

// Evict drops the open Store for session. The next Cart call reloads it from
// storage.
func (r *Registry) Evict(session string) {
	r.mu.Lock()
	delete(r.carts, session)
	r.mu.Unlock()
}

// Len returns the number of open carts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.carts)
}
