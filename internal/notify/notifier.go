// Package notify turns cart events into presentation state: the item-count
// badge and short-lived "added to cart" toasts.
package notify

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ShadEl7/her-essence-website/internal/cart"
)

// Config holds the toast timings.
type Config struct {
	// ShowDelay is how long a new toast stays hidden before it is shown.
	ShowDelay time.Duration
	// HideAfter is measured from creation, not from ShowDelay.
	HideAfter time.Duration
	// RemoveDelay is how long a hidden toast lingers before removal.
	RemoveDelay time.Duration
}

// DefaultConfig returns the storefront timings.
func DefaultConfig() Config {
	return Config{
		ShowDelay:   100 * time.Millisecond,
		HideAfter:   3 * time.Second,
		RemoveDelay: 300 * time.Millisecond,
	}
}

// Badge is the cart icon counter.
type Badge struct {
	Count   int    `json:"count"`
	Text    string `json:"text"`
	Visible bool   `json:"visible"`
}

// Toast is one transient notification.
type Toast struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Visible   bool      `json:"visible"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier keeps badge and toast state per cart key. Toast timers are
// independent of later cart mutations.
type Notifier struct {
	cfg Config

	mu     sync.Mutex
	badges map[string]Badge
	toasts map[string][]*Toast
	timers map[*time.Timer]struct{}
	closed bool
	wg     sync.WaitGroup
}

var _ cart.Observer = (*Notifier)(nil)

// New creates a Notifier.
func New(cfg Config) *Notifier {
	return &Notifier{
		cfg:    cfg,
		badges: make(map[string]Badge),
		toasts: make(map[string][]*Toast),
		timers: make(map[*time.Timer]struct{}),
	}
}

// Notify implements cart.Observer.
func (n *Notifier) Notify(_ context.Context, e cart.Event) {
	switch e.Type {
	case cart.EventCountChanged:
		n.setCount(e.Key, e.Count)
	case cart.EventItemAdded:
		n.addToast(e.Key, e.ProductName+" added to cart!")
	}
}

func (n *Notifier) setCount(key string, count int) {
	b := Badge{Count: count}
	if count > 0 {
		b.Text = strconv.Itoa(count)
		b.Visible = true
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if count == 0 {
		delete(n.badges, key)
		return
	}
	n.badges[key] = b
}

func (n *Notifier) addToast(key, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}

	t := &Toast{ID: uuid.NewString(), Message: message, CreatedAt: time.Now().UTC()}
	n.toasts[key] = append(n.toasts[key], t)

	n.scheduleLocked(n.cfg.ShowDelay, func() {
		t.Visible = true
	})
	n.scheduleLocked(n.cfg.HideAfter, func() {
		t.Visible = false
		n.scheduleLocked(n.cfg.RemoveDelay, func() {
			n.removeLocked(key, t.ID)
		})
	})
}

// scheduleLocked runs fn under n.mu after d. fn is skipped once the notifier
// is closed.
func (n *Notifier) scheduleLocked(d time.Duration, fn func()) {
	if n.closed {
		return
	}
	n.wg.Add(1)

	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		defer n.wg.Done()
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.timers, timer)
		if n.closed {
			return
		}
		fn()
	})
	n.timers[timer] = struct{}{}
}

func (n *Notifier) removeLocked(key, id string) {
	list := n.toasts[key]
	for i, t := range list {
		if t.ID == id {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(n.toasts, key)
		return
	}
	n.toasts[key] = list
}

// Badge returns the badge for key. An empty cart has a hidden badge with no
// text.
func (n *Notifier) Badge(key string) Badge {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.badges[key]
}

// Toasts returns the toasts that have not been removed yet for key, oldest
// first, including ones not yet shown.
func (n *Notifier) Toasts(key string) []Toast {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]Toast, 0, len(n.toasts[key]))
	for _, t := range n.toasts[key] {
		out = append(out, *t)
	}
	return out
}

// Close cancels pending timers and waits for running ones to finish.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	for t := range n.timers {
		if t.Stop() {
			n.wg.Done()
		}
		delete(n.timers, t)
	}
	n.mu.Unlock()

	n.wg.Wait()
}
