package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/ShadEl7/her-essence-website/internal/catalog"
	"github.com/ShadEl7/her-essence-website/internal/domain"
	apperrors "github.com/ShadEl7/her-essence-website/pkg/errors"
)

// Engine is an in-memory catalog.Engine. Results keep indexing order.
type Engine struct {
	mu       sync.RWMutex
	order    []domain.ItemID
	products map[domain.ItemID]catalog.Product
}

var _ catalog.Engine = (*Engine)(nil)

// New creates an empty engine.
func New() *Engine {
	return &Engine{products: make(map[domain.ItemID]catalog.Product)}
}

// Index adds or replaces a product. Replacing keeps the original position.
func (e *Engine) Index(_ context.Context, p catalog.Product) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.indexLocked(p)
	return nil
}

// BulkIndex adds or replaces products in order.
func (e *Engine) BulkIndex(_ context.Context, ps []catalog.Product) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range ps {
		e.indexLocked(p)
	}
	return nil
}

func (e *Engine) indexLocked(p catalog.Product) {
	if _, ok := e.products[p.ID]; !ok {
		e.order = append(e.order, p.ID)
	}
	e.products[p.ID] = p
}

// Search matches query as a case-insensitive substring of name or category.
func (e *Engine) Search(_ context.Context, query string) ([]catalog.Product, error) {
	q := strings.ToLower(query)

	e.mu.RLock()
	defer e.mu.RUnlock()

	matched := make([]catalog.Product, 0)
	for _, id := range e.order {
		p := e.products[id]
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Category), q) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// Get returns the product with id.
func (e *Engine) Get(_ context.Context, id domain.ItemID) (catalog.Product, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	p, ok := e.products[id]
	if !ok {
		return catalog.Product{}, apperrors.NotFound("product", id.String())
	}
	return p, nil
}
