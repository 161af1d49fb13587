package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ShadEl7/her-essence-website/internal/domain"
	apperrors "github.com/ShadEl7/her-essence-website/pkg/errors"
	"github.com/ShadEl7/her-essence-website/pkg/logger"
)

// Hints shown by the search widget when there is nothing to list.
const (
	HintEmptyQuery = "Start typing to search products..."
	HintNoResults  = "No products found"
)

// SearchResult is the response of a product search.
type SearchResult struct {
	Query    string    `json:"query"`
	Products []Product `json:"products"`
	Hint     string    `json:"hint,omitempty"`
}

// Service implements product search and lookup.
type Service struct {
	engine Engine
	logger *slog.Logger
}

// NewService creates a catalog service.
func NewService(engine Engine, l *slog.Logger) *Service {
	if l == nil {
		l = logger.Discard()
	}
	return &Service{engine: engine, logger: l}
}

// Seed indexes the storefront collection.
func (s *Service) Seed(ctx context.Context) error {
	products := SeedProducts()
	if err := s.engine.BulkIndex(ctx, products); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	s.logger.InfoContext(ctx, "catalog seeded", slog.Int("products", len(products)))
	return nil
}

// Search looks up products by name or category. A blank query is not an
// error; it returns no products and the empty-query hint.
func (s *Service) Search(ctx context.Context, query string) (*SearchResult, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return &SearchResult{Query: query, Products: []Product{}, Hint: HintEmptyQuery}, nil
	}

	products, err := s.engine.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	if products == nil {
		products = []Product{}
	}

	result := &SearchResult{Query: query, Products: products}
	if len(products) == 0 {
		result.Hint = HintNoResults
	}

	s.logger.DebugContext(ctx, "product search",
		slog.String("query", q),
		slog.Int("results", len(products)),
	)
	return result, nil
}

// Product resolves a product by id.
func (s *Service) Product(ctx context.Context, id domain.ItemID) (Product, error) {
	if strings.TrimSpace(id.String()) == "" {
		return Product{}, apperrors.InvalidInput("product id is required")
	}
	p, err := s.engine.Get(ctx, id)
	if err != nil {
		return Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}
