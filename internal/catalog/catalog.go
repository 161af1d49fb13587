// Package catalog serves the storefront product list to the search widget and
// resolves product descriptors for the cart.
package catalog

import (
	"context"

	"github.com/ShadEl7/her-essence-website/internal/domain"
)

// Product is a catalog entry. Price is in minor currency units.
type Product struct {
	ID       domain.ItemID `json:"id"`
	Name     string        `json:"name"`
	Price    int64         `json:"price"`
	Category string        `json:"category"`
	Image    string        `json:"image"`
}

// Descriptor converts p into the descriptor accepted by the cart.
func (p Product) Descriptor() domain.Product {
	return domain.Product{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.Image,
		Category: p.Category,
	}
}

// Engine indexes and searches products.
type Engine interface {
	// Index adds or replaces a product.
	Index(ctx context.Context, p Product) error

	// BulkIndex adds or replaces many products.
	BulkIndex(ctx context.Context, ps []Product) error

	// Search returns products whose name or category contains query,
	// case-insensitively. query is never blank.
	Search(ctx context.Context, query string) ([]Product, error)

	// Get returns the product with id or an error matching
	// apperrors.ErrNotFound.
	Get(ctx context.Context, id domain.ItemID) (Product, error)
}

// SeedProducts returns the storefront collection.
func SeedProducts() []Product {
	return []Product{
		{ID: "1", Name: "Elegant Evening Dress", Price: 29900, Category: "evening", Image: "IMG-20250815-WA0022.jpg"},
		{ID: "2", Name: "Semi-Formal Blouse", Price: 14900, Category: "semi-formal", Image: "IMG-20250815-WA0027.jpg"},
		{ID: "3", Name: "Casual Summer Dress", Price: 8900, Category: "casual", Image: "IMG-20250815-WA0023.jpg"},
		{ID: "4", Name: "Business Blazer", Price: 19900, Category: "formal", Image: "IMG-20250815-WA0024.jpg"},
		{ID: "5", Name: "Bridal Gown", Price: 59900, Category: "bridal", Image: "IMG-20250815-WA0025.jpg"},
		{ID: "6", Name: "Sport Leggings", Price: 5900, Category: "sportswear", Image: "IMG-20250815-WA0026.jpg"},
	}
}
