package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ShadEl7/her-essence-website/internal/catalog"
	"github.com/ShadEl7/her-essence-website/internal/catalog/engine/memory"
	"github.com/ShadEl7/her-essence-website/internal/domain"
	apperrors "github.com/ShadEl7/her-essence-website/pkg/errors"
	"github.com/ShadEl7/her-essence-website/pkg/logger"
)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Index(ctx context.Context, p catalog.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockEngine) BulkIndex(ctx context.Context, ps []catalog.Product) error {
	return m.Called(ctx, ps).Error(0)
}

func (m *mockEngine) Search(ctx context.Context, query string) ([]catalog.Product, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *mockEngine) Get(ctx context.Context, id domain.ItemID) (catalog.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(catalog.Product), args.Error(1)
}

func seededService(t *testing.T) *catalog.Service {
	t.Helper()
	svc := catalog.NewService(memory.New(), logger.Discard())
	require.NoError(t, svc.Seed(context.Background()))
	return svc
}

func TestSeedProducts(t *testing.T) {
	products := catalog.SeedProducts()
	require.Len(t, products, 6)
	assert.Equal(t, "Elegant Evening Dress", products[0].Name)
	assert.Equal(t, int64(29900), products[0].Price)
	assert.Equal(t, "sportswear", products[5].Category)
}

func TestSearch_BlankQuery(t *testing.T) {
	svc := seededService(t)

	for _, q := range []string{"", "   ", "\t"} {
		res, err := svc.Search(context.Background(), q)
		require.NoError(t, err)
		assert.Empty(t, res.Products)
		assert.NotNil(t, res.Products)
		assert.Equal(t, catalog.HintEmptyQuery, res.Hint)
	}
}

func TestSearch_NoResultsHint(t *testing.T) {
	res, err := seededService(t).Search(context.Background(), "tuxedo")
	require.NoError(t, err)
	assert.Empty(t, res.Products)
	assert.Equal(t, catalog.HintNoResults, res.Hint)
}

func TestSearch_TrimsQuery(t *testing.T) {
	res, err := seededService(t).Search(context.Background(), "  bridal ")
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "Bridal Gown", res.Products[0].Name)
	assert.Empty(t, res.Hint)
}

func TestSearch_EngineError(t *testing.T) {
	eng := &mockEngine{}
	eng.On("Search", mock.Anything, "dress").Return(nil, errors.New("cluster red"))

	_, err := catalog.NewService(eng, nil).Search(context.Background(), "dress")
	assert.ErrorContains(t, err, "cluster red")
	eng.AssertExpectations(t)
}

func TestSearch_NilResultNormalized(t *testing.T) {
	eng := &mockEngine{}
	eng.On("Search", mock.Anything, "x").Return(nil, nil)

	res, err := catalog.NewService(eng, nil).Search(context.Background(), "x")
	require.NoError(t, err)
	assert.NotNil(t, res.Products)
	assert.Equal(t, catalog.HintNoResults, res.Hint)
}

func TestSeed_EngineError(t *testing.T) {
	eng := &mockEngine{}
	eng.On("BulkIndex", mock.Anything, mock.Anything).Return(errors.New("index closed"))

	err := catalog.NewService(eng, nil).Seed(context.Background())
	assert.ErrorContains(t, err, "seed catalog")
}

func TestProduct(t *testing.T) {
	svc := seededService(t)

	p, err := svc.Product(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, domain.Product{ID: "3", Name: "Casual Summer Dress", Price: 8900, Category: "casual", Image: "IMG-20250815-WA0023.jpg"}, p.Descriptor())

	_, err = svc.Product(context.Background(), "42")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.Product(context.Background(), " ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
