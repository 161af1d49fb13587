package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShadEl7/her-essence-website/internal/tracking"
	apperrors "github.com/ShadEl7/her-essence-website/pkg/errors"
)

func TestSeedOrders(t *testing.T) {
	orders := SeedOrders()
	require.Len(t, orders, 2)

	for _, o := range orders {
		var itemsTotal int64
		for _, it := range o.Items {
			itemsTotal += it.Price * int64(it.Quantity)
		}
		assert.Equal(t, o.Total, itemsTotal, "order %s total must equal its items", o.ID)
	}
}

func TestFindByNumber(t *testing.T) {
	r := NewSeeded()

	o, err := r.FindByNumber(context.Background(), "HER-2025-001234")
	require.NoError(t, err)
	assert.Equal(t, "customer@example.com", o.Email)

	_, err = r.FindByNumber(context.Background(), "her-2025-001234")
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "repository lookups are exact")
}

func TestFindByNumber_ReturnsCopy(t *testing.T) {
	r := NewSeeded()
	ctx := context.Background()

	o, err := r.FindByNumber(ctx, "HER-2025-001235")
	require.NoError(t, err)
	o.Tracking.Updates[0].Status = "tampered"
	o.Items[0].Name = "tampered"

	again, err := r.FindByNumber(ctx, "HER-2025-001235")
	require.NoError(t, err)
	assert.Equal(t, "Order confirmed", again.Tracking.Updates[0].Status)
	assert.Equal(t, "Elegant Evening Dress", again.Items[0].Name)
}

func TestSave(t *testing.T) {
	ctx := context.Background()
	r := New()

	require.NoError(t, r.Save(ctx, tracking.Order{ID: "HER-1", Status: tracking.StatusProcessing}))
	o, err := r.FindByNumber(ctx, "HER-1")
	require.NoError(t, err)
	assert.Equal(t, tracking.StatusProcessing, o.Status)
}
