package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShadEl7/her-essence-website/internal/storage"
)

var _ storage.Store = (*Store)(nil)

func TestStore_GetMissing(t *testing.T) {
	s := New()

	_, err := s.Get(context.Background(), "cartItems")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_SetGet(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Set(ctx, "cartItems", []byte(`[]`)))

	got, err := s.Get(ctx, "cartItems")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
	assert.Equal(t, 1, s.Len())
}

func TestStore_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	s := New()

	in := []byte(`[1]`)
	require.NoError(t, s.Set(ctx, "k", in))
	in[1] = '9'

	out, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(out))

	out[1] = '7'
	again, _ := s.Get(ctx, "k")
	assert.Equal(t, `[1]`, string(again))
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Set(ctx, "k", []byte(`x`)))
	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "absent"))

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Zero(t, s.Len())
}
