// Package storage is the durable key/value layer behind the cart. A cart is
// stored as one JSON document per key.
package storage

import (
	"context"

	apperrors "github.com/ShadEl7/her-essence-website/pkg/errors"
)

// ErrNotFound is matched (via errors.Is) by the error every backend returns
// for an absent key.
var ErrNotFound = apperrors.ErrNotFound

// Store persists opaque values by key.
type Store interface {
	// Get returns the value stored under key, or an error matching
	// ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// NotFound builds the error backends return for an absent key.
func NotFound(key string) error {
	return apperrors.NotFound("storage key", key)
}
