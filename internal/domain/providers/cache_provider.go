package providers

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by Get when the key is not present
var ErrCacheMiss = errors.New("cache: key not found")

// CacheProvider defines the interface for caching operations
type CacheProvider interface {
	// Get retrieves a value from cache, returning ErrCacheMiss when absent
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration. Zero means no expiry.
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// SetIfAbsent stores a value only when the key is not yet present.
	// It reports whether the value was written.
	SetIfAbsent(ctx context.Context, key string, value []byte, expirationSeconds int) (bool, error)

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists in cache
	Exists(ctx context.Context, key string) (bool, error)
}
