package cache

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/erhospitalmatch/internal/domain/providers"
)

// TieredAdapter reads through a fast in-memory tier to a persistent tier.
// The persistent tier is authoritative; a failing memory tier never fails a call.
type TieredAdapter struct {
	memory     providers.CacheProvider
	persistent providers.CacheProvider
}

// NewTieredAdapter layers memory over persistent
func NewTieredAdapter(memory, persistent providers.CacheProvider) *TieredAdapter {
	return &TieredAdapter{memory: memory, persistent: persistent}
}

// Get tries memory first, then the persistent tier, promoting hits into memory
func (a *TieredAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	if value, err := a.memory.Get(ctx, key); err == nil {
		return value, nil
	}

	value, err := a.persistent.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := a.memory.Set(ctx, key, value, 0); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("Failed to promote cache entry to memory tier")
	}
	return value, nil
}

// Set writes the persistent tier first, then memory
func (a *TieredAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	if err := a.persistent.Set(ctx, key, value, expirationSeconds); err != nil {
		return err
	}
	if err := a.memory.Set(ctx, key, value, expirationSeconds); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("Failed to write memory cache tier")
	}
	return nil
}

// SetIfAbsent defers the decision to the persistent tier
func (a *TieredAdapter) SetIfAbsent(ctx context.Context, key string, value []byte, expirationSeconds int) (bool, error) {
	written, err := a.persistent.SetIfAbsent(ctx, key, value, expirationSeconds)
	if err != nil {
		return false, err
	}
	if written {
		_ = a.memory.Set(ctx, key, value, expirationSeconds)
	} else {
		// memory may hold a value that lost the race; drop it so the next Get reads through
		_ = a.memory.Delete(ctx, key)
	}
	return written, nil
}

// Delete removes a value from both tiers
func (a *TieredAdapter) Delete(ctx context.Context, key string) error {
	return errors.Join(a.memory.Delete(ctx, key), a.persistent.Delete(ctx, key))
}

// Exists checks memory then the persistent tier
func (a *TieredAdapter) Exists(ctx context.Context, key string) (bool, error) {
	if ok, err := a.memory.Exists(ctx, key); err == nil && ok {
		return true, nil
	}
	return a.persistent.Exists(ctx, key)
}

var _ providers.CacheProvider = (*TieredAdapter)(nil)
