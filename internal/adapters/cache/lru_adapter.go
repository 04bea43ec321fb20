package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zatekoja/erhospitalmatch/internal/domain/providers"
)

type lruEntry struct {
	value    []byte
	deadline time.Time
}

// LRUAdapter is a bounded in-process CacheProvider
type LRUAdapter struct {
	cache   *lru.Cache[string, lruEntry]
	writeMu sync.Mutex
	now     func() time.Time
}

// NewLRUAdapter creates an in-memory cache holding at most size entries
func NewLRUAdapter(size int) (*LRUAdapter, error) {
	c, err := lru.New[string, lruEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}
	return &LRUAdapter{cache: c, now: time.Now}, nil
}

// Get retrieves a value from cache
func (a *LRUAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	entry, ok := a.cache.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", providers.ErrCacheMiss, key)
	}
	if !entry.deadline.IsZero() && !a.now().Before(entry.deadline) {
		a.cache.Remove(key)
		return nil, fmt.Errorf("%w: %s", providers.ErrCacheMiss, key)
	}
	return entry.value, nil
}

// Set stores a value in cache with expiration
func (a *LRUAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	a.cache.Add(key, a.entry(value, expirationSeconds))
	return nil
}

// SetIfAbsent stores a value only if no live value exists for key
func (a *LRUAdapter) SetIfAbsent(ctx context.Context, key string, value []byte, expirationSeconds int) (bool, error) {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	if exists, _ := a.Exists(ctx, key); exists {
		return false, nil
	}
	a.cache.Add(key, a.entry(value, expirationSeconds))
	return true, nil
}

// Delete removes a value from cache
func (a *LRUAdapter) Delete(ctx context.Context, key string) error {
	a.cache.Remove(key)
	return nil
}

// Exists checks if a live key exists in cache
func (a *LRUAdapter) Exists(ctx context.Context, key string) (bool, error) {
	_, err := a.Get(ctx, key)
	return err == nil, nil
}

// Len returns the number of entries held, including expired ones not yet evicted
func (a *LRUAdapter) Len() int {
	return a.cache.Len()
}

func (a *LRUAdapter) entry(value []byte, expirationSeconds int) lruEntry {
	stored := make([]byte, len(value))
	copy(stored, value)
	e := lruEntry{value: stored}
	if expirationSeconds > 0 {
		e.deadline = a.now().Add(time.Duration(expirationSeconds) * time.Second)
	}
	return e
}

var _ providers.CacheProvider = (*LRUAdapter)(nil)
