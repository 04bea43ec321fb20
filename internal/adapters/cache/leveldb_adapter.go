package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/zatekoja/erhospitalmatch/internal/domain/providers"
)

// Values are stored behind an 8-byte big-endian unix-nano deadline; 0 means no expiry.
const deadlineHeaderSize = 8

// LevelDBAdapter implements CacheProvider on an embedded LevelDB file.
// The DB handle is safe for concurrent use; writeMu only serialises SetIfAbsent.
type LevelDBAdapter struct {
	db      *leveldb.DB
	writeMu sync.Mutex
	now     func() time.Time
}

// OpenLevelDB opens (or creates) the LevelDB directory at path
func OpenLevelDB(path string) (*LevelDBAdapter, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb at %s: %w", path, err)
	}
	log.Info().Str("path", path).Msg("LevelDB cache opened")
	return &LevelDBAdapter{db: db, now: time.Now}, nil
}

// OpenMemoryLevelDB opens a LevelDB instance backed by memory only
func OpenMemoryLevelDB() (*LevelDBAdapter, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory leveldb: %w", err)
	}
	return &LevelDBAdapter{db: db, now: time.Now}, nil
}

// Close closes the underlying database
func (a *LevelDBAdapter) Close() error {
	return a.db.Close()
}

// Get retrieves a value from cache
func (a *LevelDBAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := a.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", providers.ErrCacheMiss, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from leveldb: %w", err)
	}

	value, live := a.decode(raw)
	if !live {
		_ = a.db.Delete([]byte(key), nil)
		return nil, fmt.Errorf("%w: %s", providers.ErrCacheMiss, key)
	}
	return value, nil
}

// Set stores a value in cache with expiration
func (a *LevelDBAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	if err := a.db.Put([]byte(key), a.encode(value, expirationSeconds), nil); err != nil {
		return fmt.Errorf("failed to write to leveldb: %w", err)
	}
	return nil
}

// SetIfAbsent stores a value only if no live value exists for key
func (a *LevelDBAdapter) SetIfAbsent(ctx context.Context, key string, value []byte, expirationSeconds int) (bool, error) {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	exists, err := a.Exists(ctx, key)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := a.Set(ctx, key, value, expirationSeconds); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes a value from cache
func (a *LevelDBAdapter) Delete(ctx context.Context, key string) error {
	if err := a.db.Delete([]byte(key), nil); err != nil {
		return fmt.Errorf("failed to delete from leveldb: %w", err)
	}
	return nil
}

// Exists checks if a live key exists in cache
func (a *LevelDBAdapter) Exists(ctx context.Context, key string) (bool, error) {
	_, err := a.Get(ctx, key)
	if errors.Is(err, providers.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (a *LevelDBAdapter) encode(value []byte, expirationSeconds int) []byte {
	var deadline int64
	if expirationSeconds > 0 {
		deadline = a.now().Add(time.Duration(expirationSeconds) * time.Second).UnixNano()
	}
	out := make([]byte, deadlineHeaderSize+len(value))
	binary.BigEndian.PutUint64(out, uint64(deadline))
	copy(out[deadlineHeaderSize:], value)
	return out
}

func (a *LevelDBAdapter) decode(raw []byte) ([]byte, bool) {
	if len(raw) < deadlineHeaderSize {
		return nil, false
	}
	deadline := int64(binary.BigEndian.Uint64(raw[:deadlineHeaderSize]))
	if deadline != 0 && a.now().UnixNano() >= deadline {
		return nil, false
	}
	return raw[deadlineHeaderSize:], true
}

var _ providers.CacheProvider = (*LevelDBAdapter)(nil)
