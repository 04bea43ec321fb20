package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zatekoja/erhospitalmatch/internal/domain/providers"
	"github.com/zatekoja/erhospitalmatch/internal/domain/repositories"
	apperrors "github.com/zatekoja/erhospitalmatch/pkg/errors"
)

const coordinateKeyPrefix = "coord:v1:"

// CoordinateStore persists hospital coordinates in a CacheProvider with no expiry
type CoordinateStore struct {
	cache providers.CacheProvider
}

// NewCoordinateStore creates a coordinate repository over cache
func NewCoordinateStore(cache providers.CacheProvider) repositories.CoordinateRepository {
	return &CoordinateStore{cache: cache}
}

// Get returns the stored coordinate for a hospital name
func (s *CoordinateStore) Get(ctx context.Context, name string) (*providers.Coordinates, error) {
	data, err := s.cache.Get(ctx, coordinateKeyPrefix+name)
	if errors.Is(err, providers.ErrCacheMiss) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no coordinate stored for %q", name))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read coordinate store", err)
	}

	var coords providers.Coordinates
	if err := json.Unmarshal(data, &coords); err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("corrupt coordinate entry for %q", name), err)
	}
	return &coords, nil
}

// Put upserts the coordinate for a hospital name
func (s *CoordinateStore) Put(ctx context.Context, name string, coords providers.Coordinates) error {
	data, err := json.Marshal(coords)
	if err != nil {
		return apperrors.NewInternalError("failed to encode coordinate", err)
	}
	if err := s.cache.Set(ctx, coordinateKeyPrefix+name, data, 0); err != nil {
		return apperrors.NewInternalError("failed to write coordinate store", err)
	}
	return nil
}
