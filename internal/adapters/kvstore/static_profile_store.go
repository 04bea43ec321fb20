package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/erhospitalmatch/internal/domain/entities"
	"github.com/zatekoja/erhospitalmatch/internal/domain/providers"
	"github.com/zatekoja/erhospitalmatch/internal/domain/repositories"
	apperrors "github.com/zatekoja/erhospitalmatch/pkg/errors"
)

const staticProfileKeyPrefix = "static:v1:"

// StaticProfileStore keeps static hospital profiles in a CacheProvider.
// Appends are put-if-absent so the first stored row for an hpid is the one served.
type StaticProfileStore struct {
	cache providers.CacheProvider
}

// NewStaticProfileStore creates a static profile repository over cache
func NewStaticProfileStore(cache providers.CacheProvider) repositories.StaticProfileRepository {
	return &StaticProfileStore{cache: cache}
}

// GetByHPID returns the stored profile for a hospital
func (s *StaticProfileStore) GetByHPID(ctx context.Context, hpid string) (*entities.StaticHospitalProfile, error) {
	data, err := s.cache.Get(ctx, staticProfileKeyPrefix+hpid)
	if errors.Is(err, providers.ErrCacheMiss) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no static profile stored for %s", hpid))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read static profile store", err)
	}

	var profile entities.StaticHospitalProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("corrupt static profile entry for %s", hpid), err)
	}
	return &profile, nil
}

// Append stores the profile unless one already exists for the hpid
func (s *StaticProfileStore) Append(ctx context.Context, profile *entities.StaticHospitalProfile) error {
	if profile == nil || profile.HPID == "" {
		return apperrors.NewValidationError("static profile requires an hpid")
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return apperrors.NewInternalError("failed to encode static profile", err)
	}

	written, err := s.cache.SetIfAbsent(ctx, staticProfileKeyPrefix+profile.HPID, data, 0)
	if err != nil {
		return apperrors.NewInternalError("failed to write static profile store", err)
	}
	if !written {
		log.Debug().Str("hpid", profile.HPID).Msg("Static profile already stored, keeping first row")
	}
	return nil
}
