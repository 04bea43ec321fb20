package services

import (
	"context"

	"github.com/zatekoja/erhospitalmatch/internal/domain/entities"
	"github.com/zatekoja/erhospitalmatch/internal/domain/providers"
	"github.com/zatekoja/erhospitalmatch/internal/domain/repositories"
	"github.com/zatekoja/erhospitalmatch/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/erhospitalmatch/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// StaticProfileService reads static hospital profiles through the persisted table,
// appending registry results on a miss. Registry misses are not recorded.
type StaticProfileService struct {
	repo     repositories.StaticProfileRepository
	registry providers.HospitalRegistryProvider
	metrics  *observability.Metrics
	inflight singleflight.Group
}

// NewStaticProfileService creates a new static profile service. metrics may be nil.
func NewStaticProfileService(repo repositories.StaticProfileRepository, registry providers.HospitalRegistryProvider, metrics *observability.Metrics) *StaticProfileService {
	return &StaticProfileService{
		repo:     repo,
		registry: registry,
		metrics:  metrics,
	}
}

// Lookup returns the profile for hpid, or false when neither the table nor the registry has it
func (s *StaticProfileService) Lookup(ctx context.Context, hpid string) (*entities.StaticHospitalProfile, bool) {
	if hpid == "" {
		return nil, false
	}
	logger := observability.LoggerFromContext(ctx)

	profile, err := s.repo.GetByHPID(ctx, hpid)
	if err == nil {
		observability.RecordCacheHit(ctx, s.metrics, "static_profiles")
		return profile, true
	}
	if !apperrors.IsNotFound(err) {
		logger.Warn().Err(err).Str("hpid", hpid).Msg("Static profile store read failed, falling back to registry")
	}
	observability.RecordCacheMiss(ctx, s.metrics, "static_profiles")

	result, err := sharedLookup(ctx, &s.inflight, hpid, func(callCtx context.Context) (interface{}, error) {
		return s.fetchAndAppend(callCtx, hpid)
	})
	if err != nil {
		return nil, false
	}
	fetched := *result.(*entities.StaticHospitalProfile)
	return &fetched, true
}

func (s *StaticProfileService) fetchAndAppend(ctx context.Context, hpid string) (*entities.StaticHospitalProfile, error) {
	logger := observability.LoggerFromContext(ctx)

	profile, err := s.registry.LookupStatic(ctx, hpid)
	if err != nil {
		if apperrors.IsNotFound(err) {
			logger.Debug().Str("hpid", hpid).Msg("Hospital not in static registry")
		} else {
			observability.RecordExternalFailure(ctx, s.metrics, "registry")
			logger.Warn().Err(err).Str("hpid", hpid).Msg("Static registry lookup failed")
		}
		return nil, err
	}
	if profile == nil {
		return nil, apperrors.NewNotFoundError("registry returned no profile for " + hpid)
	}
	if profile.HPID == "" {
		profile.HPID = hpid
	}

	if err := s.repo.Append(ctx, profile); err != nil {
		logger.Warn().Err(err).Str("hpid", hpid).Msg("Failed to append static profile")
	}
	return profile, nil
}
