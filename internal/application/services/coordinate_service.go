package services

import (
	"context"
	"fmt"

	"github.com/zatekoja/erhospitalmatch/internal/domain/providers"
	"github.com/zatekoja/erhospitalmatch/internal/domain/repositories"
	"github.com/zatekoja/erhospitalmatch/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/erhospitalmatch/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// CoordinateService is the read-through coordinate cache in front of the geocoder.
// Geocoder misses are never stored, so the next lookup asks the geocoder again.
type CoordinateService struct {
	repo     repositories.CoordinateRepository
	geocoder providers.GeolocationProvider
	metrics  *observability.Metrics
	inflight singleflight.Group
}

// NewCoordinateService creates a new coordinate service. metrics may be nil.
func NewCoordinateService(repo repositories.CoordinateRepository, geocoder providers.GeolocationProvider, metrics *observability.Metrics) *CoordinateService {
	return &CoordinateService{
		repo:     repo,
		geocoder: geocoder,
		metrics:  metrics,
	}
}

// Resolve returns the coordinates of a hospital, or a NOT_FOUND AppError
func (s *CoordinateService) Resolve(ctx context.Context, hospitalName string) (*providers.Coordinates, error) {
	logger := observability.LoggerFromContext(ctx)

	coords, err := s.repo.Get(ctx, hospitalName)
	if err == nil {
		observability.RecordCacheHit(ctx, s.metrics, "coordinates")
		return coords, nil
	}
	if !apperrors.IsNotFound(err) {
		logger.Warn().Err(err).Str("hospital", hospitalName).Msg("Coordinate store read failed, falling back to geocoder")
	}
	observability.RecordCacheMiss(ctx, s.metrics, "coordinates")

	// concurrent misses for one name share a single geocoder call
	result, err := sharedLookup(ctx, &s.inflight, hospitalName, func(callCtx context.Context) (interface{}, error) {
		return s.geocodeAndStore(callCtx, hospitalName)
	})
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, err
		}
		// caller gave up before the shared lookup finished
		return nil, apperrors.NewNotFoundErrorWithCause(fmt.Sprintf("location of %q could not be resolved", hospitalName), err)
	}
	resolved := *result.(*providers.Coordinates)
	return &resolved, nil
}

func (s *CoordinateService) geocodeAndStore(ctx context.Context, hospitalName string) (*providers.Coordinates, error) {
	logger := observability.LoggerFromContext(ctx)

	coords, err := s.geocoder.Geocode(ctx, hospitalName)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			observability.RecordExternalFailure(ctx, s.metrics, "geocoder")
			logger.Warn().Err(err).Str("hospital", hospitalName).Msg("Geocoder failed")
		}
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("location of %q could not be resolved", hospitalName))
	}
	if coords == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("location of %q could not be resolved", hospitalName))
	}

	if err := s.repo.Put(ctx, hospitalName, *coords); err != nil {
		logger.Warn().Err(err).Str("hospital", hospitalName).Msg("Failed to store resolved coordinates")
	}
	return coords, nil
}
