package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/erhospitalmatch/internal/adapters/cache"
	"github.com/zatekoja/erhospitalmatch/internal/adapters/kvstore"
	"github.com/zatekoja/erhospitalmatch/internal/adapters/regions"
	"github.com/zatekoja/erhospitalmatch/internal/domain/entities"
	"github.com/zatekoja/erhospitalmatch/internal/domain/providers"
	"github.com/zatekoja/erhospitalmatch/internal/domain/repositories"
)

const testRegions = `{"Seoul": ["Gangnam", "Seocho", "Songpa"], "Busan": ["Haeundae"]}`

func newTestRegions(t *testing.T) repositories.RegionRepository {
	t.Helper()
	repo, err := regions.ParseRegions(strings.NewReader(testRegions))
	require.NoError(t, err)
	return repo
}

func newTestCache(t *testing.T) providers.CacheProvider {
	t.Helper()
	lru, err := cache.NewLRUAdapter(128)
	require.NoError(t, err)
	return lru
}

func newTestCoordinateStore(t *testing.T) repositories.CoordinateRepository {
	t.Helper()
	return kvstore.NewCoordinateStore(newTestCache(t))
}

func newTestStaticStore(t *testing.T) repositories.StaticProfileRepository {
	t.Helper()
	return kvstore.NewStaticProfileStore(newTestCache(t))
}

type stubGeocoder struct {
	mock.Mock
}

func (s *stubGeocoder) Geocode(ctx context.Context, query string) (*providers.Coordinates, error) {
	args := s.Called(ctx, query)
	if c := args.Get(0); c != nil {
		return c.(*providers.Coordinates), args.Error(1)
	}
	return nil, args.Error(1)
}

type stubRegistry struct {
	mock.Mock
}

func (s *stubRegistry) LookupStatic(ctx context.Context, hpid string) (*entities.StaticHospitalProfile, error) {
	args := s.Called(ctx, hpid)
	if p := args.Get(0); p != nil {
		return p.(*entities.StaticHospitalProfile), args.Error(1)
	}
	return nil, args.Error(1)
}

type stubClassifier struct {
	mock.Mock
}

func (s *stubClassifier) Predict(ctx context.Context, rows []entities.FeatureVector) ([]float64, error) {
	args := s.Called(ctx, rows)
	if p := args.Get(0); p != nil {
		return p.([]float64), args.Error(1)
	}
	return nil, args.Error(1)
}

func candidate(hpid string, filterLevel int) entities.Candidate {
	return entities.Candidate{
		FilterResult: entities.FilterResult{
			Record:      entities.HospitalRecord{HPID: hpid, Name: "Hospital " + hpid, ERBeds: 3},
			FilterLevel: filterLevel,
		},
		District:      "Gangnam",
		SameDistrict:  true,
		DistanceKm:    1.5,
		TravelTimeMin: 3.0,
	}
}
