package services_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/erhospitalmatch/internal/application/services"
	"github.com/zatekoja/erhospitalmatch/internal/domain/entities"
	apperrors "github.com/zatekoja/erhospitalmatch/pkg/errors"
)

func TestGeoIndexService_Expand(t *testing.T) {
	svc := services.NewGeoIndexService(newTestRegions(t))

	targets, err := svc.Expand("Seoul", "Seocho", 1)
	require.NoError(t, err)

	assert.Equal(t, []entities.SearchTarget{
		{District: "Seocho", Level: 0},
		{District: "Gangnam", Level: 1},
		{District: "Songpa", Level: 1},
	}, targets)
}

func TestGeoIndexService_ExpandLevelZeroOnly(t *testing.T) {
	svc := services.NewGeoIndexService(newTestRegions(t))

	targets, err := svc.Expand("Seoul", "Songpa", 0)
	require.NoError(t, err)
	assert.Equal(t, []entities.SearchTarget{{District: "Songpa", Level: 0}}, targets)
}

func TestGeoIndexService_SingleDistrictCity(t *testing.T) {
	svc := services.NewGeoIndexService(newTestRegions(t))

	targets, err := svc.Expand("Busan", "Haeundae", 1)
	require.NoError(t, err)
	assert.Len(t, targets, 1)
}

func TestGeoIndexService_UnknownRegion(t *testing.T) {
	svc := services.NewGeoIndexService(newTestRegions(t))

	_, err := svc.Expand("Incheon", "Gangnam", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrUnknownCity))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfiguration))

	_, err = svc.Expand("Seoul", "Haeundae", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrUnknownDistrict))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfiguration))
}

func TestGeoIndexService_Districts(t *testing.T) {
	svc := services.NewGeoIndexService(newTestRegions(t))

	districts, err := svc.Districts("Seoul")
	require.NoError(t, err)
	assert.Equal(t, []string{"Gangnam", "Seocho", "Songpa"}, districts)
	assert.ElementsMatch(t, []string{"Seoul", "Busan"}, svc.Cities())
}
