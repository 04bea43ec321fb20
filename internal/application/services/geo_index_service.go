package services

import (
	"errors"
	"fmt"

	"github.com/zatekoja/erhospitalmatch/internal/domain/entities"
	"github.com/zatekoja/erhospitalmatch/internal/domain/repositories"
	apperrors "github.com/zatekoja/erhospitalmatch/pkg/errors"
)

var (
	// ErrUnknownCity is returned when the city is not in the region registry
	ErrUnknownCity = errors.New("unknown city")
	// ErrUnknownDistrict is returned when the district is not registered under the city
	ErrUnknownDistrict = errors.New("unknown district")
)

// GeoIndexService expands a requester's district into the ordered districts to search
type GeoIndexService struct {
	regions repositories.RegionRepository
}

// NewGeoIndexService creates a new geo index service
func NewGeoIndexService(regions repositories.RegionRepository) *GeoIndexService {
	return &GeoIndexService{regions: regions}
}

// Expand returns the requester's district at level 0 followed, when maxLevel >= 1,
// by every other district of the city at level 1 in registry order.
func (s *GeoIndexService) Expand(city, district string, maxLevel int) ([]entities.SearchTarget, error) {
	districts, err := s.Districts(city)
	if err != nil {
		return nil, err
	}

	found := false
	for _, d := range districts {
		if d == district {
			found = true
			break
		}
	}
	if !found {
		return nil, apperrors.NewConfigurationError(
			fmt.Sprintf("district is not registered under %s: %s", city, district), ErrUnknownDistrict)
	}

	targets := make([]entities.SearchTarget, 0, len(districts))
	targets = append(targets, entities.SearchTarget{District: district, Level: entities.DistrictLevelHome})
	if maxLevel >= entities.DistrictLevelSameCity {
		for _, d := range districts {
			if d != district {
				targets = append(targets, entities.SearchTarget{District: d, Level: entities.DistrictLevelSameCity})
			}
		}
	}
	return targets, nil
}

// Districts lists a city's districts in registry order
func (s *GeoIndexService) Districts(city string) ([]string, error) {
	districts, ok := s.regions.ListDistricts(city)
	if !ok {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("city is not registered: %s", city), ErrUnknownCity)
	}
	return districts, nil
}

// Cities lists the registered cities
func (s *GeoIndexService) Cities() []string {
	return s.regions.ListCities()
}
