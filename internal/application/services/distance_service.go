package services

import (
	"context"
	"math"

	"github.com/zatekoja/erhospitalmatch/internal/domain/providers"
	"github.com/zatekoja/erhospitalmatch/internal/infrastructure/observability"
)

const earthRadiusKm = 6371.0

// TravelTimeEstimator turns a distance into an expected travel time in minutes
type TravelTimeEstimator interface {
	EstimateMinutes(distanceKm float64) float64
}

// LinearTravelTimeEstimator assumes a constant speed. MinutesPerKm 2.0 is 30 km/h.
type LinearTravelTimeEstimator struct {
	MinutesPerKm float64
}

// DefaultTravelTimeEstimator is the 30 km/h urban ambulance estimate
func DefaultTravelTimeEstimator() LinearTravelTimeEstimator {
	return LinearTravelTimeEstimator{MinutesPerKm: 2.0}
}

// EstimateMinutes returns distance * MinutesPerKm rounded to one decimal
func (e LinearTravelTimeEstimator) EstimateMinutes(distanceKm float64) float64 {
	return roundTo(distanceKm*e.MinutesPerKm, 1)
}

// CoordinateResolver resolves a hospital name to coordinates
type CoordinateResolver interface {
	Resolve(ctx context.Context, hospitalName string) (*providers.Coordinates, error)
}

// DistanceEstimate is the distance and travel time from the requester to a hospital
type DistanceEstimate struct {
	DistanceKm    float64
	TravelTimeMin float64
}

// DistanceService estimates distance and travel time to hospitals by name
type DistanceService struct {
	resolver  CoordinateResolver
	estimator TravelTimeEstimator
}

// NewDistanceService creates a distance service. A nil estimator uses the 30 km/h default.
func NewDistanceService(resolver CoordinateResolver, estimator TravelTimeEstimator) *DistanceService {
	if estimator == nil {
		estimator = DefaultTravelTimeEstimator()
	}
	return &DistanceService{resolver: resolver, estimator: estimator}
}

// DistanceAndTime returns false when the hospital cannot be located.
// Distance is rounded to 2 decimals and travel time is derived from the rounded distance.
func (s *DistanceService) DistanceAndTime(ctx context.Context, originLat, originLon float64, hospitalName string) (DistanceEstimate, bool) {
	coords, err := s.resolver.Resolve(ctx, hospitalName)
	if err != nil || coords == nil {
		observability.LoggerFromContext(ctx).Debug().Err(err).Str("hospital", hospitalName).Msg("Hospital location unresolved")
		return DistanceEstimate{}, false
	}

	distance := roundTo(Haversine(originLat, originLon, coords.Latitude, coords.Longitude), 2)
	return DistanceEstimate{
		DistanceKm:    distance,
		TravelTimeMin: s.estimator.EstimateMinutes(distance),
	}, true
}

// Haversine returns the great-circle distance in kilometers
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(dLambda/2)*math.Sin(dLambda/2)

	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
