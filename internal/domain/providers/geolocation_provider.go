package providers

import (
	"context"
)

// GeolocationProvider defines the interface for forward geocoding of hospital names
type GeolocationProvider interface {
	// Geocode converts a place name or address to coordinates.
	// A name the provider cannot resolve is reported as a NOT_FOUND AppError.
	Geocode(ctx context.Context, query string) (*Coordinates, error)
}

// Coordinates represents geographical coordinates
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}
