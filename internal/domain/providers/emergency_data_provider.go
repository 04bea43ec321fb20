package providers

import (
	"context"

	"github.com/zatekoja/erhospitalmatch/internal/domain/entities"
)

// EmergencyDataProvider fetches live emergency room capacity
type EmergencyDataProvider interface {
	// FetchLive returns the live records for one district. No data is an empty
	// slice; an error means transport or parse failure.
	FetchLive(ctx context.Context, city, district string) ([]entities.HospitalRecord, error)
}

// HospitalRegistryProvider looks up the static registry profile of a hospital
type HospitalRegistryProvider interface {
	// LookupStatic returns a NOT_FOUND AppError when the registry has no entry
	LookupStatic(ctx context.Context, hpid string) (*entities.StaticHospitalProfile, error)
}
