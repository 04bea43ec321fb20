package repositories

import (
	"context"

	"github.com/zatekoja/erhospitalmatch/internal/domain/entities"
)

// StaticProfileRepository defines the persisted static profile table
type StaticProfileRepository interface {
	// GetByHPID returns the first stored row for the hospital, or a NOT_FOUND AppError
	GetByHPID(ctx context.Context, hpid string) (*entities.StaticHospitalProfile, error)

	// Append records a profile resolved from the registry. Duplicate rows are
	// tolerated; GetByHPID keeps returning the first one.
	Append(ctx context.Context, profile *entities.StaticHospitalProfile) error
}
