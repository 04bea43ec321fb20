package repositories

import (
	"context"

	"github.com/zatekoja/erhospitalmatch/internal/domain/providers"
)

// CoordinateRepository persists resolved hospital coordinates keyed by hospital name
type CoordinateRepository interface {
	// Get returns a NOT_FOUND AppError when the name has never been resolved
	Get(ctx context.Context, name string) (*providers.Coordinates, error)

	// Put upserts the coordinate; the last write wins
	Put(ctx context.Context, name string, coords providers.Coordinates) error
}
