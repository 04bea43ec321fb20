package geolocation

import (
	"context"
	"errors"

	"github.com/zatekoja/erhospitalmatch/internal/domain/providers"
	apperrors "github.com/zatekoja/erhospitalmatch/pkg/errors"
)

// FallbackProvider asks each geocoder in turn and returns the first success.
// When every geocoder misses the result is NOT_FOUND; otherwise the errors are joined.
type FallbackProvider struct {
	chain []providers.GeolocationProvider
}

// NewFallbackProvider chains geocoders in priority order
func NewFallbackProvider(chain ...providers.GeolocationProvider) *FallbackProvider {
	return &FallbackProvider{chain: chain}
}

// Geocode tries the chain in order
func (f *FallbackProvider) Geocode(ctx context.Context, query string) (*providers.Coordinates, error) {
	var errs []error
	allNotFound := true
	for _, provider := range f.chain {
		coords, err := provider.Geocode(ctx, query)
		if err == nil && coords != nil {
			return coords, nil
		}
		if err == nil {
			err = apperrors.NewNotFoundError("geocoder returned no coordinates")
		}
		if !apperrors.IsNotFound(err) {
			allNotFound = false
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}

	if allNotFound {
		return nil, apperrors.NewNotFoundError("no geocoder could resolve " + query)
	}
	return nil, apperrors.NewExternalError("all geocoders failed", errors.Join(errs...))
}

var _ providers.GeolocationProvider = (*FallbackProvider)(nil)
