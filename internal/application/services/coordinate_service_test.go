package services_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/erhospitalmatch/internal/adapters/providers/geolocation"
	"github.com/zatekoja/erhospitalmatch/internal/application/services"
	"github.com/zatekoja/erhospitalmatch/internal/domain/providers"
	apperrors "github.com/zatekoja/erhospitalmatch/pkg/errors"
)

func TestCoordinateService_MissThenHit(t *testing.T) {
	ctx := context.Background()
	store := newTestCoordinateStore(t)
	geocoder := geolocation.NewMockProvider()
	geocoder.Add("Test Hospital", providers.Coordinates{Latitude: 37.1, Longitude: 127.2})
	svc := services.NewCoordinateService(store, geocoder, nil)

	first, err := svc.Resolve(ctx, "Test Hospital")
	require.NoError(t, err)
	assert.Equal(t, 37.1, first.Latitude)

	stored, err := store.Get(ctx, "Test Hospital")
	require.NoError(t, err)
	assert.Equal(t, *first, *stored)

	second, err := svc.Resolve(ctx, "Test Hospital")
	require.NoError(t, err)
	assert.Equal(t, *first, *second)
	assert.Equal(t, 1, geocoder.Calls("Test Hospital"))
}

func TestCoordinateService_NotFoundIsNotCached(t *testing.T) {
	ctx := context.Background()
	store := newTestCoordinateStore(t)
	geocoder := geolocation.NewMockProvider()
	svc := services.NewCoordinateService(store, geocoder, nil)

	_, err := svc.Resolve(ctx, "Unknown Hospital")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = store.Get(ctx, "Unknown Hospital")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = svc.Resolve(ctx, "Unknown Hospital")
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, 2, geocoder.Calls("Unknown Hospital"))

	// a later success is picked up because nothing negative was stored
	geocoder.Add("Unknown Hospital", providers.Coordinates{Latitude: 35.0, Longitude: 129.0})
	coords, err := svc.Resolve(ctx, "Unknown Hospital")
	require.NoError(t, err)
	assert.Equal(t, 35.0, coords.Latitude)
}

func TestCoordinateService_GeocoderFailureIsNotFound(t *testing.T) {
	geocoder := new(stubGeocoder)
	geocoder.On("Geocode", mock.Anything, "Flaky Hospital").
		Return(nil, apperrors.NewExternalError("geocoder unavailable", errors.New("503"))).Once()
	svc := services.NewCoordinateService(newTestCoordinateStore(t), geocoder, nil)

	_, err := svc.Resolve(context.Background(), "Flaky Hospital")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	geocoder.AssertExpectations(t)
}

func TestCoordinateService_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	geocoder := geolocation.NewMockProvider()
	geocoder.Add("Test Hospital", providers.Coordinates{Latitude: 37.1, Longitude: 127.2})
	svc := services.NewCoordinateService(newTestCoordinateStore(t), geocoder, nil)

	first, err := svc.Resolve(ctx, "Test Hospital")
	require.NoError(t, err)
	first.Latitude = 0

	second, err := svc.Resolve(ctx, "Test Hospital")
	require.NoError(t, err)
	assert.Equal(t, 37.1, second.Latitude)
}

// gatedGeocoder blocks until release is closed, honouring the context it is given.
type gatedGeocoder struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func newGatedGeocoder() *gatedGeocoder {
	return &gatedGeocoder{started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedGeocoder) Geocode(ctx context.Context, query string) (*providers.Coordinates, error) {
	if g.calls.Add(1) == 1 {
		close(g.started)
	}
	select {
	case <-g.release:
		return &providers.Coordinates{Latitude: 37.5, Longitude: 127.0}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestCoordinateService_CancelledCallerDoesNotFailOthers(t *testing.T) {
	geocoder := newGatedGeocoder()
	svc := services.NewCoordinateService(newTestCoordinateStore(t), geocoder, nil)

	shortCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	shortErr := make(chan error, 1)
	go func() {
		_, err := svc.Resolve(shortCtx, "Shared Hospital")
		shortErr <- err
	}()
	<-geocoder.started

	type outcome struct {
		coords *providers.Coordinates
		err    error
	}
	longResult := make(chan outcome, 1)
	go func() {
		coords, err := svc.Resolve(context.Background(), "Shared Hospital")
		longResult <- outcome{coords, err}
	}()

	err := <-shortErr
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(geocoder.release)
	res := <-longResult
	require.NoError(t, res.err)
	assert.Equal(t, 37.5, res.coords.Latitude)
	assert.Equal(t, int32(1), geocoder.calls.Load())
}
