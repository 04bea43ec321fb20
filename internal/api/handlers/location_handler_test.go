package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/erhospitalmatch/internal/api/handlers"
	"github.com/zatekoja/erhospitalmatch/internal/domain/providers"
	apperrors "github.com/zatekoja/erhospitalmatch/pkg/errors"
)

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, name string) (*providers.Coordinates, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.Coordinates), args.Error(1)
}

func getLocation(h *handlers.LocationHandler, name string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/hospitals/location?name="+url.QueryEscape(name), nil)
	w := httptest.NewRecorder()
	h.ResolveHospital(w, req)
	return w
}

func TestLocationHandler_Resolved(t *testing.T) {
	resolver := new(MockResolver)
	resolver.On("Resolve", mock.Anything, "서울아산병원").
		Return(&providers.Coordinates{Latitude: 37.5265, Longitude: 127.1082}, nil)

	w := getLocation(handlers.NewLocationHandler(resolver), "서울아산병원")

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 37.5265, body["lat"])
	assert.Equal(t, 127.1082, body["lon"])
}

func TestLocationHandler_NotFound(t *testing.T) {
	resolver := new(MockResolver)
	resolver.On("Resolve", mock.Anything, "없는병원").Return(nil, apperrors.NewNotFoundError("no location"))

	w := getLocation(handlers.NewLocationHandler(resolver), "없는병원")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLocationHandler_UpstreamFailure(t *testing.T) {
	resolver := new(MockResolver)
	resolver.On("Resolve", mock.Anything, "병원").Return(nil, apperrors.NewExternalError("geocoder down", errors.New("503")))

	w := getLocation(handlers.NewLocationHandler(resolver), "병원")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestLocationHandler_MissingName(t *testing.T) {
	resolver := new(MockResolver)

	w := getLocation(handlers.NewLocationHandler(resolver), "  ")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}
