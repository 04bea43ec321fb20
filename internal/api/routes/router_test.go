package routes_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/erhospitalmatch/internal/adapters/cache"
	"github.com/zatekoja/erhospitalmatch/internal/adapters/kvstore"
	"github.com/zatekoja/erhospitalmatch/internal/adapters/providers/classifier"
	"github.com/zatekoja/erhospitalmatch/internal/adapters/providers/emergency"
	"github.com/zatekoja/erhospitalmatch/internal/adapters/providers/geolocation"
	"github.com/zatekoja/erhospitalmatch/internal/adapters/regions"
	"github.com/zatekoja/erhospitalmatch/internal/api/handlers"
	"github.com/zatekoja/erhospitalmatch/internal/api/routes"
	"github.com/zatekoja/erhospitalmatch/internal/application/services"
)

func newTestServer(t *testing.T, acceptance float64) http.Handler {
	t.Helper()

	regionRepo, err := regions.NewDefaultRegionRepository()
	require.NoError(t, err)
	store, err := cache.NewLRUAdapter(256)
	require.NoError(t, err)

	live := emergency.NewSeoulFixtureProvider()
	coords := services.NewCoordinateService(kvstore.NewCoordinateStore(store), geolocation.NewMockProvider(), nil)
	geo := services.NewGeoIndexService(regionRepo)
	search := services.NewHospitalSearchService(
		geo,
		live,
		services.NewConstraintFilter(),
		services.NewDistanceService(coords, nil),
		services.NewStaticProfileService(kvstore.NewStaticProfileStore(store), live, nil),
		services.SearchOptions{MaxExpansionLevel: 1, Concurrency: 4, TargetTimeout: time.Second},
		nil,
	)
	ranking := services.NewRankingService(classifier.NewConstantClassifier(acceptance), nil)
	recommendations := services.NewRecommendationService(search, ranking, services.RankOptions{Threshold: 0.3, TopK: 5, MaxFilterLevel: 1})

	router := routes.NewRouter(
		handlers.NewEmergencyHandler(recommendations),
		handlers.NewRegionHandler(geo),
		handlers.NewLocationHandler(coords),
		nil,
		[]string{"*"},
		nil,
	)
	return router.SetupRoutes()
}

const recommendBody = `{
	"city": "서울특별시",
	"district": "강남구",
	"user_location": {"lat": 37.4881, "lon": 127.0856},
	"patient": {"severity": "HIGH", "suspected_condition": "UNKNOWN", "required_resources": {"need_icu": true}, "confidence": 0.9}
}`

func TestRouter_RecommendEndToEnd(t *testing.T) {
	server := newTestServer(t, 0.8)

	req := httptest.NewRequest(http.MethodPost, "/api/emergency/hospitals", bytes.NewBufferString(recommendBody))
	req.Header.Set(requestIDHeader, "e2e-1")
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "e2e-1", w.Header().Get(requestIDHeader))

	var body services.RecommendationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "e2e-1", body.RequestID)
	require.NotEmpty(t, body.Hospitals)
	assert.Equal(t, "A1100010", body.Hospitals[0].HospitalID)

	seen := map[string]bool{}
	for i, h := range body.Hospitals {
		assert.Equal(t, i+1, h.Rank)
		assert.False(t, seen[h.HospitalID])
		seen[h.HospitalID] = true
	}
	// level 2 only, above the default filter level
	assert.False(t, seen["A1100011"])
}

func TestRouter_NoAcceptableCandidates(t *testing.T) {
	server := newTestServer(t, 0.1)

	req := httptest.NewRequest(http.MethodPost, "/api/emergency/hospitals", bytes.NewBufferString(recommendBody))
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), handlers.MessageNoAcceptableCandidates)
}

func TestRouter_Health(t *testing.T) {
	server := newTestServer(t, 0.8)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestRouter_Districts(t *testing.T) {
	server := newTestServer(t, 0.8)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/regions/"+url.PathEscape("서울특별시")+"/districts", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_HospitalLocation(t *testing.T) {
	server := newTestServer(t, 0.8)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/hospitals/location?name="+url.QueryEscape("삼성서울병원"), nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

const requestIDHeader = "X-Request-ID"
