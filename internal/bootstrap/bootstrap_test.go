package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/erhospitalmatch/internal/adapters/cache"
	"github.com/zatekoja/erhospitalmatch/internal/adapters/providers/classifier"
	"github.com/zatekoja/erhospitalmatch/internal/adapters/providers/geolocation"
	"github.com/zatekoja/erhospitalmatch/internal/application/services"
	"github.com/zatekoja/erhospitalmatch/internal/domain/entities"
	"github.com/zatekoja/erhospitalmatch/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Store.LevelDBPath = filepath.Join(t.TempDir(), "store")
	return cfg
}

func TestNew_DevelopmentStack(t *testing.T) {
	cfg := testConfig(t)

	app, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer app.Close()

	result, err := app.Recommendations.Recommend(context.Background(), services.RecommendationRequest{
		City:        "서울특별시",
		District:    "강남구",
		Latitude:    37.4881,
		Longitude:   127.0856,
		Requirement: entities.NewPatientRequirement("HIGH", "UNKNOWN", entities.RequiredResources{NeedICU: true}, 0.9),
	})
	require.NoError(t, err)
	assert.Equal(t, entities.RecommendationStatusOK, result.Status)
	assert.Equal(t, "A1100010", result.Hospitals[0].HospitalID)
}

func TestNew_MemoryBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Backend = "memory"

	app, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.NoError(t, app.Close())
}

func TestNew_BadRegionsPath(t *testing.T) {
	cfg := testConfig(t)
	cfg.Regions.Path = filepath.Join(t.TempDir(), "missing.json")

	app, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
	assert.Nil(t, app)
}

func TestNew_ReleasesStoresOnLaterFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Backend = "leveldb"
	cfg.Store.StaticBackend = "postgres"

	// cancelled context fails the postgres ping after LevelDB is open
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	app, err := New(ctx, cfg, nil)
	require.Error(t, err)
	assert.Nil(t, app)

	db, err := cache.OpenLevelDB(cfg.Store.LevelDBPath)
	require.NoError(t, err, "LevelDB lock should be released after a failed startup")
	assert.NoError(t, db.Close())
}

func TestApp_CloseNil(t *testing.T) {
	var app *App
	assert.NoError(t, app.Close())
}

func TestNewGeocoder(t *testing.T) {
	cfg := testConfig(t)

	cfg.Geolocation.Provider = "mock"
	assert.IsType(t, &geolocation.MockProvider{}, newGeocoder(cfg))

	cfg.Geolocation.Provider = "kakao"
	cfg.Geolocation.APIKey = ""
	assert.IsType(t, &geolocation.MockProvider{}, newGeocoder(cfg))

	cfg.Geolocation.APIKey = "key"
	assert.IsType(t, &geolocation.KakaoProvider{}, newGeocoder(cfg))

	cfg.Geolocation.Provider = "kakao+overpass"
	assert.IsType(t, &geolocation.FallbackProvider{}, newGeocoder(cfg))

	cfg.Geolocation.Provider = "overpass"
	assert.IsType(t, &geolocation.OverpassProvider{}, newGeocoder(cfg))
}

func TestNewClassifier(t *testing.T) {
	cfg := testConfig(t)

	assert.IsType(t, &classifier.MockClassifier{}, newClassifier(cfg))

	cfg.Classifier.Provider = "http"
	assert.IsType(t, &classifier.HTTPClassifier{}, newClassifier(cfg))
}
