// Package bootstrap assembles the recommendation pipeline from configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/erhospitalmatch/internal/adapters/cache"
	"github.com/zatekoja/erhospitalmatch/internal/adapters/database"
	"github.com/zatekoja/erhospitalmatch/internal/adapters/kvstore"
	"github.com/zatekoja/erhospitalmatch/internal/adapters/providers/classifier"
	"github.com/zatekoja/erhospitalmatch/internal/adapters/providers/emergency"
	"github.com/zatekoja/erhospitalmatch/internal/adapters/providers/geolocation"
	"github.com/zatekoja/erhospitalmatch/internal/adapters/regions"
	"github.com/zatekoja/erhospitalmatch/internal/application/services"
	"github.com/zatekoja/erhospitalmatch/internal/domain/providers"
	"github.com/zatekoja/erhospitalmatch/internal/domain/repositories"
	"github.com/zatekoja/erhospitalmatch/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/erhospitalmatch/internal/infrastructure/clients/redis"
	"github.com/zatekoja/erhospitalmatch/internal/infrastructure/observability"
	"github.com/zatekoja/erhospitalmatch/pkg/config"
)

// App holds the wired services shared by the HTTP server and the CLI
type App struct {
	GeoIndex        *services.GeoIndexService
	Coordinates     *services.CoordinateService
	Search          *services.HospitalSearchService
	Ranking         *services.RankingService
	Recommendations *services.RecommendationService

	closers []func() error
}

// New wires every collaborator selected by cfg. metrics may be nil.
// Callers must Close the App to release the stores.
func New(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (*App, error) {
	app := &App{}
	ok := false
	defer func() {
		if !ok {
			if err := app.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to release stores after startup error")
			}
		}
	}()

	regionRepo, err := regions.LoadRegionRepository(cfg.Regions.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load regions: %w", err)
	}

	kv, err := app.newCacheProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	staticRepo, err := app.newStaticRepository(ctx, cfg, kv)
	if err != nil {
		return nil, err
	}

	live, registry := newEmergencyProviders(cfg)
	geocoder := newGeocoder(cfg)

	app.GeoIndex = services.NewGeoIndexService(regionRepo)
	app.Coordinates = services.NewCoordinateService(kvstore.NewCoordinateStore(kv), geocoder, metrics)
	app.Search = services.NewHospitalSearchService(
		app.GeoIndex,
		live,
		services.NewConstraintFilter(),
		services.NewDistanceService(app.Coordinates, services.DefaultTravelTimeEstimator()),
		services.NewStaticProfileService(staticRepo, registry, metrics),
		services.SearchOptions{
			MaxExpansionLevel: cfg.Search.MaxExpansionLevel,
			Concurrency:       cfg.Search.Concurrency,
			TargetTimeout:     cfg.Search.TargetTimeout,
		},
		metrics,
	)
	app.Ranking = services.NewRankingService(newClassifier(cfg), metrics)
	app.Recommendations = services.NewRecommendationService(app.Search, app.Ranking, services.RankOptions{
		Threshold:      cfg.Search.Threshold,
		TopK:           cfg.Search.TopK,
		MaxFilterLevel: cfg.Search.MaxFilterLevel,
	})

	ok = true
	return app, nil
}

// Close releases stores and connections in reverse order of creation
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) newCacheProvider(ctx context.Context, cfg *config.Config) (providers.CacheProvider, error) {
	memory, err := cache.NewLRUAdapter(cfg.Store.MemoryCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}

	switch cfg.Store.Backend {
	case "memory":
		log.Info().Int("size", cfg.Store.MemoryCacheSize).Msg("Using in-memory store; coordinates are lost on restart")
		return memory, nil
	case "redis":
		client, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return cache.NewTieredAdapter(memory, cache.NewRedisAdapter(client)), nil
	default:
		db, err := cache.OpenLevelDB(cfg.Store.LevelDBPath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		log.Info().Str("path", cfg.Store.LevelDBPath).Msg("Opened LevelDB store")
		return cache.NewTieredAdapter(memory, db), nil
	}
}

func (a *App) newStaticRepository(ctx context.Context, cfg *config.Config, kv providers.CacheProvider) (repositories.StaticProfileRepository, error) {
	if cfg.Store.StaticBackend != "postgres" {
		return kvstore.NewStaticProfileStore(kv), nil
	}

	client, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)
	if err := client.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return database.NewStaticProfileAdapter(client), nil
}

func newEmergencyProviders(cfg *config.Config) (providers.EmergencyDataProvider, providers.HospitalRegistryProvider) {
	if cfg.EmergencyAPI.Provider != "http" {
		log.Warn().Msg("Using fixture emergency data provider")
		fixtures := emergency.NewSeoulFixtureProvider()
		return fixtures, fixtures
	}
	if cfg.EmergencyAPI.ServiceKey == "" {
		log.Warn().Msg("EMERGENCY_API_SERVICE_KEY is not set; upstream will reject requests")
	}

	client := emergency.NewClient(emergency.Config{
		BaseURL:      cfg.EmergencyAPI.BaseURL,
		ServiceKey:   cfg.EmergencyAPI.ServiceKey,
		Timeout:      time.Duration(cfg.EmergencyAPI.TimeoutSeconds) * time.Second,
		RateLimitRPS: cfg.EmergencyAPI.RateLimitRPS,
		PageSize:     cfg.EmergencyAPI.PageSize,
	})
	return client, client
}

func newGeocoder(cfg *config.Config) providers.GeolocationProvider {
	timeout := time.Duration(cfg.Geolocation.TimeoutSeconds) * time.Second

	switch cfg.Geolocation.Provider {
	case "kakao":
		if cfg.Geolocation.APIKey == "" {
			log.Warn().Msg("GEOLOCATION_API_KEY is not set; using mock geolocation provider")
			return geolocation.NewMockProvider()
		}
		return geolocation.NewKakaoProvider(cfg.Geolocation.APIKey, timeout)
	case "overpass":
		return geolocation.NewOverpassProvider(cfg.Geolocation.OverpassEndpoint, timeout)
	case "kakao+overpass":
		overpass := geolocation.NewOverpassProvider(cfg.Geolocation.OverpassEndpoint, timeout)
		if cfg.Geolocation.APIKey == "" {
			log.Warn().Msg("GEOLOCATION_API_KEY is not set; using Overpass only")
			return overpass
		}
		return geolocation.NewFallbackProvider(geolocation.NewKakaoProvider(cfg.Geolocation.APIKey, timeout), overpass)
	default:
		return geolocation.NewMockProvider()
	}
}

func newClassifier(cfg *config.Config) providers.AcceptanceClassifier {
	if cfg.Classifier.Provider == "http" {
		return classifier.NewHTTPClassifier(cfg.Classifier.URL, time.Duration(cfg.Classifier.TimeoutSeconds)*time.Second)
	}
	log.Warn().Msg("Using heuristic mock classifier")
	return classifier.NewMockClassifier(classifier.CapacityScore)
}
