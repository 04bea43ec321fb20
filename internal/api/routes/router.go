package routes

import (
	"net/http"

	"github.com/zatekoja/erhospitalmatch/internal/api/handlers"
	"github.com/zatekoja/erhospitalmatch/internal/api/middleware"
	"github.com/zatekoja/erhospitalmatch/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	emergencyHandler *handlers.EmergencyHandler
	regionHandler    *handlers.RegionHandler
	locationHandler  *handlers.LocationHandler

	rateLimiter    *middleware.RateLimiter
	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router. rateLimiter and metrics may be nil.
func NewRouter(
	emergencyHandler *handlers.EmergencyHandler,
	regionHandler *handlers.RegionHandler,
	locationHandler *handlers.LocationHandler,
	rateLimiter *middleware.RateLimiter,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:              http.NewServeMux(),
		emergencyHandler: emergencyHandler,
		regionHandler:    regionHandler,
		locationHandler:  locationHandler,
		rateLimiter:      rateLimiter,
		allowedOrigins:   allowedOrigins,
		metrics:          metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Recommendation
	r.mux.HandleFunc("POST /api/emergency/hospitals", r.emergencyHandler.RecommendHospitals)

	// Region registry
	r.mux.HandleFunc("GET /api/regions", r.regionHandler.ListCities)
	r.mux.HandleFunc("GET /api/regions/{city}/districts", r.regionHandler.ListDistricts)

	// Coordinate cache
	r.mux.HandleFunc("GET /api/hospitals/location", r.locationHandler.ResolveHospital)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.RequestIDMiddleware(handler)

	if r.rateLimiter != nil {
		handler = r.rateLimiter.Middleware(handler)
	}

	// CORS wraps everything so rejected requests still carry the headers
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
