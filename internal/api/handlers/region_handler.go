package handlers

import (
	"net/http"
	"strings"
)

// DistrictLister lists the districts registered for a city
type DistrictLister interface {
	Districts(city string) ([]string, error)
	Cities() []string
}

// RegionHandler exposes the city/district registry
type RegionHandler struct {
	regions DistrictLister
}

// NewRegionHandler creates a new region handler
func NewRegionHandler(regions DistrictLister) *RegionHandler {
	return &RegionHandler{regions: regions}
}

// ListCities handles GET /api/regions
func (h *RegionHandler) ListCities(w http.ResponseWriter, r *http.Request) {
	cities := h.regions.Cities()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"cities": cities,
		"count":  len(cities),
	})
}

// ListDistricts handles GET /api/regions/{city}/districts
func (h *RegionHandler) ListDistricts(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.PathValue("city"))
	if city == "" {
		respondWithError(w, http.StatusBadRequest, "city is required")
		return
	}

	districts, err := h.regions.Districts(city)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"city":      city,
		"districts": districts,
		"count":     len(districts),
	})
}
