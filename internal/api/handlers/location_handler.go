package handlers

import (
	"net/http"
	"strings"

	"github.com/zatekoja/erhospitalmatch/internal/application/services"
	apperrors "github.com/zatekoja/erhospitalmatch/pkg/errors"
)

// LocationHandler resolves hospital names through the coordinate cache
type LocationHandler struct {
	resolver services.CoordinateResolver
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(resolver services.CoordinateResolver) *LocationHandler {
	return &LocationHandler{resolver: resolver}
}

// ResolveHospital handles GET /api/hospitals/location?name=...
func (h *LocationHandler) ResolveHospital(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		respondWithError(w, http.StatusBadRequest, "name parameter is required")
		return
	}

	coords, err := h.resolver.Resolve(r.Context(), name)
	if err != nil {
		if apperrors.IsNotFound(err) {
			respondWithError(w, http.StatusNotFound, "hospital location not found")
			return
		}
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"name": name,
		"lat":  coords.Latitude,
		"lon":  coords.Longitude,
	})
}
