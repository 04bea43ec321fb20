package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zatekoja/erhospitalmatch/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/erhospitalmatch/pkg/errors"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps an AppError type onto an HTTP status
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ErrorTypeValidation, apperrors.ErrorTypeConfiguration:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
			return
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
			return
		case apperrors.ErrorTypeExternal:
			observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("Upstream failure")
			respondWithError(w, http.StatusBadGateway, "upstream service unavailable")
			return
		}
	}

	observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("Request failed")
	respondWithError(w, http.StatusInternalServerError, "internal server error")
}
