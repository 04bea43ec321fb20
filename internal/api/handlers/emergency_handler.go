package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/zatekoja/erhospitalmatch/internal/application/services"
	"github.com/zatekoja/erhospitalmatch/internal/domain/entities"
)

const (
	maxRequestBodyBytes = 1 << 20

	// MessageNoCandidates is returned when no hospital passed the search stage
	MessageNoCandidates = "병원 후보를 찾을 수 없습니다"
	// MessageNoAcceptableCandidates is returned when every candidate was rejected by ranking
	MessageNoAcceptableCandidates = "추천 가능한 병원이 없습니다"
)

// Recommender produces ranked hospital recommendations
type Recommender interface {
	Recommend(ctx context.Context, req services.RecommendationRequest) (*services.RecommendationResult, error)
}

// EmergencyHandler handles emergency hospital recommendation requests
type EmergencyHandler struct {
	recommender Recommender
}

// NewEmergencyHandler creates a new emergency handler
func NewEmergencyHandler(recommender Recommender) *EmergencyHandler {
	return &EmergencyHandler{recommender: recommender}
}

// RecommendHospitalsRequest is the request body of POST /api/emergency/hospitals
type RecommendHospitalsRequest struct {
	City           string          `json:"city"`
	District       string          `json:"district"`
	UserLocation   *LocationBody   `json:"user_location"`
	Patient        *PatientProfile `json:"patient"`
	Threshold      *float64        `json:"threshold,omitempty"`
	TopK           *int            `json:"top_k,omitempty"`
	MaxFilterLevel *int            `json:"max_filter_level,omitempty"`
}

// LocationBody is the requester's position
type LocationBody struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// PatientProfile is the structured patient summary
type PatientProfile struct {
	Severity           string                     `json:"severity"`
	SuspectedCondition string                     `json:"suspected_condition"`
	RequiredResources  entities.RequiredResources `json:"required_resources"`
	Confidence         float64                    `json:"confidence"`
	Notes              string                     `json:"notes,omitempty"`
}

type emptyResultResponse struct {
	Error     string                        `json:"error"`
	RequestID string                        `json:"request_id"`
	Status    entities.RecommendationStatus `json:"status"`
}

// RecommendHospitals handles POST /api/emergency/hospitals
func (h *EmergencyHandler) RecommendHospitals(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	var body RecommendHospitalsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, msg := body.toServiceRequest()
	if msg != "" {
		respondWithError(w, http.StatusBadRequest, msg)
		return
	}

	result, err := h.recommender.Recommend(r.Context(), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	switch result.Status {
	case entities.RecommendationStatusNoCandidates:
		respondWithJSON(w, http.StatusNotFound, emptyResultResponse{
			Error:     MessageNoCandidates,
			RequestID: result.RequestID,
			Status:    result.Status,
		})
	case entities.RecommendationStatusNoAcceptableCandidates:
		respondWithJSON(w, http.StatusNotFound, emptyResultResponse{
			Error:     MessageNoAcceptableCandidates,
			RequestID: result.RequestID,
			Status:    result.Status,
		})
	default:
		respondWithJSON(w, http.StatusOK, result)
	}
}

func (b RecommendHospitalsRequest) toServiceRequest() (services.RecommendationRequest, string) {
	city := strings.TrimSpace(b.City)
	district := strings.TrimSpace(b.District)
	if city == "" || district == "" {
		return services.RecommendationRequest{}, "city and district are required"
	}
	if b.UserLocation == nil || b.UserLocation.Lat == nil || b.UserLocation.Lon == nil {
		return services.RecommendationRequest{}, "user_location.lat and user_location.lon are required"
	}
	if b.Patient == nil {
		return services.RecommendationRequest{}, "patient is required"
	}

	requirement := entities.NewPatientRequirement(
		b.Patient.Severity,
		b.Patient.SuspectedCondition,
		b.Patient.RequiredResources,
		b.Patient.Confidence,
	)
	requirement.Notes = b.Patient.Notes

	return services.RecommendationRequest{
		City:           city,
		District:       district,
		Latitude:       *b.UserLocation.Lat,
		Longitude:      *b.UserLocation.Lon,
		Requirement:    requirement,
		Threshold:      b.Threshold,
		TopK:           b.TopK,
		MaxFilterLevel: b.MaxFilterLevel,
	}, ""
}
