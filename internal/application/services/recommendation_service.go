package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/erhospitalmatch/internal/domain/entities"
	"github.com/zatekoja/erhospitalmatch/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/erhospitalmatch/pkg/errors"
)

// RecommendationRequest is one end-to-end hospital recommendation request.
// Nil overrides fall back to the service defaults.
type RecommendationRequest struct {
	City           string
	District       string
	Latitude       float64
	Longitude      float64
	Requirement    entities.PatientRequirement
	Threshold      *float64
	TopK           *int
	MaxFilterLevel *int
}

// RecommendationResult is the ranked outcome plus the payload each entry was scored on
type RecommendationResult struct {
	RequestID      string                          `json:"request_id"`
	Status         entities.RecommendationStatus   `json:"status"`
	CandidateCount int                             `json:"candidate_count"`
	Hospitals      []entities.RankedRecommendation `json:"hospitals"`
	Details        []entities.RecommendationDetail `json:"details"`
}

// RecommendationService runs search, ranking and the detail merge
type RecommendationService struct {
	search   *HospitalSearchService
	ranking  *RankingService
	defaults RankOptions
	now      func() time.Time
}

// NewRecommendationService creates a new recommendation service
func NewRecommendationService(search *HospitalSearchService, ranking *RankingService, defaults RankOptions) *RecommendationService {
	return &RecommendationService{
		search:   search,
		ranking:  ranking,
		defaults: defaults,
		now:      time.Now,
	}
}

// WithClock replaces the time source used for time-of-day features
func (s *RecommendationService) WithClock(now func() time.Time) *RecommendationService {
	s.now = now
	return s
}

// Recommend returns an error only for invalid input or unknown regions.
// Empty outcomes are reported through Status.
func (s *RecommendationService) Recommend(ctx context.Context, req RecommendationRequest) (*RecommendationResult, error) {
	requestID := observability.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = observability.WithRequestID(ctx, requestID)
	}

	opts, err := s.resolveOptions(req)
	if err != nil {
		return nil, err
	}
	if err := validateLocation(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}
	requirement := req.Requirement.Normalize()

	candidates, err := s.search.Search(ctx, SearchRequest{
		City:        req.City,
		District:    req.District,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Requirement: requirement,
	})
	if err != nil {
		return nil, err
	}

	result := &RecommendationResult{
		RequestID:      requestID,
		CandidateCount: len(candidates),
		Hospitals:      []entities.RankedRecommendation{},
		Details:        []entities.RecommendationDetail{},
	}
	if len(candidates) == 0 {
		result.Status = entities.RecommendationStatusNoCandidates
		return result, nil
	}

	scored := s.ranking.Score(ctx, candidates, requirement, s.now(), opts)
	if len(scored) == 0 {
		result.Status = entities.RecommendationStatusNoAcceptableCandidates
		return result, nil
	}

	for i, sc := range scored {
		ranked := toRecommendation(i+1, sc)
		result.Hospitals = append(result.Hospitals, ranked)
		result.Details = append(result.Details, mergeDetail(ranked, sc))
	}
	result.Status = entities.RecommendationStatusOK

	observability.LoggerFromContext(ctx).Info().
		Int("candidates", len(candidates)).
		Int("recommended", len(result.Hospitals)).
		Msg("Recommendation completed")

	return result, nil
}

func (s *RecommendationService) resolveOptions(req RecommendationRequest) (RankOptions, error) {
	opts := s.defaults
	if req.Threshold != nil {
		if *req.Threshold < 0 || *req.Threshold > 1 || math.IsNaN(*req.Threshold) {
			return opts, apperrors.NewValidationError(fmt.Sprintf("threshold must be within [0,1], got %v", *req.Threshold))
		}
		opts.Threshold = *req.Threshold
	}
	if req.TopK != nil {
		if *req.TopK < 1 {
			return opts, apperrors.NewValidationError(fmt.Sprintf("top_k must be at least 1, got %d", *req.TopK))
		}
		opts.TopK = *req.TopK
	}
	if req.MaxFilterLevel != nil {
		if *req.MaxFilterLevel < 0 || *req.MaxFilterLevel > 3 {
			return opts, apperrors.NewValidationError(fmt.Sprintf("max_filter_level must be within [0,3], got %d", *req.MaxFilterLevel))
		}
		opts.MaxFilterLevel = *req.MaxFilterLevel
	}
	return opts, nil
}

func validateLocation(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return apperrors.NewValidationError(fmt.Sprintf("latitude out of range: %v", lat))
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return apperrors.NewValidationError(fmt.Sprintf("longitude out of range: %v", lon))
	}
	return nil
}

func mergeDetail(ranked entities.RankedRecommendation, sc ScoredCandidate) entities.RecommendationDetail {
	c := sc.Candidate
	detail := entities.RecommendationDetail{
		RankedRecommendation: ranked,
		District:             c.District,
		DistrictLevel:        c.DistrictLevel,
		FilterLevel:          c.FilterLevel,
		ERBeds:               c.Record.ERBeds,
		ICUBeds:              c.Record.ICUBeds,
		Features:             sc.Features.Map(),
	}
	if c.Static != nil {
		detail.Address = c.Static.Address
		detail.TotalERBeds = c.Static.TotalERBeds
		detail.TotalICUBeds = c.Static.TotalICUBeds
		detail.TotalBeds = c.Static.TotalBeds
		if detail.Phone == "" {
			detail.Phone = c.Static.Phone
		}
	}
	detail.ERBedRatio = entities.BedRatio(detail.ERBeds, detail.TotalERBeds)
	detail.ICUBedRatio = entities.BedRatio(detail.ICUBeds, detail.TotalICUBeds)
	return detail
}
