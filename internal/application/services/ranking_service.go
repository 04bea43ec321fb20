package services

import (
	"context"
	"sort"
	"time"

	"github.com/zatekoja/erhospitalmatch/internal/domain/entities"
	"github.com/zatekoja/erhospitalmatch/internal/domain/providers"
	"github.com/zatekoja/erhospitalmatch/internal/infrastructure/observability"
	"go.opentelemetry.io/otel/attribute"
)

// RankOptions are the per-request ranking knobs
type RankOptions struct {
	Threshold      float64
	TopK           int
	MaxFilterLevel int
}

// ScoredCandidate is a candidate with the row it was scored on and its acceptance probability
type ScoredCandidate struct {
	Candidate  entities.Candidate
	Features   entities.FeatureVector
	AcceptProb float64
}

// RankingService orders candidates by predicted acceptance
type RankingService struct {
	classifier providers.AcceptanceClassifier
	metrics    *observability.Metrics
}

// NewRankingService creates a new ranking service. metrics may be nil.
func NewRankingService(classifier providers.AcceptanceClassifier, metrics *observability.Metrics) *RankingService {
	return &RankingService{
		classifier: classifier,
		metrics:    metrics,
	}
}

// Rank returns at most TopK recommendations with dense 1-based ranks.
// An empty list means nothing survived; classifier failures also yield an empty list.
func (s *RankingService) Rank(ctx context.Context, candidates []entities.Candidate, req entities.PatientRequirement, now time.Time, opts RankOptions) []entities.RankedRecommendation {
	scored := s.Score(ctx, candidates, req, now, opts)
	ranked := make([]entities.RankedRecommendation, len(scored))
	for i, sc := range scored {
		ranked[i] = toRecommendation(i+1, sc)
	}
	return ranked
}

// Score is Rank without the projection, keeping the candidate and its features.
// The result is ordered and truncated exactly like Rank.
func (s *RankingService) Score(ctx context.Context, candidates []entities.Candidate, req entities.PatientRequirement, now time.Time, opts RankOptions) []ScoredCandidate {
	ctx, span := observability.StartSpan(ctx, "RankingService.Rank",
		attribute.Int("rank.candidates", len(candidates)),
		attribute.Float64("rank.threshold", opts.Threshold),
		attribute.Int("rank.top_k", opts.TopK),
	)
	defer span.End()

	logger := observability.LoggerFromContext(ctx)

	if opts.TopK <= 0 {
		return []ScoredCandidate{}
	}

	eligible := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.FilterLevel > opts.MaxFilterLevel {
			continue
		}
		eligible = append(eligible, ScoredCandidate{
			Candidate: c,
			Features:  BuildFeatures(c, req, now),
		})
	}
	if len(eligible) == 0 {
		return []ScoredCandidate{}
	}

	rows := make([]entities.FeatureVector, len(eligible))
	for i, sc := range eligible {
		rows[i] = sc.Features
	}

	probs, err := s.classifier.Predict(ctx, rows)
	if err != nil {
		observability.RecordError(span, err)
		observability.RecordExternalFailure(ctx, s.metrics, "classifier")
		logger.Error().Err(err).Int("rows", len(rows)).Msg("Acceptance classifier failed")
		return []ScoredCandidate{}
	}
	if len(probs) != len(rows) {
		observability.RecordExternalFailure(ctx, s.metrics, "classifier")
		logger.Error().
			Int("rows", len(rows)).
			Int("probabilities", len(probs)).
			Msg("Acceptance classifier returned wrong number of probabilities")
		return []ScoredCandidate{}
	}

	accepted := make([]ScoredCandidate, 0, len(eligible))
	for i, sc := range eligible {
		if probs[i] < opts.Threshold {
			continue
		}
		sc.AcceptProb = probs[i]
		accepted = append(accepted, sc)
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].AcceptProb > accepted[j].AcceptProb
	})
	if len(accepted) > opts.TopK {
		accepted = accepted[:opts.TopK]
	}

	span.SetAttributes(attribute.Int("rank.accepted", len(accepted)))
	return accepted
}

func toRecommendation(rank int, sc ScoredCandidate) entities.RankedRecommendation {
	rec := sc.Candidate.Record
	return entities.RankedRecommendation{
		Rank:          rank,
		HospitalID:    rec.HPID,
		Name:          rec.Name,
		Phone:         rec.Phone,
		AcceptProb:    sc.AcceptProb,
		DistanceKm:    sc.Candidate.DistanceKm,
		TravelTimeMin: sc.Candidate.TravelTimeMin,
	}
}
