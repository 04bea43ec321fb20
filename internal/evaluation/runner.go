package evaluation

import (
	"context"
	"time"

	"github.com/zatekoja/erhospitalmatch/internal/application/services"
	"github.com/zatekoja/erhospitalmatch/internal/domain/entities"
	"github.com/zatekoja/erhospitalmatch/internal/infrastructure/observability"
)

// Recommender is the pipeline under evaluation
type Recommender interface {
	Recommend(ctx context.Context, req services.RecommendationRequest) (*services.RecommendationResult, error)
}

// Runner replays dispatch cases through the recommender.
type Runner struct {
	recommender Recommender
	k           int
}

// NewRunner creates a runner scoring the top k recommendations (k <= 0 means 5).
func NewRunner(recommender Recommender, k int) *Runner {
	if k <= 0 {
		k = 5
	}
	return &Runner{recommender: recommender, k: k}
}

// Run evaluates every case. Failed cases score zero and are counted in FailedCases.
func (r *Runner) Run(ctx context.Context, cases []DispatchCase) *EvalSummary {
	summary := &EvalSummary{
		K:           r.k,
		TotalCases:  len(cases),
		ByCondition: make(map[entities.Condition]*ConditionSummary),
	}
	logger := observability.LoggerFromContext(ctx)

	for _, c := range cases {
		topK := r.k
		start := time.Now()
		result, err := r.recommender.Recommend(ctx, services.RecommendationRequest{
			City:        c.City,
			District:    c.District,
			Latitude:    c.Latitude,
			Longitude:   c.Longitude,
			Requirement: c.Patient,
			TopK:        &topK,
		})

		res := EvalResult{
			CaseID:    c.ID,
			Condition: c.Patient.SuspectedCondition,
			Latency:   time.Since(start),
			Err:       err,
		}
		if err != nil {
			logger.Warn().Err(err).Str("case", c.ID).Msg("Dispatch case failed")
		} else {
			ids := make([]string, len(result.Hospitals))
			for i, h := range result.Hospitals {
				ids[i] = h.HospitalID
			}
			res.Status = result.Status
			res.RecommendedID = ids
			res.ResultCount = len(ids)
			res.RecallAtK = RecallAtK(c.AcceptedHPIDs, ids, r.k)
			res.MRRAtK = MRRAtK(c.AcceptedHPIDs, ids, r.k)
		}

		r.updateSummary(summary, res)
	}

	r.finalizeSummary(summary)
	return summary
}

func (r *Runner) updateSummary(s *EvalSummary, res EvalResult) {
	s.Results = append(s.Results, res)
	s.AvgRecallAtK += res.RecallAtK
	s.AvgMRRAtK += res.MRRAtK
	s.AvgLatency += res.Latency
	if res.Err != nil {
		s.FailedCases++
	}
	if res.ResultCount > 0 {
		s.CasesWithHits++
	}

	cs, ok := s.ByCondition[res.Condition]
	if !ok {
		cs = &ConditionSummary{}
		s.ByCondition[res.Condition] = cs
	}
	cs.Count++
	cs.AvgRecallAtK += res.RecallAtK
	cs.AvgMRRAtK += res.MRRAtK
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	if s.TotalCases > 0 {
		n := float64(s.TotalCases)
		s.AvgRecallAtK /= n
		s.AvgMRRAtK /= n
		s.AvgLatency /= time.Duration(s.TotalCases)
	}

	for _, cs := range s.ByCondition {
		if cs.Count > 0 {
			n := float64(cs.Count)
			cs.AvgRecallAtK /= n
			cs.AvgMRRAtK /= n
		}
	}
}
