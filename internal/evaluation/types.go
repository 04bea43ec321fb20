package evaluation

import (
	"time"

	"github.com/zatekoja/erhospitalmatch/internal/domain/entities"
)

// DispatchCase is one historical dispatch replayed against the recommender.
// AcceptedHPIDs are the hospitals that actually took the patient.
type DispatchCase struct {
	ID            string                      `json:"id"`
	City          string                      `json:"city"`
	District      string                      `json:"district"`
	Latitude      float64                     `json:"lat"`
	Longitude     float64                     `json:"lon"`
	Patient       entities.PatientRequirement `json:"patient"`
	AcceptedHPIDs []string                    `json:"accepted_hpids"`
	Difficulty    string                      `json:"difficulty"` // easy, medium, hard
}

// EvalResult holds the evaluation outcome for a single case.
type EvalResult struct {
	CaseID        string
	Condition     entities.Condition
	Status        entities.RecommendationStatus
	RecallAtK     float64
	MRRAtK        float64
	ResultCount   int
	RecommendedID []string
	Latency       time.Duration
	Err           error
}

// EvalSummary holds aggregate metrics across all cases.
type EvalSummary struct {
	K             int
	TotalCases    int
	FailedCases   int
	AvgRecallAtK  float64
	AvgMRRAtK     float64
	AvgLatency    time.Duration
	CasesWithHits int // cases that returned at least 1 hospital
	ByCondition   map[entities.Condition]*ConditionSummary
	Results       []EvalResult
}

// ConditionSummary holds metrics grouped by suspected condition.
type ConditionSummary struct {
	Count        int
	AvgRecallAtK float64
	AvgMRRAtK    float64
}
