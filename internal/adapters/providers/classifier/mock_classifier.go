package classifier

import (
	"context"

	"github.com/zatekoja/erhospitalmatch/internal/domain/entities"
	"github.com/zatekoja/erhospitalmatch/internal/domain/providers"
)

// ScoreFunc scores a single row
type ScoreFunc func(row entities.FeatureVector) float64

// MockClassifier scores rows locally, for development without the model service
type MockClassifier struct {
	score ScoreFunc
}

// NewMockClassifier creates a classifier that applies score to each row
func NewMockClassifier(score ScoreFunc) *MockClassifier {
	return &MockClassifier{score: score}
}

// NewConstantClassifier creates a classifier that returns p for every row
func NewConstantClassifier(p float64) *MockClassifier {
	return NewMockClassifier(func(entities.FeatureVector) float64 { return p })
}

// CapacityScore favours strict filter matches that are close and have free ER beds.
// It only exists to give the development stack a plausible ordering.
func CapacityScore(row entities.FeatureVector) float64 {
	features := row.Map()
	score := 0.9 - 0.15*features["filter_level"] - 0.01*features["travel_time_min"]
	if features["er_beds"] <= 0 {
		score -= 0.5
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Predict applies the score function to each row
func (m *MockClassifier) Predict(ctx context.Context, rows []entities.FeatureVector) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = m.score(row)
	}
	return out, nil
}

var _ providers.AcceptanceClassifier = (*MockClassifier)(nil)
