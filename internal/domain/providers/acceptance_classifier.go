package providers

import (
	"context"

	"github.com/zatekoja/erhospitalmatch/internal/domain/entities"
)

// AcceptanceClassifier scores how likely each hospital is to accept the patient
type AcceptanceClassifier interface {
	// Predict returns one probability in [0,1] per row, in input order
	Predict(ctx context.Context, rows []entities.FeatureVector) ([]float64, error)
}
