package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"github.com/zatekoja/erhospitalmatch/internal/domain/entities"
	"github.com/zatekoja/erhospitalmatch/internal/domain/providers"
	apperrors "github.com/zatekoja/erhospitalmatch/pkg/errors"
)

const predictPath = "/predict"

// HTTPClassifier calls the acceptance model service. Consecutive failures
// open a circuit breaker so a dead model service fails fast.
type HTTPClassifier struct {
	endpoint string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker
}

// PredictRequest is the model service input: one row per hospital, columns in FeatureNames order
type PredictRequest struct {
	FeatureNames []string    `json:"feature_names"`
	Rows         [][]float64 `json:"rows"`
}

// PredictResponse carries one acceptance probability per row
type PredictResponse struct {
	Probabilities []float64 `json:"probabilities"`
}

// NewHTTPClassifier creates a classifier client for the model service at baseURL
func NewHTTPClassifier(baseURL string, timeout time.Duration) *HTTPClassifier {
	return NewHTTPClassifierWithClient(baseURL, &http.Client{Timeout: timeout}, 5)
}

// NewHTTPClassifierWithClient allows overriding the HTTP client and the number
// of consecutive failures that trips the breaker (used for tests).
func NewHTTPClassifierWithClient(baseURL string, httpClient *http.Client, tripAfter uint32) *HTTPClassifier {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "acceptance-classifier",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= tripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
		},
	})

	return &HTTPClassifier{
		endpoint: strings.TrimRight(baseURL, "/") + predictPath,
		client:   httpClient,
		breaker:  breaker,
	}
}

// Predict scores rows in one batched call, preserving order
func (c *HTTPClassifier) Predict(ctx context.Context, rows []entities.FeatureVector) ([]float64, error) {
	if len(rows) == 0 {
		return []float64{}, nil
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.predict(ctx, rows)
	})
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeExternal) {
			return nil, err
		}
		return nil, apperrors.NewExternalError("acceptance classifier unavailable", err)
	}
	return result.([]float64), nil
}

func (c *HTTPClassifier) predict(ctx context.Context, rows []entities.FeatureVector) ([]float64, error) {
	reqBody := PredictRequest{
		FeatureNames: entities.FeatureNames[:],
		Rows:         make([][]float64, len(rows)),
	}
	for i, row := range rows {
		reqBody.Rows[i] = row.Slice()
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to marshal classifier request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to create classifier request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalError("classifier request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewExternalError(fmt.Sprintf("classifier returned status: %d", resp.StatusCode), nil)
	}

	var predictResp PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&predictResp); err != nil {
		return nil, apperrors.NewExternalError("failed to decode classifier response", err)
	}

	if len(predictResp.Probabilities) != len(rows) {
		return nil, apperrors.NewExternalError(
			fmt.Sprintf("classifier returned %d probabilities for %d rows", len(predictResp.Probabilities), len(rows)), nil)
	}
	for i, p := range predictResp.Probabilities {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, apperrors.NewExternalError(fmt.Sprintf("classifier probability %v at row %d is outside [0,1]", p, i), nil)
		}
	}

	return predictResp.Probabilities, nil
}

// State reports the breaker state, for health output
func (c *HTTPClassifier) State() string {
	return c.breaker.State().String()
}

var _ providers.AcceptanceClassifier = (*HTTPClassifier)(nil)
