package geolocation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/zatekoja/erhospitalmatch/internal/domain/providers"
	apperrors "github.com/zatekoja/erhospitalmatch/pkg/errors"
)

const (
	kakaoKeywordSearchURL = "https://dapi.kakao.com/v2/local/search/keyword.json"
	defaultHTTPTimeout    = 5 * time.Second
)

// KakaoProvider geocodes hospital names with the Kakao Local keyword search API
type KakaoProvider struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewKakaoProvider creates a Kakao keyword geocoder
func NewKakaoProvider(apiKey string, timeout time.Duration) *KakaoProvider {
	return NewKakaoProviderWithOptions(apiKey, kakaoKeywordSearchURL, &http.Client{Timeout: timeout})
}

// NewKakaoProviderWithOptions allows overriding base URL and HTTP client (used for tests).
func NewKakaoProviderWithOptions(apiKey, baseURL string, httpClient *http.Client) *KakaoProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = kakaoKeywordSearchURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &KakaoProvider{
		apiKey:     apiKey,
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// Geocode returns the coordinates of the best keyword match for query
func (k *KakaoProvider) Geocode(ctx context.Context, query string) (*providers.Coordinates, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, apperrors.NewValidationError("query is required")
	}
	if k.apiKey == "" {
		return nil, apperrors.NewConfigurationError("kakao rest api key is required", nil)
	}

	params := url.Values{}
	params.Set("query", trimmed)
	params.Set("size", "1")

	reqURL := fmt.Sprintf("%s?%s", k.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build kakao request", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+k.apiKey)

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalError("kakao keyword search failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewExternalError(fmt.Sprintf("kakao keyword search returned status %d", resp.StatusCode), nil)
	}

	var payload kakaoKeywordResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.NewExternalError("failed to decode kakao response", err)
	}

	if len(payload.Documents) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no kakao match for %q", trimmed))
	}

	doc := payload.Documents[0]
	lat, errLat := strconv.ParseFloat(doc.Y, 64)
	lon, errLon := strconv.ParseFloat(doc.X, 64)
	if errLat != nil || errLon != nil {
		return nil, apperrors.NewExternalError(fmt.Sprintf("kakao returned malformed coordinates x=%q y=%q", doc.X, doc.Y), nil)
	}

	return &providers.Coordinates{Latitude: lat, Longitude: lon}, nil
}

// Kakao encodes coordinates as strings: x is longitude, y is latitude.
type kakaoKeywordResponse struct {
	Documents []kakaoDocument `json:"documents"`
}

type kakaoDocument struct {
	PlaceName string `json:"place_name"`
	X         string `json:"x"`
	Y         string `json:"y"`
}

var _ providers.GeolocationProvider = (*KakaoProvider)(nil)
