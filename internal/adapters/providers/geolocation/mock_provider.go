package geolocation

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/zatekoja/erhospitalmatch/internal/domain/providers"
	apperrors "github.com/zatekoja/erhospitalmatch/pkg/errors"
)

// MockProvider resolves a fixed set of Seoul hospitals, for development and tests
type MockProvider struct {
	mu          sync.Mutex
	coordinates map[string]providers.Coordinates
	calls       map[string]int
}

// NewMockProvider creates a mock geocoder seeded with well-known Seoul emergency centers
func NewMockProvider() *MockProvider {
	return &MockProvider{
		coordinates: map[string]providers.Coordinates{
			"삼성서울병원":          {Latitude: 37.4881, Longitude: 127.0855},
			"강남세브란스병원":        {Latitude: 37.4929, Longitude: 127.0463},
			"서울아산병원":          {Latitude: 37.5265, Longitude: 127.1080},
			"서울대학교병원":         {Latitude: 37.5796, Longitude: 126.9990},
			"세브란스병원":          {Latitude: 37.5622, Longitude: 126.9410},
			"가톨릭대학교서울성모병원":    {Latitude: 37.5018, Longitude: 127.0050},
			"고려대학교의과대학부속구로병원": {Latitude: 37.4925, Longitude: 126.8848},
			"강북삼성병원":          {Latitude: 37.5683, Longitude: 126.9680},
		},
		calls: make(map[string]int),
	}
}

// Add registers or replaces a fixture
func (m *MockProvider) Add(name string, coords providers.Coordinates) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coordinates[name] = coords
}

// Calls reports how many times name was geocoded
func (m *MockProvider) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

// Geocode returns the fixture for query or NOT_FOUND
func (m *MockProvider) Geocode(ctx context.Context, query string) (*providers.Coordinates, error) {
	name := strings.TrimSpace(query)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[name]++

	coords, ok := m.coordinates[name]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("mock geocoder has no entry for %q", name))
	}
	return &coords, nil
}

var _ providers.GeolocationProvider = (*MockProvider)(nil)
