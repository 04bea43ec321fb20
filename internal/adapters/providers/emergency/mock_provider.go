package emergency

import (
	"context"
	"fmt"
	"sync"

	"github.com/zatekoja/erhospitalmatch/internal/domain/entities"
	"github.com/zatekoja/erhospitalmatch/internal/domain/providers"
	apperrors "github.com/zatekoja/erhospitalmatch/pkg/errors"
)

// MockProvider serves in-memory live capacity and registry fixtures
type MockProvider struct {
	mu       sync.RWMutex
	live     map[string][]entities.HospitalRecord
	static   map[string]entities.StaticHospitalProfile
	failures map[string]error
}

// NewMockProvider creates an empty fixture provider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		live:     make(map[string][]entities.HospitalRecord),
		static:   make(map[string]entities.StaticHospitalProfile),
		failures: make(map[string]error),
	}
}

// NewSeoulFixtureProvider returns a provider with a handful of Seoul emergency centers
func NewSeoulFixtureProvider() *MockProvider {
	m := NewMockProvider()
	city := "서울특별시"

	m.SetLive(city, "강남구", []entities.HospitalRecord{
		{HPID: "A1100010", Name: "삼성서울병원", Phone: "02-3410-2060", ERBeds: 12, ICUBeds: 4, CardiacICUBeds: 2, NeuroICUBeds: 1, TraumaICUBeds: 1, VentilatorAvailable: true, CTAvailable: true, MRIAvailable: true, PediatricAvailable: true},
		{HPID: "A1100011", Name: "강남세브란스병원", Phone: "02-2019-3333", ERBeds: 5, ICUBeds: 0, VentilatorAvailable: true, CTAvailable: true},
	})
	m.SetLive(city, "송파구", []entities.HospitalRecord{
		{HPID: "A1100012", Name: "서울아산병원", Phone: "02-3010-3333", ERBeds: 20, ICUBeds: 6, CardiacICUBeds: 3, NeuroICUBeds: 2, TraumaICUBeds: 2, BurnBeds: 1, VentilatorAvailable: true, CTAvailable: true, MRIAvailable: true},
	})
	m.SetLive(city, "서초구", []entities.HospitalRecord{
		{HPID: "A1100013", Name: "가톨릭대학교서울성모병원", Phone: "02-2258-2370", ERBeds: 8, ICUBeds: 2, TraumaICUBeds: 1, VentilatorAvailable: true, CTAvailable: true},
	})
	m.SetLive(city, "종로구", []entities.HospitalRecord{
		{HPID: "A1100014", Name: "서울대학교병원", Phone: "02-2072-2473", ERBeds: 10, ICUBeds: 3, NeuroICUBeds: 1, VentilatorAvailable: true, CTAvailable: true, MRIAvailable: true, PediatricAvailable: true},
		{HPID: "A1100015", Name: "강북삼성병원", Phone: "02-2001-1000", ERBeds: 0, ICUBeds: 1},
	})

	m.SetStatic(entities.StaticHospitalProfile{HPID: "A1100010", Name: "삼성서울병원", Address: "서울특별시 강남구 일원로 81", Phone: "02-3410-2114", TotalERBeds: 60, TotalICUBeds: 120, TotalBeds: 1979})
	m.SetStatic(entities.StaticHospitalProfile{HPID: "A1100011", Name: "강남세브란스병원", Address: "서울특별시 강남구 언주로 211", Phone: "02-2019-3114", TotalERBeds: 30, TotalICUBeds: 45, TotalBeds: 817})
	m.SetStatic(entities.StaticHospitalProfile{HPID: "A1100012", Name: "서울아산병원", Address: "서울특별시 송파구 올림픽로43길 88", Phone: "02-3010-3114", TotalERBeds: 70, TotalICUBeds: 160, TotalBeds: 2715})
	m.SetStatic(entities.StaticHospitalProfile{HPID: "A1100014", Name: "서울대학교병원", Address: "서울특별시 종로구 대학로 101", Phone: "02-2072-2114", TotalERBeds: 50, TotalICUBeds: 110, TotalBeds: 1803})

	return m
}

// SetLive replaces the live records of a district
func (m *MockProvider) SetLive(city, district string, records []entities.HospitalRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.live[liveKey(city, district)] = records
}

// SetStatic registers a registry profile
func (m *MockProvider) SetStatic(profile entities.StaticHospitalProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.static[profile.HPID] = profile
}

// FailDistrict makes FetchLive for a district return err
func (m *MockProvider) FailDistrict(city, district string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[liveKey(city, district)] = err
}

// FetchLive returns a copy of the district fixtures
func (m *MockProvider) FetchLive(ctx context.Context, city, district string) ([]entities.HospitalRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := liveKey(city, district)
	if err := m.failures[key]; err != nil {
		return nil, err
	}
	records := m.live[key]
	out := make([]entities.HospitalRecord, len(records))
	copy(out, records)
	return out, nil
}

// LookupStatic returns the registry fixture or NOT_FOUND
func (m *MockProvider) LookupStatic(ctx context.Context, hpid string) (*entities.StaticHospitalProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	profile, ok := m.static[hpid]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("hospital %s is not in the registry", hpid))
	}
	return &profile, nil
}

func liveKey(city, district string) string {
	return city + "/" + district
}

var (
	_ providers.EmergencyDataProvider    = (*MockProvider)(nil)
	_ providers.HospitalRegistryProvider = (*MockProvider)(nil)
)
