package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_SearchConfig(t *testing.T) {
	t.Setenv("SEARCH_THRESHOLD", "0.01")
	t.Setenv("SEARCH_TOP_K", "3")
	t.Setenv("SEARCH_MAX_FILTER_LEVEL", "2")
	t.Setenv("SEARCH_TARGET_TIMEOUT_SECONDS", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.01, cfg.Search.Threshold)
	assert.Equal(t, 3, cfg.Search.TopK)
	assert.Equal(t, 2, cfg.Search.MaxFilterLevel)
	assert.Equal(t, 4*time.Second, cfg.Search.TargetTimeout)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.3, cfg.Search.Threshold)
	assert.Equal(t, 5, cfg.Search.TopK)
	assert.Equal(t, 1, cfg.Search.MaxFilterLevel)
	assert.Equal(t, 1, cfg.Search.MaxExpansionLevel)
	assert.Equal(t, "leveldb", cfg.Store.Backend)
	assert.Equal(t, "kv", cfg.Store.StaticBackend)
	assert.Equal(t, "mock", cfg.Geolocation.Provider)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("SEARCH_TOP_K", "five")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Search.TopK)
}

func TestValidate_RejectsOutOfRangeSearch(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{"threshold above one", map[string]string{"SEARCH_THRESHOLD": "1.5"}},
		{"zero top k", map[string]string{"SEARCH_TOP_K": "0"}},
		{"filter level four", map[string]string{"SEARCH_MAX_FILTER_LEVEL": "4"}},
		{"unknown store", map[string]string{"STORE_BACKEND": "csv"}},
		{"unknown static store", map[string]string{"STORE_STATIC_BACKEND": "mysql"}},
		{"unknown classifier", map[string]string{"CLASSIFIER_PROVIDER": "onnx"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_AllowedOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://er.example.kr, https://ops.example.kr,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://er.example.kr", "https://ops.example.kr"}, cfg.Server.AllowedOrigins)
	assert.Empty(t, cfg.Server.TrustedProxies)
}

func TestLoad_TrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,172.16.0.1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "172.16.0.1"}, cfg.Server.TrustedProxies)
}
