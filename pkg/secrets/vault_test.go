package secrets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/zatekoja/erhospitalmatch/pkg/errors"
)

func vaultServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "s.test", r.Header.Get("X-Vault-Token"))
		assert.Equal(t, "/v1/secret/data/er-hospital", r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(addr string) VaultConfig {
	return VaultConfig{
		Enabled:   true,
		Addr:      addr,
		Token:     "s.test",
		Mount:     "secret",
		Path:      "er-hospital",
		KVVersion: 2,
	}
}

func TestApplyVaultSecrets_ExportsManagedKeys(t *testing.T) {
	t.Setenv("EMERGENCY_API_SERVICE_KEY", "")
	t.Setenv("GEOLOCATION_API_KEY", "from-env")
	t.Setenv("UNMANAGED_KEY", "")

	srv := vaultServer(t, http.StatusOK, `{"data":{"data":{
		"EMERGENCY_API_SERVICE_KEY":"svc-key",
		"GEOLOCATION_API_KEY":"vault-kakao",
		"UNMANAGED_KEY":"nope"
	}}}`)

	result, err := ApplyVaultSecrets(context.Background(), testConfig(srv.URL))
	require.NoError(t, err)

	assert.Equal(t, []string{"EMERGENCY_API_SERVICE_KEY"}, result.Loaded)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Ignored)
	assert.Equal(t, "svc-key", os.Getenv("EMERGENCY_API_SERVICE_KEY"))
	assert.Equal(t, "from-env", os.Getenv("GEOLOCATION_API_KEY"))
	assert.Empty(t, os.Getenv("UNMANAGED_KEY"))
}

func TestApplyVaultSecrets_Overwrite(t *testing.T) {
	t.Setenv("DB_PASSWORD", "old")
	srv := vaultServer(t, http.StatusOK, `{"data":{"data":{"DB_PASSWORD":"new"}}}`)

	cfg := testConfig(srv.URL)
	cfg.Overwrite = true
	_, err := ApplyVaultSecrets(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "new", os.Getenv("DB_PASSWORD"))
}

func TestApplyVaultSecrets_Disabled(t *testing.T) {
	result, err := ApplyVaultSecrets(context.Background(), VaultConfig{})
	require.NoError(t, err)
	assert.False(t, result.Enabled)
}

func TestApplyVaultSecrets_Incomplete(t *testing.T) {
	_, err := ApplyVaultSecrets(context.Background(), VaultConfig{Enabled: true, Addr: "http://vault"})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfiguration))
}

func TestApplyVaultSecrets_UpstreamError(t *testing.T) {
	srv := vaultServer(t, http.StatusForbidden, `{"errors":["permission denied"]}`)

	_, err := ApplyVaultSecrets(context.Background(), testConfig(srv.URL))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
}

func TestBuildVaultURL(t *testing.T) {
	url, err := buildVaultURL("http://vault:8200/", "/secret/", "/er-hospital", 1)
	require.NoError(t, err)
	assert.Equal(t, "http://vault:8200/v1/secret/er-hospital", url)

	url, err = buildVaultURL("http://vault:8200", "secret", "er-hospital", 2)
	require.NoError(t, err)
	assert.Equal(t, "http://vault:8200/v1/secret/data/er-hospital", url)

	_, err = buildVaultURL("", "secret", "x", 2)
	assert.Error(t, err)
}

func TestLoadVaultConfigFromEnv(t *testing.T) {
	t.Setenv("VAULT_ENABLED", "TRUE")
	t.Setenv("VAULT_MOUNT", "")
	t.Setenv("VAULT_KV_VERSION", "1")
	t.Setenv("VAULT_TIMEOUT_MS", "250")

	cfg := LoadVaultConfigFromEnv()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "secret", cfg.Mount)
	assert.Equal(t, 1, cfg.KVVersion)
	assert.Equal(t, int64(250), cfg.Timeout.Milliseconds())
}

func TestStringifyVaultValue(t *testing.T) {
	assert.Equal(t, "true", stringifyVaultValue(true))
	assert.Equal(t, "5432", stringifyVaultValue(float64(5432)))
	assert.Equal(t, "", stringifyVaultValue(nil))
	assert.Equal(t, `["a"]`, stringifyVaultValue([]interface{}{"a"}))
}
