// Package secrets pulls upstream credentials from Vault into the process
// environment before configuration is loaded.
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	apperrors "github.com/zatekoja/erhospitalmatch/pkg/errors"
)

// ManagedKeys are the environment variables Vault may populate. Anything else
// stored at the secret path is ignored.
var ManagedKeys = []string{
	"EMERGENCY_API_SERVICE_KEY",
	"GEOLOCATION_API_KEY",
	"DB_PASSWORD",
	"REDIS_PASSWORD",
	"CLASSIFIER_URL",
}

var errIncompleteConfig = errors.New("VAULT_ADDR, VAULT_TOKEN and VAULT_PATH are required")

type VaultConfig struct {
	Enabled   bool
	Addr      string
	Token     string
	Namespace string
	Mount     string
	Path      string
	KVVersion int
	Timeout   time.Duration
	Overwrite bool
}

// VaultResult reports what a load did. Ignored counts keys outside ManagedKeys.
type VaultResult struct {
	Enabled bool
	Path    string
	Loaded  []string
	Skipped int
	Ignored int
}

func LoadVaultConfigFromEnv() VaultConfig {
	cfg := VaultConfig{
		Enabled:   strings.EqualFold(os.Getenv("VAULT_ENABLED"), "true"),
		Addr:      os.Getenv("VAULT_ADDR"),
		Token:     os.Getenv("VAULT_TOKEN"),
		Namespace: os.Getenv("VAULT_NAMESPACE"),
		Mount:     "secret",
		Path:      os.Getenv("VAULT_PATH"),
		KVVersion: 2,
		Timeout:   5 * time.Second,
		Overwrite: strings.EqualFold(os.Getenv("VAULT_OVERWRITE"), "true"),
	}
	if mount := os.Getenv("VAULT_MOUNT"); mount != "" {
		cfg.Mount = mount
	}
	if val, err := strconv.Atoi(os.Getenv("VAULT_KV_VERSION")); err == nil {
		cfg.KVVersion = val
	}
	if val, err := strconv.Atoi(os.Getenv("VAULT_TIMEOUT_MS")); err == nil && val > 0 {
		cfg.Timeout = time.Duration(val) * time.Millisecond
	}
	return cfg
}

// ApplyVaultSecrets fetches the secret at cfg.Path and exports the managed
// keys it contains. Existing variables win unless cfg.Overwrite is set.
func ApplyVaultSecrets(ctx context.Context, cfg VaultConfig) (VaultResult, error) {
	result := VaultResult{Enabled: cfg.Enabled, Path: cfg.Path}
	if !cfg.Enabled {
		return result, nil
	}
	if cfg.Addr == "" || cfg.Token == "" || cfg.Path == "" {
		return result, apperrors.NewConfigurationError("vault configuration incomplete", errIncompleteConfig)
	}

	data, err := fetchSecret(ctx, cfg)
	if err != nil {
		return result, err
	}

	managed := make(map[string]struct{}, len(ManagedKeys))
	for _, key := range ManagedKeys {
		managed[key] = struct{}{}
	}

	for key, value := range data {
		if _, ok := managed[key]; !ok {
			result.Ignored++
			continue
		}
		if !cfg.Overwrite && os.Getenv(key) != "" {
			result.Skipped++
			continue
		}
		if err := os.Setenv(key, stringifyVaultValue(value)); err != nil {
			return result, apperrors.NewInternalError("failed to export secret "+key, err)
		}
		result.Loaded = append(result.Loaded, key)
	}

	// values never reach the log, only key names
	log.Info().
		Str("path", cfg.Path).
		Strs("loaded", result.Loaded).
		Int("skipped", result.Skipped).
		Int("ignored", result.Ignored).
		Msg("Vault secrets applied")

	return result, nil
}

func fetchSecret(ctx context.Context, cfg VaultConfig) (map[string]interface{}, error) {
	url, err := buildVaultURL(cfg.Addr, cfg.Mount, cfg.Path, cfg.KVVersion)
	if err != nil {
		return nil, apperrors.NewConfigurationError("invalid vault location", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build vault request", err)
	}
	req.Header.Set("X-Vault-Token", cfg.Token)
	if cfg.Namespace != "" {
		req.Header.Set("X-Vault-Namespace", cfg.Namespace)
	}

	client := &http.Client{Timeout: cfg.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalError("vault request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperrors.NewExternalError("failed to read vault response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewExternalError(
			fmt.Sprintf("vault returned %s", resp.Status),
			errors.New(strings.TrimSpace(string(body))),
		)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, apperrors.NewExternalError("invalid vault response", err)
	}
	data, err := extractVaultData(payload, cfg.KVVersion)
	if err != nil {
		return nil, apperrors.NewExternalError("invalid vault response", err)
	}
	return data, nil
}

func buildVaultURL(addr, mount, path string, kvVersion int) (string, error) {
	addr = strings.TrimRight(addr, "/")
	mount = strings.Trim(mount, "/")
	path = strings.TrimLeft(path, "/")
	if addr == "" || mount == "" || path == "" {
		return "", errors.New("vault address, mount and path must be set")
	}
	if kvVersion == 1 {
		return fmt.Sprintf("%s/v1/%s/%s", addr, mount, path), nil
	}
	return fmt.Sprintf("%s/v1/%s/data/%s", addr, mount, path), nil
}

func extractVaultData(payload map[string]interface{}, kvVersion int) (map[string]interface{}, error) {
	data, ok := payload["data"].(map[string]interface{})
	if !ok {
		return nil, errors.New("missing data")
	}
	if kvVersion == 1 {
		return data, nil
	}
	inner, ok := data["data"].(map[string]interface{})
	if !ok {
		return nil, errors.New("missing data.data for KV v2")
	}
	return inner, nil
}

func stringifyVaultValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}
