package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Env          string
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Store        StoreConfig
	Geolocation  GeolocationConfig
	EmergencyAPI EmergencyAPIConfig
	Classifier   ClassifierConfig
	Search       SearchConfig
	Regions      RegionsConfig
	OTEL         OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	RateLimitRPS   float64
	RateLimitBurst int
	AllowedOrigins []string
	TrustedProxies []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// StoreConfig selects where the coordinate cache and static profile table live.
type StoreConfig struct {
	// Backend is the persistent key-value layer: leveldb, redis or memory.
	Backend         string
	LevelDBPath     string
	MemoryCacheSize int
	// StaticBackend is kv (same key-value layer) or postgres.
	StaticBackend string
}

// GeolocationConfig holds geolocation provider configuration
type GeolocationConfig struct {
	// Provider is kakao, overpass, kakao+overpass or mock.
	Provider         string
	APIKey           string
	OverpassEndpoint string
	TimeoutSeconds   int
}

// EmergencyAPIConfig holds the public emergency medical data API settings
type EmergencyAPIConfig struct {
	// Provider is http or mock.
	Provider       string
	BaseURL        string
	ServiceKey     string
	TimeoutSeconds int
	RateLimitRPS   float64
	PageSize       int
}

// ClassifierConfig holds the acceptance classifier endpoint
type ClassifierConfig struct {
	// Provider is http or mock.
	Provider       string
	URL            string
	TimeoutSeconds int
}

// SearchConfig holds ranking and fan-out defaults
type SearchConfig struct {
	Threshold         float64
	TopK              int
	MaxFilterLevel    int
	MaxExpansionLevel int
	Concurrency       int
	TargetTimeout     time.Duration
}

// RegionsConfig points at the city/district registry
type RegionsConfig struct {
	Path string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Env: getEnv("ENV", "production"),
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			RateLimitRPS:   getEnvAsFloat("SERVER_RATE_LIMIT_RPS", 20),
			RateLimitBurst: getEnvAsInt("SERVER_RATE_LIMIT_BURST", 40),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
			TrustedProxies: getEnvAsList("TRUSTED_PROXIES", nil),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "er_hospital_match"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Store: StoreConfig{
			Backend:         getEnv("STORE_BACKEND", "leveldb"),
			LevelDBPath:     getEnv("STORE_LEVELDB_PATH", "data/hospital-cache"),
			MemoryCacheSize: getEnvAsInt("STORE_MEMORY_CACHE_SIZE", 4096),
			StaticBackend:   getEnv("STORE_STATIC_BACKEND", "kv"),
		},
		Geolocation: GeolocationConfig{
			Provider:         getEnv("GEOLOCATION_PROVIDER", "mock"),
			APIKey:           getEnv("GEOLOCATION_API_KEY", ""),
			OverpassEndpoint: getEnv("GEOLOCATION_OVERPASS_ENDPOINT", "https://overpass-api.de/api/interpreter"),
			TimeoutSeconds:   getEnvAsInt("GEOLOCATION_TIMEOUT_SECONDS", 5),
		},
		EmergencyAPI: EmergencyAPIConfig{
			Provider:       getEnv("EMERGENCY_API_PROVIDER", "mock"),
			BaseURL:        getEnv("EMERGENCY_API_URL", "http://apis.data.go.kr/B552657/ErmctInfoInqireService"),
			ServiceKey:     getEnv("EMERGENCY_API_SERVICE_KEY", ""),
			TimeoutSeconds: getEnvAsInt("EMERGENCY_API_TIMEOUT_SECONDS", 10),
			RateLimitRPS:   getEnvAsFloat("EMERGENCY_API_RATE_LIMIT_RPS", 10),
			PageSize:       getEnvAsInt("EMERGENCY_API_PAGE_SIZE", 100),
		},
		Classifier: ClassifierConfig{
			Provider:       getEnv("CLASSIFIER_PROVIDER", "mock"),
			URL:            getEnv("CLASSIFIER_URL", "http://localhost:8500"),
			TimeoutSeconds: getEnvAsInt("CLASSIFIER_TIMEOUT_SECONDS", 5),
		},
		Search: SearchConfig{
			Threshold:         getEnvAsFloat("SEARCH_THRESHOLD", 0.3),
			TopK:              getEnvAsInt("SEARCH_TOP_K", 5),
			MaxFilterLevel:    getEnvAsInt("SEARCH_MAX_FILTER_LEVEL", 1),
			MaxExpansionLevel: getEnvAsInt("SEARCH_MAX_EXPANSION_LEVEL", 1),
			Concurrency:       getEnvAsInt("SEARCH_CONCURRENCY", 4),
			TargetTimeout:     time.Duration(getEnvAsInt("SEARCH_TARGET_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Regions: RegionsConfig{
			Path: getEnv("REGIONS_PATH", ""),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "er-hospital-match"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the search pipeline cannot run with
func (c *Config) Validate() error {
	s := c.Search
	if s.Threshold < 0 || s.Threshold > 1 {
		return fmt.Errorf("SEARCH_THRESHOLD must be within [0,1], got %v", s.Threshold)
	}
	if s.TopK < 1 {
		return fmt.Errorf("SEARCH_TOP_K must be at least 1, got %d", s.TopK)
	}
	if s.MaxFilterLevel < 0 || s.MaxFilterLevel > 3 {
		return fmt.Errorf("SEARCH_MAX_FILTER_LEVEL must be within [0,3], got %d", s.MaxFilterLevel)
	}
	if s.MaxExpansionLevel < 0 || s.MaxExpansionLevel > 1 {
		return fmt.Errorf("SEARCH_MAX_EXPANSION_LEVEL must be 0 or 1, got %d", s.MaxExpansionLevel)
	}
	if s.Concurrency < 1 {
		return fmt.Errorf("SEARCH_CONCURRENCY must be at least 1, got %d", s.Concurrency)
	}
	switch c.Store.Backend {
	case "leveldb", "redis", "memory":
	default:
		return fmt.Errorf("STORE_BACKEND must be leveldb, redis or memory, got %q", c.Store.Backend)
	}
	switch c.Classifier.Provider {
	case "http", "mock":
	default:
		return fmt.Errorf("CLASSIFIER_PROVIDER must be http or mock, got %q", c.Classifier.Provider)
	}
	switch c.Store.StaticBackend {
	case "kv", "postgres":
	default:
		return fmt.Errorf("STORE_STATIC_BACKEND must be kv or postgres, got %q", c.Store.StaticBackend)
	}
	return nil
}

// IsDevelopment reports whether console logging should be used
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
