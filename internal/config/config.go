package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	// Server bind address (host:port)
	ServerAddr string

	// Enable debug logging
	Debug bool

	// Session lifecycle tuning
	Session SessionConfig

	// Profile aggregation tuning
	Profile ProfileConfig

	// Role resolution tuning
	Roles RolesConfig

	// Access validation tuning
	Access AccessConfig

	// Customer-data platform endpoints
	Upstream UpstreamConfig

	// OpenTelemetry configuration
	Observability ObservabilityConfig
}

// SessionConfig tunes session lifetimes and cleanup.
type SessionConfig struct {
	// Timeout is the session lifetime, fixed at creation.
	Timeout time.Duration

	// CleanupInterval is how often the background sweep runs.
	CleanupInterval time.Duration

	// InvalidationGrace is how long an invalidated record stays
	// visible as terminal before physical removal.
	InvalidationGrace time.Duration
}

// ProfileConfig tunes profile aggregation and its cache.
type ProfileConfig struct {
	CacheSize    int
	CacheTTL     time.Duration
	FetchTimeout time.Duration
}

// RolesConfig tunes the custom-role cache.
type RolesConfig struct {
	CacheSize int
	CacheTTL  time.Duration
}

// AccessConfig holds the access-validation escape hatch.
type AccessConfig struct {
	// BypassRoles grant access regardless of contract ownership.
	BypassRoles []string
}

// UpstreamConfig points at the customer-data platform.
type UpstreamConfig struct {
	// BaseURL of the party/contract/role API.
	BaseURL string

	// Timeout for each individual upstream request.
	Timeout time.Duration
}

// ObservabilityConfig holds OpenTelemetry settings. An empty
// OTLPEndpoint disables telemetry entirely.
type ObservabilityConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	OTLPInsecure   bool
}

// Load reads configuration from environment variables with fallback defaults
func Load() (*Config, error) {
	cfg := &Config{
		ServerAddr: getEnv("SERVER_ADDR", "localhost:8080"),
		Debug:      getEnvBool("DEBUG", false),
		Session: SessionConfig{
			Timeout:           getEnvDuration("SESSION_TIMEOUT", 30*time.Minute),
			CleanupInterval:   getEnvDuration("SESSION_CLEANUP_INTERVAL", 10*time.Minute),
			InvalidationGrace: getEnvDuration("SESSION_INVALIDATION_GRACE", 5*time.Minute),
		},
		Profile: ProfileConfig{
			CacheSize:    getEnvInt("PROFILE_CACHE_SIZE", 1024),
			CacheTTL:     getEnvDuration("PROFILE_CACHE_TTL", time.Minute),
			FetchTimeout: getEnvDuration("PROFILE_FETCH_TIMEOUT", 10*time.Second),
		},
		Roles: RolesConfig{
			CacheSize: getEnvInt("ROLE_CACHE_SIZE", 256),
			CacheTTL:  getEnvDuration("ROLE_CACHE_TTL", 15*time.Minute),
		},
		Access: AccessConfig{
			BypassRoles: getEnvList("ACCESS_BYPASS_ROLES",
				[]string{"ADMIN", "CUSTOMER_SUPPORT", "SUPERVISOR", "MANAGER", "BRANCH_STAFF"}),
		},
		Upstream: UpstreamConfig{
			BaseURL: getEnv("UPSTREAM_BASE_URL", "http://localhost:9090"),
			Timeout: getEnvDuration("UPSTREAM_TIMEOUT", 5*time.Second),
		},
		Observability: ObservabilityConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "sessiond"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("OTEL_ENVIRONMENT", "development"),
			OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			OTLPInsecure:   getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		},
	}

	// Validate required fields
	if cfg.Upstream.BaseURL == "" {
		return nil, fmt.Errorf("UPSTREAM_BASE_URL is required")
	}

	if cfg.Session.Timeout <= 0 {
		return nil, fmt.Errorf("SESSION_TIMEOUT must be positive")
	}

	if cfg.Session.CleanupInterval <= 0 {
		return nil, fmt.Errorf("SESSION_CLEANUP_INTERVAL must be positive")
	}

	if cfg.Session.InvalidationGrace < 0 {
		return nil, fmt.Errorf("SESSION_INVALIDATION_GRACE must not be negative")
	}

	if len(cfg.Access.BypassRoles) == 0 {
		return nil, fmt.Errorf("ACCESS_BYPASS_ROLES must not be empty")
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable (Go duration
// syntax, e.g. "30m") or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList retrieves a comma-separated environment variable or returns
// a default value
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
