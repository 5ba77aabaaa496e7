package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults tests the fallback configuration
func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.ServerAddr)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 30*time.Minute, cfg.Session.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.Session.CleanupInterval)
	assert.Equal(t, 5*time.Minute, cfg.Session.InvalidationGrace)
	assert.Equal(t, time.Minute, cfg.Profile.CacheTTL)
	assert.Equal(t, 15*time.Minute, cfg.Roles.CacheTTL)
	assert.Equal(t, []string{"ADMIN", "CUSTOMER_SUPPORT", "SUPERVISOR", "MANAGER", "BRANCH_STAFF"}, cfg.Access.BypassRoles)
	assert.Equal(t, "http://localhost:9090", cfg.Upstream.BaseURL)
	assert.Equal(t, "sessiond", cfg.Observability.ServiceName)
	assert.Empty(t, cfg.Observability.OTLPEndpoint)
}

// TestLoad_WithEnvironmentVariables tests env var overrides
func TestLoad_WithEnvironmentVariables(t *testing.T) {
	t.Setenv("SERVER_ADDR", "0.0.0.0:9999")
	t.Setenv("DEBUG", "true")
	t.Setenv("SESSION_TIMEOUT", "45m")
	t.Setenv("SESSION_CLEANUP_INTERVAL", "2m")
	t.Setenv("SESSION_INVALIDATION_GRACE", "30s")
	t.Setenv("ACCESS_BYPASS_ROLES", "ADMIN, OPERATOR")
	t.Setenv("UPSTREAM_BASE_URL", "http://platform.internal:8443")
	t.Setenv("PROFILE_CACHE_SIZE", "64")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9999", cfg.ServerAddr)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 45*time.Minute, cfg.Session.Timeout)
	assert.Equal(t, 2*time.Minute, cfg.Session.CleanupInterval)
	assert.Equal(t, 30*time.Second, cfg.Session.InvalidationGrace)
	assert.Equal(t, []string{"ADMIN", "OPERATOR"}, cfg.Access.BypassRoles)
	assert.Equal(t, "http://platform.internal:8443", cfg.Upstream.BaseURL)
	assert.Equal(t, 64, cfg.Profile.CacheSize)
}

// TestLoad_InvalidValuesFallBack tests that malformed values keep the
// defaults instead of failing
func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SESSION_TIMEOUT", "not-a-duration")
	t.Setenv("PROFILE_CACHE_SIZE", "many")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.Session.Timeout)
	assert.Equal(t, 1024, cfg.Profile.CacheSize)
}

// TestLoad_RejectsNonPositiveTimeout tests validation
func TestLoad_RejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("SESSION_TIMEOUT", "-5m")
	_, err := Load()
	require.Error(t, err)
}
