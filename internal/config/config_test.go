package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadExploreConfigDefaults(t *testing.T) {
	c := LoadExploreConfig()
	assert.Equal(t, 400*time.Millisecond, c.Debounce)
	assert.Equal(t, 12, c.PageSize)
	assert.Equal(t, 6, c.PageSizeMobile)
	assert.Equal(t, "client", c.Strategy)
	assert.Equal(t, 4, c.UpcomingLimit)
	assert.Equal(t, 10000, c.MaxSessions)
}

func TestLoadExploreConfigOverrides(t *testing.T) {
	t.Setenv("EXPLORE_DEBOUNCE", "250ms")
	t.Setenv("EXPLORE_PAGE_SIZE", "0")
	t.Setenv("EXPLORE_STRATEGY", "server")
	t.Setenv("EXPLORE_MAX_SESSIONS", "50")

	c := LoadExploreConfig()
	assert.Equal(t, 250*time.Millisecond, c.Debounce)
	assert.Equal(t, 12, c.PageSize, "non-positive page size falls back")
	assert.Equal(t, "server", c.Strategy)
	assert.Equal(t, 50, c.MaxSessions)
}

func TestRateLimitNormalized(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	rl := LoadRateLimitConfig()
	assert.Equal(t, 1, rl.Capacity)
	assert.Equal(t, 10*time.Second, rl.TTL)
}

func TestEnvBoolVariants(t *testing.T) {
	t.Setenv("X_FLAG", "ON")
	assert.True(t, envBool("X_FLAG", false))
	t.Setenv("X_FLAG", "no")
	assert.False(t, envBool("X_FLAG", true))
	t.Setenv("X_FLAG", "maybe")
	assert.True(t, envBool("X_FLAG", true))
}

func TestUpstreamAPIBase(t *testing.T) {
	t.Setenv("MABARIN_API_URL", "https://api.mabarin.test/")
	u, err := LoadUpstream()
	require.NoError(t, err)
	assert.Equal(t, "https://api.mabarin.test/api/v1", u.APIBase())
	assert.Equal(t, 10*time.Second, u.Timeout)
}

func TestUpstreamRequiresURL(t *testing.T) {
	t.Setenv("MABARIN_API_URL", "")
	_, err := LoadUpstream()
	assert.Error(t, err)
}

func TestDeriveKeysIndependent(t *testing.T) {
	k, err := DeriveKeys("s3cret")
	require.NoError(t, err)
	assert.Len(t, k.Session, 32)
	assert.Len(t, k.Flash, 32)
	assert.NotEqual(t, k.Session, k.Flash)

	again, err := DeriveKeys("s3cret")
	require.NoError(t, err)
	assert.Equal(t, k, again)

	_, err = DeriveKeys("")
	assert.Error(t, err)
}

func TestAuditEnabled(t *testing.T) {
	assert.False(t, LoadAuditConfig().Enabled())
	t.Setenv("AUDIT_DB_HOST", "db")
	assert.True(t, LoadAuditConfig().Enabled())
}

func TestLoadTracingConfig(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")

	c := LoadTracingConfig("prod")
	assert.True(t, c.Enabled)
	assert.Equal(t, "collector:4317", c.Endpoint)
	assert.Equal(t, "mabarin-web", c.ServiceName)
	assert.Equal(t, "prod", c.Env)
}
