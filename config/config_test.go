package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/chembridge/mychem-mcp/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://mychem.info/v1", cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.Retries)
	assert.Equal(t, 10, cfg.RateLimit)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MYCHEM_BASE_URL", "http://localhost:8000/v1")
	t.Setenv("MYCHEM_TIMEOUT", "5s")
	t.Setenv("MYCHEM_RETRIES", "0")
	t.Setenv("MYCHEM_CACHE_ENABLED", "false")
	t.Setenv("MYCHEM_LOG_LEVEL", "DEBUG")

	cfg, err := config.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/v1", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 0, cfg.Retries)
	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("MYCHEM_TIMEOUT", "-1s")
	_, err := config.Load(context.Background())
	require.Error(t, err)
}
