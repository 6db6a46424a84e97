// Package config loads server settings from MYCHEM_* environment
// variables.
package config

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sethvargo/go-envconfig"
)

// Config is the full server configuration.
type Config struct {
	// BaseURL is the upstream API root.
	BaseURL string `env:"MYCHEM_BASE_URL, default=https://mychem.info/v1"`
	// Timeout bounds each upstream request.
	Timeout time.Duration `env:"MYCHEM_TIMEOUT, default=30s"`
	// Retries is the number of retry attempts after a failed request.
	Retries int `env:"MYCHEM_RETRIES, default=3"`
	// RateLimit caps upstream requests per second. 0 disables the limiter.
	RateLimit int `env:"MYCHEM_RATE_LIMIT, default=10"`

	// CacheEnabled turns on response caching for GET requests.
	CacheEnabled bool `env:"MYCHEM_CACHE_ENABLED, default=true"`
	// CacheTTL bounds the lifetime of cached responses.
	CacheTTL time.Duration `env:"MYCHEM_CACHE_TTL, default=15m"`
	// RedisAddr selects a shared Redis cache. Empty means in-process memory.
	RedisAddr string `env:"MYCHEM_REDIS_ADDR"`

	// LogLevel sets the minimum level written to stderr.
	LogLevel string `env:"MYCHEM_LOG_LEVEL, default=INFO"`
}

// Load reads the configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, errors.WithMessage(err, "failed to load configuration")
	}
	if cfg.Timeout <= 0 {
		return nil, errors.Newf("invalid MYCHEM_TIMEOUT: %s", cfg.Timeout)
	}
	if cfg.Retries < 0 {
		return nil, errors.Newf("invalid MYCHEM_RETRIES: %d", cfg.Retries)
	}
	return &cfg, nil
}
