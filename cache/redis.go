package cache

import (
	"context"
	"path"
	"time"

	"github.com/effective-security/xlog"
	"github.com/redis/go-redis/v9"
)

var logger = xlog.NewPackageLogger("github.com/chembridge/mychem-mcp", "cache")

// The Redis cache allows several server instances to share upstream
// responses. Keys are namespaced under `/<prefix>/respcache/`.
// Redis failures degrade to cache misses, they never fail the request.
type redisCache struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a Redis-backed cache.
func NewRedis(client *redis.Client, prefix string) Cache {
	return &redisCache{
		client: client,
		prefix: prefix,
	}
}

func (c *redisCache) redisKey(key string) string {
	return path.Join(c.prefix, "respcache", key)
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, c.redisKey(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.ContextKV(ctx, xlog.WARNING, "reason", "redis_get", "err", err.Error())
		}
		return nil, false
	}
	return val, true
}

func (c *redisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, c.redisKey(key), val, ttl).Err(); err != nil {
		logger.ContextKV(ctx, xlog.WARNING, "reason", "redis_set", "err", err.Error())
	}
}
