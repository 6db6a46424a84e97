// Package cache provides response caching for upstream API calls,
// either in-process or shared via Redis.
package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Cache stores raw response bodies keyed by request fingerprint.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
}

// Key fingerprints a request description into a short cache key.
func Key(s string) string {
	return strconv.FormatUint(xxhash.Sum64String(s), 16)
}
