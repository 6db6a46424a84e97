package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/chembridge/mychem-mcp/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Set(ctx, "k", []byte("v"), time.Minute)
	val, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), val)

	c.Set(ctx, "k", []byte("v2"), time.Minute)
	val, ok = c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), val)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()

	c.Set(ctx, "k", []byte("v"), time.Nanosecond)
	time.Sleep(10 * time.Millisecond)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	// Zero TTL means no expiry.
	c.Set(ctx, "forever", []byte("v"), 0)
	time.Sleep(time.Millisecond)
	_, ok = c.Get(ctx, "forever")
	assert.True(t, ok)
}

func TestKeyIsStable(t *testing.T) {
	assert.Equal(t, cache.Key("abc"), cache.Key("abc"))
	assert.NotEqual(t, cache.Key("abc"), cache.Key("abd"))
}
