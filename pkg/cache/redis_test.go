package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mtenant/pkg/cache"
)

func newRedisCache(t *testing.T) (*cache.Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.NewRedis(client), mr
}

func TestRedis(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("stores value with ttl", func(t *testing.T) {
		t.Parallel()

		c, mr := newRedisCache(t)

		require.NoError(t, c.Set(ctx, "k", "v", time.Minute))

		v, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v", v)
		assert.Equal(t, time.Minute, mr.TTL("k"))
	})

	t.Run("expires after ttl", func(t *testing.T) {
		t.Parallel()

		c, mr := newRedisCache(t)

		require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
		mr.FastForward(2 * time.Minute)

		ok, err := c.Has(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("zero ttl stores without expiration", func(t *testing.T) {
		t.Parallel()

		c, mr := newRedisCache(t)

		require.NoError(t, c.Set(ctx, "k", "v", 0))
		assert.Equal(t, time.Duration(0), mr.TTL("k"))
	})

	t.Run("get on missing key returns ErrMiss", func(t *testing.T) {
		t.Parallel()

		c, _ := newRedisCache(t)

		_, err := c.Get(ctx, "missing")
		assert.ErrorIs(t, err, cache.ErrMiss)
	})

	t.Run("remove reports absent key", func(t *testing.T) {
		t.Parallel()

		c, _ := newRedisCache(t)

		require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
		require.NoError(t, c.Remove(ctx, "k"))
		assert.ErrorIs(t, c.Remove(ctx, "k"), cache.ErrNotRemoved)
	})

	t.Run("surfaces backend failures", func(t *testing.T) {
		t.Parallel()

		c, mr := newRedisCache(t)
		mr.Close()

		assert.ErrorIs(t, c.Set(ctx, "k", "v", time.Minute), cache.ErrNotStored)
		_, err := c.Has(ctx, "k")
		assert.Error(t, err)
	})
}
