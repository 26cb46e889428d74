package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCache(client), mr
}

type testPayload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCacheGetSet(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	t.Run("round trips a struct", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "k1", testPayload{Name: "alice", Count: 3}, time.Minute))

		var got testPayload
		require.NoError(t, c.Get(ctx, "k1", &got))
		assert.Equal(t, "alice", got.Name)
		assert.Equal(t, 3, got.Count)
	})

	t.Run("missing key is a cache miss", func(t *testing.T) {
		var got testPayload
		err := c.Get(ctx, "missing", &got)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("expired key is a cache miss", func(t *testing.T) {
		c, mr := setupCache(t)
		require.NoError(t, c.Set(ctx, "short", testPayload{Name: "gone"}, time.Second))

		mr.FastForward(2 * time.Second)

		var got testPayload
		assert.ErrorIs(t, c.Get(ctx, "short", &got), ErrCacheMiss)
	})
}

func TestCacheDelete(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k1", testPayload{}, time.Minute))
	require.NoError(t, c.Set(ctx, "k2", testPayload{}, time.Minute))

	require.NoError(t, c.Delete(ctx, "k1", "k2"))

	exists, err := c.Exists(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, c.Delete(ctx), "deleting zero keys is a no-op")
}

func TestCacheDeletePattern(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "stats:overview:u1", testPayload{}, time.Minute))
	require.NoError(t, c.Set(ctx, "stats:threats:u1", testPayload{}, time.Minute))
	require.NoError(t, c.Set(ctx, "stats:overview:u2", testPayload{}, time.Minute))

	require.NoError(t, c.DeletePattern(ctx, "stats:*:u1"))

	exists, err := c.Exists(ctx, "stats:overview:u1")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = c.Exists(ctx, "stats:overview:u2")
	require.NoError(t, err)
	assert.True(t, exists, "other users' entries survive")
}

func TestCacheGetOrSet(t *testing.T) {
	ctx := context.Background()

	t.Run("miss invokes loader and caches", func(t *testing.T) {
		c, _ := setupCache(t)

		loads := 0
		loader := func() (interface{}, error) {
			loads++
			return testPayload{Name: "loaded", Count: loads}, nil
		}

		var first testPayload
		require.NoError(t, c.GetOrSet(ctx, "k", time.Minute, &first, loader))
		assert.Equal(t, "loaded", first.Name)

		var second testPayload
		require.NoError(t, c.GetOrSet(ctx, "k", time.Minute, &second, loader))
		assert.Equal(t, 1, loads, "second read must hit the cache")
		assert.Equal(t, first, second)
	})

	t.Run("loader failure caches nothing", func(t *testing.T) {
		c, _ := setupCache(t)

		var got testPayload
		err := c.GetOrSet(ctx, "k", time.Minute, &got, func() (interface{}, error) {
			return nil, assert.AnError
		})
		require.Error(t, err)

		exists, err := c.Exists(ctx, "k")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestCacheSetNX(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	ok, err := c.SetNX(ctx, "once", testPayload{Name: "first"}, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.SetNX(ctx, "once", testPayload{Name: "second"}, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "existing key must not be overwritten")

	var got testPayload
	require.NoError(t, c.Get(ctx, "once", &got))
	assert.Equal(t, "first", got.Name)
}

func TestCacheIncrement(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	val, err := c.Increment(ctx, "counter", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), val)

	val, err = c.Increment(ctx, "counter", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(6), val)
}
