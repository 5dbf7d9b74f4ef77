package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedisCache(t *testing.T) (*RedisMatchCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisMatchCache(client, 30*time.Minute, zap.NewNop()), mr
}

func TestRedisCache_RoundTrip(t *testing.T) {
	cache, _ := newTestRedisCache(t)
	ctx := context.Background()
	results := sampleResults(85)

	_, ok := cache.Get(ctx, "s1", []string{"a", "b"})
	assert.False(t, ok)

	cache.Set(ctx, "s1", []string{"a", "b"}, results)

	got, ok := cache.Get(ctx, "s1", []string{"b", "a"})
	require.True(t, ok)
	assert.Equal(t, results, got)
}

func TestRedisCache_TTLExpiry(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()

	cache.Set(ctx, "s1", []string{"a"}, sampleResults(70))

	mr.FastForward(29 * time.Minute)
	_, ok := cache.Get(ctx, "s1", []string{"a"})
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	_, ok = cache.Get(ctx, "s1", []string{"a"})
	assert.False(t, ok)
}

func TestRedisCache_CorruptEntryEvicted(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()

	key := redisCachePrefix + cacheKey("s1", []string{"a"})
	require.NoError(t, mr.Set(key, "not json"))

	_, ok := cache.Get(ctx, "s1", []string{"a"})
	assert.False(t, ok)
	assert.False(t, mr.Exists(key), "corrupt entry should be deleted")
}

func TestRedisCache_ClearRemovesOnlyOwnKeys(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()

	cache.Set(ctx, "s1", []string{"a"}, sampleResults(50))
	cache.Set(ctx, "s2", []string{"b"}, sampleResults(60))
	require.NoError(t, mr.Set("unrelated:key", "keep me"))

	cache.Clear(ctx)

	_, ok := cache.Get(ctx, "s1", []string{"a"})
	assert.False(t, ok)
	_, ok = cache.Get(ctx, "s2", []string{"b"})
	assert.False(t, ok)
	assert.True(t, mr.Exists("unrelated:key"))
}

func TestRedisCache_ReadFailureIsAMiss(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()

	cache.Set(ctx, "s1", []string{"a"}, sampleResults(40))
	mr.Close()

	_, ok := cache.Get(ctx, "s1", []string{"a"})
	assert.False(t, ok, "a down cache degrades to a miss, never an error")
}
