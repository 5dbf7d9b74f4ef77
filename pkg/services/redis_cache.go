package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/scholarmatch/scholarmatch-engine/pkg/models"
)

const redisCachePrefix = "scholarmatch:reco:"

// RedisMatchCache is the Redis-backed MatchCache, used when Redis is
// configured so cached recommendations survive restarts and are shared
// across instances. Expiry is delegated to Redis key TTLs, which makes the
// capacity sweep of the in-memory variant unnecessary.
type RedisMatchCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisMatchCache creates a Redis-backed cache.
func NewRedisMatchCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisMatchCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisMatchCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("match-cache"),
	}
}

// Get returns the cached results for the key, if present and unexpired.
func (c *RedisMatchCache) Get(ctx context.Context, studentID string, scholarshipIDs []string) ([]models.MatchResult, bool) {
	key := redisCachePrefix + cacheKey(studentID, scholarshipIDs)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("cache read failed", zap.Error(err))
		return nil, false
	}

	var results []models.MatchResult
	if err := json.Unmarshal(raw, &results); err != nil {
		c.logger.Warn("cache entry corrupt, evicting", zap.Error(err))
		c.client.Del(ctx, key)
		return nil, false
	}
	return results, true
}

// Set overwrites the entry for the key with the configured TTL.
func (c *RedisMatchCache) Set(ctx context.Context, studentID string, scholarshipIDs []string, results []models.MatchResult) {
	key := redisCachePrefix + cacheKey(studentID, scholarshipIDs)

	raw, err := json.Marshal(results)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", zap.Error(err))
	}
}

// Clear drops every cached recommendation.
func (c *RedisMatchCache) Clear(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, redisCachePrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("cache scan failed", zap.Error(err))
		return
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			c.logger.Warn("cache clear failed", zap.Error(err))
		}
	}
}

var _ MatchCache = (*RedisMatchCache)(nil)
