package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/scholarmatch/scholarmatch-engine/pkg/models"
)

// Cache defaults: entries live half an hour and an expired-entry sweep runs
// once the store holds more than maxEntries. Eviction is TTL-driven, not LRU.
const (
	DefaultCacheTTL      = 30 * time.Minute
	DefaultCacheCapacity = 100
)

// MatchCache stores prior matching results so repeated recommendation
// requests inside the TTL window skip the external model. Ranking is never
// cached. Cached values are advisory; the persisted snapshot is the
// authoritative copy.
type MatchCache interface {
	Get(ctx context.Context, studentID string, scholarshipIDs []string) ([]models.MatchResult, bool)
	Set(ctx context.Context, studentID string, scholarshipIDs []string, results []models.MatchResult)

	// Clear drops everything. Called by collaborators when scholarship
	// data changes in ways that invalidate cached matches; the cache
	// itself never decides when.
	Clear(ctx context.Context)
}

type cacheEntry struct {
	results   []models.MatchResult
	createdAt time.Time
}

// RecommendationCache is the in-memory MatchCache. Concurrent lookups for
// different students never contend on data, and same-key races on Set are
// last-write-wins, so a single mutex over the map is enough.
type RecommendationCache struct {
	mu       sync.Mutex
	entries  map[string]cacheEntry
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

// NewRecommendationCache creates a cache with the given TTL and capacity.
// Non-positive arguments fall back to the defaults.
func NewRecommendationCache(ttl time.Duration, capacity int) *RecommendationCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &RecommendationCache{
		entries:  make(map[string]cacheEntry),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// cacheKey builds the composite key: scholarship ids sorted so lookup is
// order-independent, comma-joined, prefixed with the student id.
func cacheKey(studentID string, scholarshipIDs []string) string {
	ids := make([]string, len(scholarshipIDs))
	copy(ids, scholarshipIDs)
	sort.Strings(ids)
	return studentID + ":" + strings.Join(ids, ",")
}

// Get returns the cached results for the key if a live entry exists.
// Expired entries are evicted lazily here.
func (c *RecommendationCache) Get(_ context.Context, studentID string, scholarshipIDs []string) ([]models.MatchResult, bool) {
	key := cacheKey(studentID, scholarshipIDs)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.createdAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	// Callers reorder results in place, so hand out a copy. Sharing the
	// stored slice would let concurrent requests for the same key race on
	// the same backing array.
	return copyResults(entry.results), true
}

// Set overwrites the entry for the key with a fresh timestamp. When the
// store grows past capacity, every expired entry is purged.
func (c *RecommendationCache) Set(_ context.Context, studentID string, scholarshipIDs []string, results []models.MatchResult) {
	key := cacheKey(studentID, scholarshipIDs)

	c.mu.Lock()
	defer c.mu.Unlock()

	// Stored under a copy for the same reason Get copies: the caller keeps
	// using its slice after Set returns.
	c.entries[key] = cacheEntry{results: copyResults(results), createdAt: c.now()}

	if len(c.entries) > c.capacity {
		cutoff := c.now()
		for k, e := range c.entries {
			if cutoff.Sub(e.createdAt) >= c.ttl {
				delete(c.entries, k)
			}
		}
	}
}

func copyResults(results []models.MatchResult) []models.MatchResult {
	out := make([]models.MatchResult, len(results))
	copy(out, results)
	return out
}

// Clear drops all entries.
func (c *RecommendationCache) Clear(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len reports the current entry count.
func (c *RecommendationCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

var _ MatchCache = (*RecommendationCache)(nil)
