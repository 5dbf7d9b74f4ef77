package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarmatch/scholarmatch-engine/pkg/models"
)

func sampleResults(score float64) []models.MatchResult {
	return []models.MatchResult{{
		ScholarshipID: uuid.New(),
		MatchScore:    score,
		Source:        models.SourceFallback,
	}}
}

func TestCacheKey_OrderIndependent(t *testing.T) {
	assert.Equal(t,
		cacheKey("student", []string{"b", "a", "c"}),
		cacheKey("student", []string{"c", "a", "b"}))
	assert.NotEqual(t,
		cacheKey("student", []string{"a"}),
		cacheKey("student", []string{"a", "b"}))
}

func TestCache_GetSetRoundTrip(t *testing.T) {
	cache := NewRecommendationCache(time.Minute, 10)
	ctx := context.Background()
	results := sampleResults(75)

	_, ok := cache.Get(ctx, "s1", []string{"a", "b"})
	assert.False(t, ok)

	cache.Set(ctx, "s1", []string{"a", "b"}, results)

	// Same scholarship set in a different order hits the same entry.
	got, ok := cache.Get(ctx, "s1", []string{"b", "a"})
	require.True(t, ok)
	assert.Equal(t, results, got)
}

func TestCache_StudentIsolation(t *testing.T) {
	cache := NewRecommendationCache(time.Minute, 10)
	ctx := context.Background()

	cache.Set(ctx, "s1", []string{"a"}, sampleResults(80))

	_, ok := cache.Get(ctx, "s2", []string{"a"})
	assert.False(t, ok)
}

func TestCache_TTLExpiry(t *testing.T) {
	cache := NewRecommendationCache(30*time.Minute, 10)
	current := time.Now()
	cache.now = func() time.Time { return current }
	ctx := context.Background()

	cache.Set(ctx, "s1", []string{"a"}, sampleResults(70))

	current = current.Add(29 * time.Minute)
	_, ok := cache.Get(ctx, "s1", []string{"a"})
	assert.True(t, ok, "entry should survive inside the TTL window")

	current = current.Add(time.Minute)
	_, ok = cache.Get(ctx, "s1", []string{"a"})
	assert.False(t, ok, "entry at exactly the TTL is expired")

	// Lazy expiry removed the entry.
	assert.Equal(t, 0, cache.Len())
}

func TestCache_SetOverwritesAndRefreshesTTL(t *testing.T) {
	cache := NewRecommendationCache(30*time.Minute, 10)
	current := time.Now()
	cache.now = func() time.Time { return current }
	ctx := context.Background()

	cache.Set(ctx, "s1", []string{"a"}, sampleResults(10))

	current = current.Add(20 * time.Minute)
	fresh := sampleResults(99)
	cache.Set(ctx, "s1", []string{"a"}, fresh)

	current = current.Add(20 * time.Minute)
	got, ok := cache.Get(ctx, "s1", []string{"a"})
	require.True(t, ok, "overwrite must restart the TTL clock")
	assert.Equal(t, fresh, got)
}

func TestCache_CapacitySweepRemovesOnlyExpired(t *testing.T) {
	cache := NewRecommendationCache(30*time.Minute, 3)
	current := time.Now()
	cache.now = func() time.Time { return current }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cache.Set(ctx, fmt.Sprintf("old%d", i), []string{"a"}, sampleResults(1))
	}

	// Past the TTL the old entries are sweepable; new writes push the
	// store over capacity and trigger the sweep.
	current = current.Add(31 * time.Minute)
	cache.Set(ctx, "new", []string{"a"}, sampleResults(2))

	assert.Equal(t, 1, cache.Len())
	_, ok := cache.Get(ctx, "new", []string{"a"})
	assert.True(t, ok)
}

func TestCache_SweepKeepsLiveEntriesOverCapacity(t *testing.T) {
	cache := NewRecommendationCache(30*time.Minute, 2)
	ctx := context.Background()

	// All entries live: the sweep finds nothing to evict and the store
	// temporarily exceeds capacity rather than dropping live data.
	for i := 0; i < 4; i++ {
		cache.Set(ctx, fmt.Sprintf("s%d", i), []string{"a"}, sampleResults(float64(i)))
	}

	assert.Equal(t, 4, cache.Len())
}

func TestCache_Clear(t *testing.T) {
	cache := NewRecommendationCache(time.Minute, 10)
	ctx := context.Background()

	cache.Set(ctx, "s1", []string{"a"}, sampleResults(50))
	cache.Set(ctx, "s2", []string{"b"}, sampleResults(60))

	cache.Clear(ctx)

	assert.Equal(t, 0, cache.Len())
	_, ok := cache.Get(ctx, "s1", []string{"a"})
	assert.False(t, ok)
}

func TestCache_GetReturnsIndependentCopies(t *testing.T) {
	cache := NewRecommendationCache(time.Minute, 10)
	ctx := context.Background()

	stored := []models.MatchResult{
		{ScholarshipID: uuid.New(), MatchScore: 40, Source: models.SourceFallback},
		{ScholarshipID: uuid.New(), MatchScore: 90, Source: models.SourceFallback},
	}
	cache.Set(ctx, "s1", []string{"a", "b"}, stored)

	// Mutating the caller's slice after Set must not reach the cache.
	stored[0], stored[1] = stored[1], stored[0]
	stored[0].MatchScore = 0

	first, ok := cache.Get(ctx, "s1", []string{"a", "b"})
	require.True(t, ok)
	assert.Equal(t, 40.0, first[0].MatchScore)
	assert.Equal(t, 90.0, first[1].MatchScore)

	// Handlers sort hits in place; a reorder of one hit must not bleed
	// into the next.
	sort.SliceStable(first, func(i, j int) bool { return first[i].MatchScore > first[j].MatchScore })

	second, ok := cache.Get(ctx, "s1", []string{"a", "b"})
	require.True(t, ok)
	assert.Equal(t, 40.0, second[0].MatchScore)
	assert.Equal(t, 90.0, second[1].MatchScore)
}

func TestCache_ConcurrentHitsDoNotShareBackingArray(t *testing.T) {
	cache := NewRecommendationCache(time.Minute, 10)
	ctx := context.Background()

	results := make([]models.MatchResult, 20)
	for i := range results {
		results[i] = models.MatchResult{ScholarshipID: uuid.New(), MatchScore: float64(i), Source: models.SourceAI}
	}
	cache.Set(ctx, "s1", []string{"a"}, results)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, ok := cache.Get(ctx, "s1", []string{"a"})
			if !ok {
				return
			}
			sort.SliceStable(got, func(i, j int) bool { return got[i].MatchScore > got[j].MatchScore })
		}()
	}
	wg.Wait()

	got, ok := cache.Get(ctx, "s1", []string{"a"})
	require.True(t, ok)
	assert.Equal(t, 0.0, got[0].MatchScore, "stored order must survive concurrent in-place sorts of hits")
}

func TestCache_DefaultsApplied(t *testing.T) {
	cache := NewRecommendationCache(0, 0)
	assert.Equal(t, DefaultCacheTTL, cache.ttl)
	assert.Equal(t, DefaultCacheCapacity, cache.capacity)
}
