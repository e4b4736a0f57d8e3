package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/metrics"
	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/models"
)

// cachedRecord stores the lookup outcome, including absence.
type cachedRecord struct {
	record *models.CompetitorStatsRecord
	found  bool
}

// CachedStatsLookup caches the records returned by another StatsRepository.
// Records are immutable, so cached values are shared between callers.
// Lookup errors are never cached.
type CachedStatsLookup struct {
	next    StatsRepository
	cache   *cache.Cache
	ttl     time.Duration
	maxSize int
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// NewCachedStatsLookup creates a new caching lookup
func NewCachedStatsLookup(next StatsRepository, ttl time.Duration, maxSize int) *CachedStatsLookup {
	return &CachedStatsLookup{
		next:    next,
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

func cacheKey(competitorID string, season int) string {
	return fmt.Sprintf("%d:%s", season, competitorID)
}

// Lookup returns the cached record or fetches it from the wrapped repository
func (c *CachedStatsLookup) Lookup(ctx context.Context, competitorID string, season int) (*models.CompetitorStatsRecord, bool, error) {
	key := cacheKey(competitorID, season)
	if v, found := c.cache.Get(key); found {
		if entry, ok := v.(cachedRecord); ok {
			c.hits.Add(1)
			c.updateMetrics(metrics.LookupHit)
			return entry.record.Clone(), entry.found, nil
		}
	}

	record, found, err := c.next.Lookup(ctx, competitorID, season)
	if err != nil {
		c.updateMetrics(metrics.LookupError)
		return nil, false, err
	}
	c.misses.Add(1)
	c.updateMetrics(metrics.LookupMiss)

	if c.maxSize > 0 && c.cache.ItemCount() >= c.maxSize {
		c.cache.DeleteExpired()
	}
	if c.maxSize <= 0 || c.cache.ItemCount() < c.maxSize {
		c.cache.Set(key, cachedRecord{record: record.Clone(), found: found}, c.ttl)
	}
	return record, found, nil
}

// Invalidate drops the cached entry for one competitor season
func (c *CachedStatsLookup) Invalidate(competitorID string, season int) {
	c.cache.Delete(cacheKey(competitorID, season))
}

// Clear flushes the entire cache
func (c *CachedStatsLookup) Clear() {
	c.cache.Flush()
	c.hits.Store(0)
	c.misses.Store(0)
}

// Stats returns cache statistics
func (c *CachedStatsLookup) Stats() (hits, misses uint64, ratio float64) {
	hits = c.hits.Load()
	misses = c.misses.Load()
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (c *CachedStatsLookup) ItemCount() int {
	return c.cache.ItemCount()
}

func (c *CachedStatsLookup) updateMetrics(result string) {
	metrics.RecordStatsLookup(result)
	_, _, ratio := c.Stats()
	metrics.UpdateStatsCacheHitRatio(ratio)
}
