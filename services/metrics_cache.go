package services

import (
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"hotel-rate-engine/engine"
	"hotel-rate-engine/models"
)

// MarketMetricsCache memoises market metrics per room type and stay date.
// Every rate plan of a room type shares one competitor set, so a grid with
// many plans computes each set once. A cache must not outlive the
// observation set it was filled from.
type MarketMetricsCache struct {
	cache  *lru.Cache[string, models.MarketMetrics]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewMarketMetricsCache creates a cache holding up to size entries
func NewMarketMetricsCache(size int) (*MarketMetricsCache, error) {
	c, err := lru.New[string, models.MarketMetrics](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics cache: %w", err)
	}
	return &MarketMetricsCache{cache: c}, nil
}

// MarketMetrics implements engine.MetricsProvider
func (m *MarketMetricsCache) MarketMetrics(roomTypeCode string, date time.Time, rates []float64) models.MarketMetrics {
	key := roomTypeCode + "|" + date.Format("2006-01-02")
	if metrics, ok := m.cache.Get(key); ok {
		m.hits.Add(1)
		return metrics
	}
	m.misses.Add(1)
	metrics := engine.CalculateMarketMetrics(rates)
	m.cache.Add(key, metrics)
	return metrics
}

// Stats returns the number of cache hits and misses so far
func (m *MarketMetricsCache) Stats() (hits, misses int64) {
	return m.hits.Load(), m.misses.Load()
}
