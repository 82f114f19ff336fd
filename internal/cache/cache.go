// Package cache provides the bounded memoization used by the FI age solver.
package cache

import (
	"math"
	"sync"

	"github.com/iwvelando/fi-forecast/internal/metrics"
	"github.com/iwvelando/fi-forecast/pkg/constants"
)

// Key identifies one corpus projection.
type Key struct {
	MonthlyInvestment float64
	Years             int
	StepUpPercent     float64
}

// Stats reports cache performance.
type Stats struct {
	Entries   int
	Hits      int64
	Misses    int64
	Evictions int64
}

// Cache is a bounded, insertion-ordered map from Key to projected value.
// When an insert would exceed capacity the oldest evictFraction of capacity
// is dropped first. It is safe for concurrent use.
type Cache struct {
	mu            sync.Mutex
	capacity      int
	evictFraction float64
	entries       map[Key]float64
	order         []Key
	stats         Stats
}

// New creates a cache. Non-positive capacity falls back to the default, and
// an evictFraction outside (0, 1] falls back to 20%.
func New(capacity int, evictFraction float64) *Cache {
	if capacity <= 0 {
		capacity = constants.DefaultCacheCapacity
	}
	if evictFraction <= 0 || evictFraction > 1 {
		evictFraction = constants.CacheEvictionFraction
	}
	return &Cache{
		capacity:      capacity,
		evictFraction: evictFraction,
		entries:       make(map[Key]float64, capacity),
		order:         make([]Key, 0, capacity),
	}
}

// Get returns the cached value for key.
func (c *Cache) Get(key Key) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.entries[key]
	if ok {
		c.stats.Hits++
		metrics.CacheLookups.WithLabelValues("hit").Inc()
	} else {
		c.stats.Misses++
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}
	return v, ok
}

// Set stores value under key. Re-setting an existing key updates the value
// without changing its insertion position.
func (c *Cache) Set(key Key, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = value
		return
	}
	if len(c.entries) >= c.capacity {
		c.evictOldest()
	}
	c.entries[key] = value
	c.order = append(c.order, key)
}

// GetOrCompute returns the cached value for key or computes, stores and
// returns it. compute runs outside the lock; concurrent callers may compute
// the same key, which is harmless because projections are pure.
func (c *Cache) GetOrCompute(key Key, compute func() float64) float64 {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := compute()
	c.Set(key, v)
	return v
}

func (c *Cache) evictOldest() {
	n := int(math.Ceil(float64(c.capacity) * c.evictFraction))
	if n < 1 {
		n = 1
	}
	if n > len(c.order) {
		n = len(c.order)
	}
	for _, key := range c.order[:n] {
		delete(c.entries, key)
	}
	remaining := make([]Key, len(c.order)-n, c.capacity)
	copy(remaining, c.order[n:])
	c.order = remaining
	c.stats.Evictions += int64(n)
	metrics.CacheEvictions.Add(float64(n))
}

// Clear drops every entry and resets statistics.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[Key]float64, c.capacity)
	c.order = make([]Key, 0, c.capacity)
	c.stats = Stats{}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Capacity returns the configured capacity.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Stats returns a snapshot of cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = len(c.entries)
	return s
}

// Contains reports whether key is cached without touching statistics.
func (c *Cache) Contains(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}
