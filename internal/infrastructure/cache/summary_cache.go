// Package cache provides the in-process cache for computed ledger summaries.
// Balances are cheap to recompute but read far more often than the ledger
// changes, so a small TTL cache in front of the calculators keeps report
// endpoints snappy without an external cache server.
package cache

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	defaultCapacity = 512
	defaultTTL      = 5 * time.Minute
)

type entry struct {
	value    any
	storedAt time.Time
	expires  time.Time
}

// SummaryCache is a capacity-bounded TTL cache keyed by summary scope, for
// example "company:<id>" or "project:<id>". When full, the oldest entry is
// evicted. All methods are safe for concurrent use.
type SummaryCache struct {
	mu       sync.Mutex
	entries  map[string]entry
	capacity int
	ttl      time.Duration
	logger   *zap.Logger

	hits   int64
	misses int64
}

// SummaryCacheOption is a functional option for configuring the cache
type SummaryCacheOption func(*SummaryCache)

// WithCapacity bounds the number of cached summaries
func WithCapacity(capacity int) SummaryCacheOption {
	return func(c *SummaryCache) {
		if capacity > 0 {
			c.capacity = capacity
		}
	}
}

// WithTTL sets how long a cached summary stays valid
func WithTTL(ttl time.Duration) SummaryCacheOption {
	return func(c *SummaryCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger sets the logger for the cache
func WithLogger(logger *zap.Logger) SummaryCacheOption {
	return func(c *SummaryCache) {
		c.logger = logger
	}
}

// NewSummaryCache creates a new summary cache
func NewSummaryCache(opts ...SummaryCacheOption) *SummaryCache {
	cache := &SummaryCache{
		entries:  make(map[string]entry),
		capacity: defaultCapacity,
		ttl:      defaultTTL,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache
}

// Get returns the cached value for key, or nil when absent or expired
func (c *SummaryCache) Get(key string) any {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil
	}
	if time.Now().After(e.expires) {
		delete(c.entries, key)
		atomic.AddInt64(&c.misses, 1)
		return nil
	}
	atomic.AddInt64(&c.hits, 1)
	return e.value
}

// Set stores a value under key, evicting the oldest entry when full
func (c *SummaryCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}
	c.entries[key] = entry{value: value, storedAt: now, expires: now.Add(c.ttl)}
}

// evictOldestLocked drops the entry stored longest ago. Callers hold mu.
func (c *SummaryCache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for key, e := range c.entries {
		if first || e.storedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = e.storedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
		c.logger.Debug("evicted summary cache entry", zap.String("key", oldestKey))
	}
}

// Invalidate removes one key
func (c *SummaryCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidatePrefix removes every key with the given prefix. Ledger writes
// call this with the affected scope so stale balances never survive a
// mutation.
func (c *SummaryCache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// Clear empties the cache
func (c *SummaryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Stats reports hit and miss counts since startup
func (c *SummaryCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Len returns the number of live entries
func (c *SummaryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
