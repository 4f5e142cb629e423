// Package cache provides a TTL and size-bounded in-process key/value store
// with least-recently-used eviction and hit/miss accounting.
package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/inkwell-labs/mnemosyne/pkg/metrics"
	"github.com/inkwell-labs/mnemosyne/pkg/utils/logging"
)

const (
	// evictionWatermark is the fraction of each budget an eviction pass
	// reduces the cache to, leaving headroom for subsequent inserts
	evictionWatermark = 0.8

	// pressureThreshold is the fraction of the byte budget above which
	// the background sweep triggers a proactive eviction pass
	pressureThreshold = 0.9
)

const (
	defaultMaxSizeBytes = 50 << 20
	defaultMaxEntries   = 1000
	defaultTTL          = 5 * time.Minute
)

type entry[T any] struct {
	value        T
	sizeBytes    int64
	createdAt    time.Time
	expiresAt    time.Time // zero means no expiry
	lastAccessAt time.Time
	accessCount  int64
	seq          uint64 // insertion sequence, breaks last-access ties deterministically
}

// Cache is a bounded TTL+LRU store. All operations are safe for
// concurrent use and none of them returns an error: unknown or expired
// keys are a normal miss. The mutex is never held across I/O.
type Cache[T any] struct {
	mu          sync.Mutex
	name        string
	entries     map[string]*entry[T]
	currentSize int64
	hits        uint64
	misses      uint64
	seq         uint64

	maxSizeBytes int64
	maxEntries   int
	ttl          time.Duration
	now          func() time.Time
}

// Option configures a Cache
type Option[T any] func(*Cache[T])

// WithMaxSizeBytes sets the byte budget
func WithMaxSizeBytes[T any](n int64) Option[T] {
	return func(c *Cache[T]) {
		c.maxSizeBytes = n
	}
}

// WithMaxEntries sets the entry-count budget
func WithMaxEntries[T any](n int) Option[T] {
	return func(c *Cache[T]) {
		c.maxEntries = n
	}
}

// WithDefaultTTL sets the TTL applied by Set
func WithDefaultTTL[T any](ttl time.Duration) Option[T] {
	return func(c *Cache[T]) {
		c.ttl = ttl
	}
}

// WithClock injects a timestamp source for deterministic tests
func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *Cache[T]) {
		c.now = now
	}
}

// New creates a bounded cache. The name labels metrics and log entries.
func New[T any](name string, opts ...Option[T]) *Cache[T] {
	c := &Cache[T]{
		name:         name,
		entries:      make(map[string]*entry[T]),
		maxSizeBytes: defaultMaxSizeBytes,
		maxEntries:   defaultMaxEntries,
		ttl:          defaultTTL,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the cache's metric label
func (c *Cache[T]) Name() string {
	return c.name
}

// Set stores the value under key with the default TTL
func (c *Cache[T]) Set(key string, value T) {
	c.SetTTL(key, value, c.ttl)
}

// SetTTL stores the value under key with an explicit TTL. A ttl <= 0
// means the entry never expires. If the insert would exceed either
// budget, an eviction pass runs first; Set never fails, even for a
// value larger than the whole budget.
func (c *Cache[T]) SetTTL(key string, value T, ttl time.Duration) {
	size := SizeOf(value) + int64(2*len(key))
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[key]; ok {
		c.currentSize -= old.sizeBytes
		delete(c.entries, key)
	}

	if c.currentSize+size > c.maxSizeBytes || len(c.entries)+1 > c.maxEntries {
		c.evictLocked()
	}

	e := &entry[T]{
		value:        value,
		sizeBytes:    size,
		createdAt:    now,
		lastAccessAt: now,
		seq:          c.seq,
	}
	c.seq++
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}

	c.entries[key] = e
	c.currentSize += size
	metrics.ObserveCacheSizeChange(c.name, c.currentSize, int64(len(c.entries)))
}

// Get returns the live value for key. Expired entries are removed as a
// side effect of being observed; both absence and expiry count as a miss.
func (c *Cache[T]) Get(key string) (T, bool) {
	var zero T
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		metrics.ObserveCacheRequest(c.name, false)
		return zero, false
	}
	if c.expiredLocked(e, now) {
		c.removeLocked(key, e, "ttl")
		c.misses++
		metrics.ObserveCacheRequest(c.name, false)
		return zero, false
	}

	e.accessCount++
	e.lastAccessAt = now
	c.hits++
	metrics.ObserveCacheRequest(c.name, true)
	return e.value, true
}

// Has reports whether a live entry exists for key without touching the
// hit/miss counters or the entry's access bookkeeping. Expired entries
// are still removed on observation.
func (c *Cache[T]) Has(key string) bool {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	if c.expiredLocked(e, now) {
		c.removeLocked(key, e, "ttl")
		return false
	}
	return true
}

// Delete removes the entry for key if present
func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.removeLocked(key, e, "delete")
	}
}

// Clear removes all entries and resets the size and hit/miss counters
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	metrics.ObserveCacheEviction(c.name, "clear", len(c.entries))
	c.entries = make(map[string]*entry[T])
	c.currentSize = 0
	c.hits = 0
	c.misses = 0
	metrics.ObserveCacheSizeChange(c.name, 0, 0)
}

// Len returns the number of entries currently held, including any that
// have expired but have not yet been observed or swept
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// SweepExpired removes all TTL-expired entries and returns how many were
// removed. A sweep that finds nothing is a no-op.
func (c *Cache[T]) SweepExpired() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	var removed int
	for key, e := range c.entries {
		if c.expiredLocked(e, now) {
			c.removeLocked(key, e, "ttl")
			removed++
		}
	}
	return removed
}

// EvictIfPressured runs an eviction pass when the live size exceeds the
// pressure threshold of the byte budget, and returns how many entries
// were removed. Called by the background sweeper to decouple eviction
// from request latency.
func (c *Cache[T]) EvictIfPressured() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if float64(c.currentSize) <= pressureThreshold*float64(c.maxSizeBytes) {
		return 0
	}
	before := len(c.entries)
	c.evictLocked()
	return before - len(c.entries)
}

func (c *Cache[T]) expiredLocked(e *entry[T], now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

func (c *Cache[T]) removeLocked(key string, e *entry[T], reason string) {
	c.currentSize -= e.sizeBytes
	delete(c.entries, key)
	metrics.ObserveCacheEviction(c.name, reason, 1)
	metrics.ObserveCacheSizeChange(c.name, c.currentSize, int64(len(c.entries)))
}

// evictLocked removes least-recently-accessed entries until both the
// byte size and entry count are at or below the eviction watermark.
// It first recomputes the size aggregate from the live entries so that
// accounting drift can never cause unbounded growth.
func (c *Cache[T]) evictLocked() {
	var sum int64
	victims := make([]struct {
		key string
		e   *entry[T]
	}, 0, len(c.entries))
	for key, e := range c.entries {
		sum += e.sizeBytes
		victims = append(victims, struct {
			key string
			e   *entry[T]
		}{key, e})
	}
	if sum != c.currentSize {
		logging.Default().Warn("cache size accounting drift corrected",
			"cache", c.name, "tracked", c.currentSize, "actual", sum)
		c.currentSize = sum
	}

	sort.Slice(victims, func(i, j int) bool {
		if victims[i].e.lastAccessAt.Equal(victims[j].e.lastAccessAt) {
			return victims[i].e.seq < victims[j].e.seq
		}
		return victims[i].e.lastAccessAt.Before(victims[j].e.lastAccessAt)
	})

	sizeTarget := int64(evictionWatermark * float64(c.maxSizeBytes))
	countTarget := int(evictionWatermark * float64(c.maxEntries))

	var evicted int
	for _, v := range victims {
		if c.currentSize <= sizeTarget && len(c.entries) <= countTarget {
			break
		}
		c.currentSize -= v.e.sizeBytes
		delete(c.entries, v.key)
		evicted++
	}

	if evicted > 0 {
		metrics.ObserveCacheEviction(c.name, "lru", evicted)
		metrics.ObserveCacheSizeChange(c.name, c.currentSize, int64(len(c.entries)))
		logging.Default().Debug("evicted least-recently-used cache entries",
			"cache", c.name, "evicted", evicted,
			"sizeBytes", c.currentSize, "entries", len(c.entries))
	}
}
