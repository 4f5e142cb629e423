package cache

import (
	"github.com/dustin/go-humanize"
)

// Stats is a point-in-time snapshot of the cache's accounting
type Stats struct {
	Entries      int     `json:"entries"`
	SizeBytes    int64   `json:"size_bytes"`
	SizeHuman    string  `json:"size_human"`
	MaxSizeBytes int64   `json:"max_size_bytes"`
	MaxEntries   int     `json:"max_entries"`
	Hits         uint64  `json:"hits"`
	Misses       uint64  `json:"misses"`
	HitRate      float64 `json:"hit_rate"`
}

// Stats returns a snapshot of the cache. HitRate is 0 when the cache
// has not been accessed yet.
func (c *Cache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Entries:      len(c.entries),
		SizeBytes:    c.currentSize,
		SizeHuman:    humanize.IBytes(uint64(max(c.currentSize, 0))),
		MaxSizeBytes: c.maxSizeBytes,
		MaxEntries:   c.maxEntries,
		Hits:         c.hits,
		Misses:       c.misses,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}
