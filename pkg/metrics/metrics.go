// Package metrics defines the Prometheus instruments exported by the service
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheRequests counts cache lookups by cache name and result (hit/miss)
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mnemosyne",
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Count of cache lookups partitioned by result",
		},
		[]string{"cache", "result"},
	)

	// CacheEvictions counts removed entries by reason (ttl, lru, delete, clear)
	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mnemosyne",
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Count of cache entries removed partitioned by reason",
		},
		[]string{"cache", "reason"},
	)

	// CacheSizeBytes is the current estimated byte size of live entries
	CacheSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "mnemosyne",
			Subsystem: "cache",
			Name:      "size_bytes",
			Help:      "Current estimated byte size of live cache entries",
		},
		[]string{"cache"},
	)

	// CacheEntries is the current number of live entries
	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "mnemosyne",
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Current number of live cache entries",
		},
		[]string{"cache"},
	)

	// RecallDuration observes memory retrieval latency by ranking path
	RecallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mnemosyne",
			Subsystem: "recall",
			Name:      "duration_seconds",
			Help:      "Memory retrieval latency partitioned by ranking path",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	// EmbeddingFallbacks counts embedding calls degraded to a zero vector
	EmbeddingFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mnemosyne",
			Subsystem: "embedding",
			Name:      "fallbacks_total",
			Help:      "Count of embedding calls that degraded to a zero vector",
		},
	)

	// StressLevel is the rolling resource stress signal in [0,1]
	StressLevel = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mnemosyne",
			Name:      "stress_level",
			Help:      "Rolling resource stress signal between 0 and 1",
		},
	)
)

// ObserveCacheSizeChange records the cache's live size after a mutation
func ObserveCacheSizeChange(cache string, sizeBytes int64, entries int64) {
	CacheSizeBytes.WithLabelValues(cache).Set(float64(sizeBytes))
	CacheEntries.WithLabelValues(cache).Set(float64(entries))
}

// ObserveCacheRequest records a lookup result
func ObserveCacheRequest(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheRequests.WithLabelValues(cache, result).Inc()
}

// ObserveCacheEviction records removed entries with the removal reason
func ObserveCacheEviction(cache, reason string, count int) {
	if count <= 0 {
		return
	}
	CacheEvictions.WithLabelValues(cache, reason).Add(float64(count))
}
