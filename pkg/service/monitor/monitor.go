// Package monitor derives a rolling stress signal from recent operation
// latencies and cache utilization.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/inkwell-labs/mnemosyne/pkg/cache"
	"github.com/inkwell-labs/mnemosyne/pkg/metrics"
	"github.com/inkwell-labs/mnemosyne/pkg/utils/logging"
)

const (
	defaultSampleSize    = 256
	defaultSlowThreshold = 500 * time.Millisecond
	defaultSampleWindow  = 5 * time.Minute
	defaultInterval      = time.Minute

	// weights of the two stress components
	latencyWeight = 0.5
	cacheWeight   = 0.5
)

// StatsSource is a cache whose utilization feeds the stress signal
type StatsSource interface {
	Stats() cache.Stats
}

type sample struct {
	at      time.Time
	latency time.Duration
}

// Monitor keeps a bounded ring of recent operation timings and combines
// them with cache utilization into a stress value in [0,1]. Zero means
// idle, one means the process is saturated.
type Monitor struct {
	mu      sync.RWMutex
	samples []sample
	next    int
	count   int

	sources       []StatsSource
	slowThreshold time.Duration
	sampleWindow  time.Duration
	interval      time.Duration
	now           func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

type Option func(*Monitor)

// WithCaches registers caches whose utilization contributes to stress
func WithCaches(sources ...StatsSource) Option {
	return func(m *Monitor) {
		m.sources = append(m.sources, sources...)
	}
}

// WithSlowThreshold sets the latency at which an operation counts as
// fully stressed
func WithSlowThreshold(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.slowThreshold = d
		}
	}
}

// WithSampleWindow sets how far back latency samples are considered
func WithSampleWindow(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.sampleWindow = d
		}
	}
}

// WithSampleSize bounds the latency sample ring
func WithSampleSize(n int) Option {
	return func(m *Monitor) {
		if n > 0 {
			m.samples = make([]sample, n)
		}
	}
}

// WithInterval sets how often the background loop republishes stress
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithClock injects the timestamp source
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

func New(opts ...Option) *Monitor {
	m := &Monitor{
		samples:       make([]sample, defaultSampleSize),
		slowThreshold: defaultSlowThreshold,
		sampleWindow:  defaultSampleWindow,
		interval:      defaultInterval,
		now:           time.Now,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ObserveLatency records one operation timing
func (m *Monitor) ObserveLatency(d time.Duration) {
	if d < 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.samples[m.next] = sample{at: m.now(), latency: d}
	m.next = (m.next + 1) % len(m.samples)
	if m.count < len(m.samples) {
		m.count++
	}
}

// Stress computes the current stress level and publishes it to the
// gauge. Latency stress is the mean of recent latencies normalized by
// the slow threshold; cache stress is the highest utilization of any
// registered cache. The two are blended with equal weight, so one
// component alone tops out at its 0.5 share.
func (m *Monitor) Stress() float64 {
	stress := latencyWeight*m.latencyStress() + cacheWeight*m.cacheStress()
	if stress > 1 {
		stress = 1
	}
	metrics.StressLevel.Set(stress)
	return stress
}

func (m *Monitor) latencyStress() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cutoff := m.now().Add(-m.sampleWindow)
	var total time.Duration
	var n int
	for i := 0; i < m.count; i++ {
		s := m.samples[i]
		if s.at.Before(cutoff) {
			continue
		}
		total += s.latency
		n++
	}
	if n == 0 {
		return 0
	}

	mean := float64(total) / float64(n)
	stress := mean / float64(m.slowThreshold)
	if stress > 1 {
		stress = 1
	}
	return stress
}

func (m *Monitor) cacheStress() float64 {
	var worst float64
	for _, src := range m.sources {
		s := src.Stats()
		if s.MaxSizeBytes > 0 {
			if u := float64(s.SizeBytes) / float64(s.MaxSizeBytes); u > worst {
				worst = u
			}
		}
		if s.MaxEntries > 0 {
			if u := float64(s.Entries) / float64(s.MaxEntries); u > worst {
				worst = u
			}
		}
	}
	if worst > 1 {
		worst = 1
	}
	return worst
}

// Start begins republishing the stress gauge on the configured interval
func (m *Monitor) Start(ctx context.Context) {
	logging.Default().Info("resource monitor starting",
		"interval", m.interval.String(),
		"slowThreshold", m.slowThreshold.String())

	go m.run(ctx)
}

// Stop signals the monitor to stop and waits for completion
func (m *Monitor) Stop() {
	close(m.stopCh)
	<-m.doneCh
	logging.Default().Info("resource monitor stopped")
}

func (m *Monitor) run(ctx context.Context) {
	defer close(m.doneCh)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Stress()

		case <-m.stopCh:
			return

		case <-ctx.Done():
			return
		}
	}
}
