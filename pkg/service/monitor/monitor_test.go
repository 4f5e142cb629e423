package monitor_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/inkwell-labs/mnemosyne/pkg/cache"
	"github.com/inkwell-labs/mnemosyne/pkg/service/monitor"
)

type staticStats struct {
	stats cache.Stats
}

func (s *staticStats) Stats() cache.Stats {
	return s.stats
}

func TestStressIdle(t *testing.T) {
	m := monitor.New()
	gt.Number(t, m.Stress()).Equal(0)
}

func TestStressFromLatency(t *testing.T) {
	current := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return current }

	m := monitor.New(
		monitor.WithClock(clock),
		monitor.WithSlowThreshold(100*time.Millisecond),
	)

	t.Run("fast operations barely register", func(t *testing.T) {
		m.ObserveLatency(10 * time.Millisecond)
		gt.Number(t, m.Stress()).Equal(0.05)
	})

	t.Run("sustained slowness saturates the latency component", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			m.ObserveLatency(time.Second)
		}
		stress := m.Stress()
		gt.Number(t, stress).Greater(0.4)
		gt.Number(t, stress).LessOrEqual(0.5)
	})
}

func TestStressIgnoresStaleSamples(t *testing.T) {
	current := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return current }

	m := monitor.New(
		monitor.WithClock(clock),
		monitor.WithSlowThreshold(100*time.Millisecond),
		monitor.WithSampleWindow(time.Minute),
	)

	m.ObserveLatency(time.Second)
	gt.Number(t, m.Stress()).Equal(0.5)

	current = current.Add(2 * time.Minute)
	gt.Number(t, m.Stress()).Equal(0)
}

func TestStressFromCacheUtilization(t *testing.T) {
	src := &staticStats{stats: cache.Stats{
		SizeBytes:    900,
		MaxSizeBytes: 1000,
		Entries:      1,
		MaxEntries:   100,
	}}

	m := monitor.New(monitor.WithCaches(src))
	gt.Number(t, m.Stress()).Equal(0.45)
}

func TestStressCappedAtOne(t *testing.T) {
	current := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return current }

	src := &staticStats{stats: cache.Stats{
		SizeBytes:    5000,
		MaxSizeBytes: 1000,
	}}

	m := monitor.New(
		monitor.WithClock(clock),
		monitor.WithCaches(src),
		monitor.WithSlowThreshold(time.Millisecond),
	)
	m.ObserveLatency(time.Minute)

	gt.Number(t, m.Stress()).Equal(1.0)
}

func TestSampleRingBounded(t *testing.T) {
	current := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return current }

	m := monitor.New(
		monitor.WithClock(clock),
		monitor.WithSampleSize(4),
		monitor.WithSlowThreshold(100*time.Millisecond),
	)

	// old fast samples get overwritten by the slow ones
	for i := 0; i < 4; i++ {
		m.ObserveLatency(0)
	}
	for i := 0; i < 4; i++ {
		m.ObserveLatency(100 * time.Millisecond)
	}

	gt.Number(t, m.Stress()).Equal(0.5)
}
