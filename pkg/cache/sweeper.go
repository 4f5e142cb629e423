package cache

import (
	"context"
	"time"

	"github.com/inkwell-labs/mnemosyne/pkg/utils/logging"
)

// Sweepable is a cache that the background Sweeper can maintain
type Sweepable interface {
	Name() string
	SweepExpired() int
	EvictIfPressured() int
}

// Sweeper runs the periodic cache maintenance passes: a TTL sweep and a
// memory-pressure check on independent intervals. Passes are idempotent
// and never overlap each other.
//
// Architecture assumptions:
// - Single server instance (no distributed coordination)
type Sweeper struct {
	caches           []Sweepable
	sweepInterval    time.Duration
	pressureInterval time.Duration
	stopCh           chan struct{}
	doneCh           chan struct{}
}

// NewSweeper creates a sweeper for the given caches
func NewSweeper(sweepInterval, pressureInterval time.Duration, caches ...Sweepable) *Sweeper {
	return &Sweeper{
		caches:           caches,
		sweepInterval:    sweepInterval,
		pressureInterval: pressureInterval,
		stopCh:           make(chan struct{}),
		doneCh:           make(chan struct{}),
	}
}

// Start begins the background maintenance loop. It does not block.
func (s *Sweeper) Start(ctx context.Context) {
	logging.Default().Info("cache sweeper starting",
		"sweepInterval", s.sweepInterval.String(),
		"pressureInterval", s.pressureInterval.String(),
		"caches", len(s.caches))

	go s.run(ctx)
}

// Stop signals the sweeper to stop and waits for completion
func (s *Sweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
	logging.Default().Info("cache sweeper stopped")
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.doneCh)

	sweep := time.NewTicker(s.sweepInterval)
	defer sweep.Stop()
	pressure := time.NewTicker(s.pressureInterval)
	defer pressure.Stop()

	for {
		select {
		case <-sweep.C:
			s.sweepOnce(ctx)

		case <-pressure.C:
			s.pressureOnce(ctx)

		case <-s.stopCh:
			return

		case <-ctx.Done():
			return
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	for _, c := range s.caches {
		if n := c.SweepExpired(); n > 0 {
			logging.From(ctx).Debug("swept expired cache entries",
				"cache", c.Name(), "removed", n)
		}
	}
}

func (s *Sweeper) pressureOnce(ctx context.Context) {
	for _, c := range s.caches {
		if n := c.EvictIfPressured(); n > 0 {
			logging.From(ctx).Info("evicted cache entries under memory pressure",
				"cache", c.Name(), "evicted", n)
		}
	}
}
