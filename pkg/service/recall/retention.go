package recall

import "time"

// RetentionPolicy decides how far back stored memories are kept.
// Memories are never pruned by the store itself; a bounded policy makes
// pruning an explicit, pluggable choice.
type RetentionPolicy interface {
	// Cutoff returns the creation-time cutoff below which memories are
	// removed. A false second return means unbounded retention.
	Cutoff(now time.Time) (time.Time, bool)
}

// KeepForever retains every memory indefinitely. This is the default.
type KeepForever struct{}

func (KeepForever) Cutoff(time.Time) (time.Time, bool) {
	return time.Time{}, false
}

// MaxAge retains memories created within the last Days days
type MaxAge struct {
	Days int
}

func (p MaxAge) Cutoff(now time.Time) (time.Time, bool) {
	if p.Days <= 0 {
		return time.Time{}, false
	}
	return now.AddDate(0, 0, -p.Days), true
}
