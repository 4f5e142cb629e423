package usecase

import (
	"github.com/inkwell-labs/mnemosyne/pkg/cache"
	"github.com/inkwell-labs/mnemosyne/pkg/service/monitor"
)

// NamedStats is a cache registered for operational reporting
type NamedStats interface {
	Name() string
	Stats() cache.Stats
}

// StatsReport is the process-level operational snapshot
type StatsReport struct {
	Caches map[string]cache.Stats `json:"caches"`
	Stress float64                `json:"stress"`
}

// StatsUseCase reports cache accounting and the current stress level
type StatsUseCase struct {
	monitor *monitor.Monitor
	caches  []NamedStats
}

func NewStatsUseCase(mon *monitor.Monitor, caches ...NamedStats) *StatsUseCase {
	return &StatsUseCase{
		monitor: mon,
		caches:  caches,
	}
}

// Register adds a cache to the report
func (uc *StatsUseCase) Register(caches ...NamedStats) {
	uc.caches = append(uc.caches, caches...)
}

// Report snapshots every registered cache plus the stress signal
func (uc *StatsUseCase) Report() StatsReport {
	report := StatsReport{
		Caches: make(map[string]cache.Stats, len(uc.caches)),
		Stress: uc.monitor.Stress(),
	}

	for _, c := range uc.caches {
		report.Caches[c.Name()] = c.Stats()
	}

	return report
}
