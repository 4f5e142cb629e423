package config

import (
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/inkwell-labs/mnemosyne/pkg/service/recall"
)

// Recall holds CLI flags for memory retrieval tuning
type Recall struct {
	minSimilarity   float64
	fallbackFloor   float64
	fetchMultiplier int64
	readTimeout     time.Duration
	retentionDays   int64
}

// Flags returns CLI flags for recall configuration
func (r *Recall) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.FloatFlag{
			Name:        "recall-min-similarity",
			Usage:       "Cosine similarity floor for vector retrieval",
			Value:       0.65,
			Sources:     cli.EnvVars("MNEMOSYNE_RECALL_MIN_SIMILARITY"),
			Destination: &r.minSimilarity,
		},
		&cli.FloatFlag{
			Name:        "recall-fallback-floor",
			Usage:       "Score floor for the keyword fallback scorer",
			Value:       0.05,
			Sources:     cli.EnvVars("MNEMOSYNE_RECALL_FALLBACK_FLOOR"),
			Destination: &r.fallbackFloor,
		},
		&cli.Int64Flag{
			Name:        "recall-fetch-multiplier",
			Usage:       "Candidate fetch size as a multiple of the result limit",
			Value:       3,
			Sources:     cli.EnvVars("MNEMOSYNE_RECALL_FETCH_MULTIPLIER"),
			Destination: &r.fetchMultiplier,
		},
		&cli.DurationFlag{
			Name:        "recall-read-timeout",
			Usage:       "Timeout for durable candidate reads",
			Value:       5 * time.Second,
			Sources:     cli.EnvVars("MNEMOSYNE_RECALL_READ_TIMEOUT"),
			Destination: &r.readTimeout,
		},
		&cli.Int64Flag{
			Name:        "recall-retention-days",
			Usage:       "Delete memories older than this many days (0 keeps everything)",
			Sources:     cli.EnvVars("MNEMOSYNE_RECALL_RETENTION_DAYS"),
			Destination: &r.retentionDays,
		},
	}
}

// LogAttrs returns log attributes for the recall configuration
func (r *Recall) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.Float64("min_similarity", r.minSimilarity),
		slog.Float64("fallback_floor", r.fallbackFloor),
		slog.Int64("fetch_multiplier", r.fetchMultiplier),
		slog.Duration("read_timeout", r.readTimeout),
		slog.Int64("retention_days", r.retentionDays),
	}
}

// Config converts the flags into the recall service tuning
func (r *Recall) Config() recall.Config {
	cfg := recall.DefaultConfig()
	if r.minSimilarity > 0 {
		cfg.MinSimilarity = r.minSimilarity
	}
	if r.fallbackFloor > 0 {
		cfg.FallbackFloor = r.fallbackFloor
	}
	if r.fetchMultiplier > 0 {
		cfg.FetchMultiplier = int(r.fetchMultiplier)
	}
	if r.readTimeout > 0 {
		cfg.ReadTimeout = r.readTimeout
	}
	return cfg
}

// Retention returns the configured retention policy
func (r *Recall) Retention() recall.RetentionPolicy {
	if r.retentionDays > 0 {
		return recall.MaxAge{Days: int(r.retentionDays)}
	}
	return recall.KeepForever{}
}
