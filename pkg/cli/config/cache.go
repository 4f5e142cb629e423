package config

import (
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"
)

// Cache holds CLI flags for cache budgets and maintenance intervals
type Cache struct {
	maxSizeBytes     int64
	maxEntries       int64
	defaultTTL       time.Duration
	sweepInterval    time.Duration
	pressureInterval time.Duration
}

// Flags returns CLI flags for cache configuration
func (c *Cache) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "cache-max-size",
			Usage:       "Cache size budget in bytes",
			Value:       50 * 1024 * 1024,
			Sources:     cli.EnvVars("MNEMOSYNE_CACHE_MAX_SIZE"),
			Destination: &c.maxSizeBytes,
		},
		&cli.Int64Flag{
			Name:        "cache-max-entries",
			Usage:       "Cache entry count budget",
			Value:       1000,
			Sources:     cli.EnvVars("MNEMOSYNE_CACHE_MAX_ENTRIES"),
			Destination: &c.maxEntries,
		},
		&cli.DurationFlag{
			Name:        "cache-default-ttl",
			Usage:       "Default TTL for cache entries",
			Value:       5 * time.Minute,
			Sources:     cli.EnvVars("MNEMOSYNE_CACHE_DEFAULT_TTL"),
			Destination: &c.defaultTTL,
		},
		&cli.DurationFlag{
			Name:        "cache-sweep-interval",
			Usage:       "Interval between TTL sweep passes",
			Value:       5 * time.Minute,
			Sources:     cli.EnvVars("MNEMOSYNE_CACHE_SWEEP_INTERVAL"),
			Destination: &c.sweepInterval,
		},
		&cli.DurationFlag{
			Name:        "cache-pressure-interval",
			Usage:       "Interval between memory pressure checks",
			Value:       time.Minute,
			Sources:     cli.EnvVars("MNEMOSYNE_CACHE_PRESSURE_INTERVAL"),
			Destination: &c.pressureInterval,
		},
	}
}

// LogAttrs returns log attributes for the cache configuration
func (c *Cache) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.Int64("max_size_bytes", c.maxSizeBytes),
		slog.Int64("max_entries", c.maxEntries),
		slog.Duration("default_ttl", c.defaultTTL),
		slog.Duration("sweep_interval", c.sweepInterval),
		slog.Duration("pressure_interval", c.pressureInterval),
	}
}

func (c *Cache) MaxSizeBytes() int64 {
	return c.maxSizeBytes
}

func (c *Cache) MaxEntries() int {
	return int(c.maxEntries)
}

func (c *Cache) DefaultTTL() time.Duration {
	return c.defaultTTL
}

func (c *Cache) SweepInterval() time.Duration {
	return c.sweepInterval
}

func (c *Cache) PressureInterval() time.Duration {
	return c.pressureInterval
}
