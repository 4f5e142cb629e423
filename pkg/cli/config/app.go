package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/types"
	"github.com/inkwell-labs/mnemosyne/pkg/service/window"
)

// App is the optional TOML application configuration: base prompt,
// window tuning and the keyword-to-mood table
type App struct {
	path string

	BasePrompt string      `toml:"base_prompt"`
	Window     WindowCfg   `toml:"window"`
	Moods      []MoodEntry `toml:"mood"`
}

// WindowCfg tunes the conversation window manager
type WindowCfg struct {
	RecentSize     int `toml:"recent_size"`
	SummarizeAfter int `toml:"summarize_after"`
	TTLMinutes     int `toml:"ttl_minutes"`
}

// MoodEntry maps content keywords to a mood
type MoodEntry struct {
	Mood     string   `toml:"mood"`
	Keywords []string `toml:"keywords"`
}

// Flags returns CLI flags for application configuration
func (a *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to application config file (TOML)",
			Sources:     cli.EnvVars("MNEMOSYNE_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Configure loads and validates the TOML file when one is configured
func (a *App) Configure() error {
	if a.path == "" {
		return nil
	}
	return a.Load(a.path)
}

// Load reads and validates the TOML file at path
func (a *App) Load(path string) error {
	a.path = path

	data, err := os.ReadFile(a.path)
	if err != nil {
		return goerr.Wrap(err, "failed to read config file", goerr.V("path", a.path))
	}
	if err := toml.Unmarshal(data, a); err != nil {
		return goerr.Wrap(err, "failed to parse config file", goerr.V("path", a.path))
	}

	for _, entry := range a.Moods {
		if entry.Mood == "" {
			return goerr.New("mood entry requires a mood name", goerr.V("path", a.path))
		}
		if len(entry.Keywords) == 0 {
			return goerr.New("mood entry requires keywords",
				goerr.V("path", a.path), goerr.V("mood", entry.Mood))
		}
	}
	return nil
}

// MoodTable converts the mood entries into the composer's lookup table.
// Returns nil when no entries are configured, which keeps the built-in
// table in place.
func (a *App) MoodTable() map[string]types.Mood {
	if len(a.Moods) == 0 {
		return nil
	}
	table := make(map[string]types.Mood)
	for _, entry := range a.Moods {
		for _, kw := range entry.Keywords {
			table[kw] = types.Mood(entry.Mood)
		}
	}
	return table
}

// WindowOptions converts the window tuning into manager options
func (a *App) WindowOptions() []window.Option {
	var opts []window.Option
	if a.Window.RecentSize > 0 {
		opts = append(opts, window.WithRecentSize(a.Window.RecentSize))
	}
	if a.Window.SummarizeAfter > 0 {
		opts = append(opts, window.WithSummarizeAfter(a.Window.SummarizeAfter))
	}
	if a.Window.TTLMinutes > 0 {
		opts = append(opts, window.WithTTL(time.Duration(a.Window.TTLMinutes)*time.Minute))
	}
	return opts
}
