package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/inkwell-labs/mnemosyne/pkg/usecase"
	"github.com/inkwell-labs/mnemosyne/pkg/utils/safe"
)

func cmdStats() *cli.Command {
	var baseURL string

	return &cli.Command{
		Name:  "stats",
		Usage: "Show cache and stress statistics of a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "url",
				Usage:       "Base URL of the running server",
				Value:       "http://localhost:8080",
				Sources:     cli.EnvVars("MNEMOSYNE_URL"),
				Destination: &baseURL,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			client := &http.Client{Timeout: 10 * time.Second}

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/stats", nil)
			if err != nil {
				return goerr.Wrap(err, "failed to build stats request")
			}

			resp, err := client.Do(req)
			if err != nil {
				return goerr.Wrap(err, "failed to fetch stats", goerr.V("url", baseURL))
			}
			defer safe.Close(ctx, resp.Body)

			if resp.StatusCode != http.StatusOK {
				return goerr.New("unexpected status from stats endpoint",
					goerr.V("status", resp.StatusCode))
			}

			var report usecase.StatsReport
			if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
				return goerr.Wrap(err, "failed to decode stats response")
			}

			printReport(report)
			return nil
		},
	}
}

func printReport(report usecase.StatsReport) {
	title := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgWhite)
	warn := color.New(color.FgYellow, color.Bold)

	title.Println("Stress")
	if report.Stress >= 0.8 {
		warn.Printf("  %.2f\n", report.Stress)
	} else {
		label.Printf("  %.2f\n", report.Stress)
	}

	names := make([]string, 0, len(report.Caches))
	for name := range report.Caches {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		s := report.Caches[name]
		title.Printf("\nCache: %s\n", name)
		label.Printf("  entries:  %d / %d\n", s.Entries, s.MaxEntries)
		label.Printf("  size:     %s (budget %d bytes)\n", s.SizeHuman, s.MaxSizeBytes)
		label.Printf("  hit rate: %.1f%% (%d hits, %d misses)\n", s.HitRate*100, s.Hits, s.Misses)
	}
	fmt.Println()
}
