package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/inkwell-labs/mnemosyne/pkg/cache"
	"github.com/inkwell-labs/mnemosyne/pkg/cli/config"
	httpctrl "github.com/inkwell-labs/mnemosyne/pkg/controller/http"
	"github.com/inkwell-labs/mnemosyne/pkg/domain/model"
	"github.com/inkwell-labs/mnemosyne/pkg/service/composer"
	"github.com/inkwell-labs/mnemosyne/pkg/service/embedding"
	"github.com/inkwell-labs/mnemosyne/pkg/service/monitor"
	"github.com/inkwell-labs/mnemosyne/pkg/service/recall"
	"github.com/inkwell-labs/mnemosyne/pkg/service/window"
	"github.com/inkwell-labs/mnemosyne/pkg/usecase"
	"github.com/inkwell-labs/mnemosyne/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var enableMetrics bool
	var appCfg config.App
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var cacheCfg config.Cache
	var recallCfg config.Recall

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("MNEMOSYNE_ADDR"),
			Destination: &addr,
		},
		&cli.BoolFlag{
			Name:        "metrics",
			Usage:       "Expose Prometheus metrics at /metrics",
			Value:       true,
			Sources:     cli.EnvVars("MNEMOSYNE_METRICS"),
			Destination: &enableMetrics,
		},
	}

	// Add shared config flags
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, cacheCfg.Flags()...)
	flags = append(flags, recallCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := appCfg.Configure(); err != nil {
				return goerr.Wrap(err, "failed to load application configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Gemini client")
			}
			if llmClient == nil {
				logging.Default().Warn("Gemini not configured, chat disabled and retrieval degrades to keyword fallback")
			}

			// Window cache under the configured budgets
			windowCache := cache.New[*model.Window]("windows",
				cache.WithMaxSizeBytes[*model.Window](cacheCfg.MaxSizeBytes()),
				cache.WithMaxEntries[*model.Window](cacheCfg.MaxEntries()),
				cache.WithDefaultTTL[*model.Window](cacheCfg.DefaultTTL()),
			)

			sweeper := cache.NewSweeper(cacheCfg.SweepInterval(), cacheCfg.PressureInterval(), windowCache)
			sweeper.Start(ctx)
			defer sweeper.Stop()

			mon := monitor.New(monitor.WithCaches(windowCache))
			mon.Start(ctx)
			defer mon.Stop()

			var embedder *embedding.Gateway
			if client, ok := llmClient.(embedding.Client); ok {
				embedder = embedding.New(client)
			} else {
				embedder = embedding.New(nil)
			}

			recallSvc := recall.New(repo.Memory(), embedder,
				recall.WithConfig(recallCfg.Config()),
				recall.WithRetention(recallCfg.Retention()),
			)

			windowOpts := append(appCfg.WindowOptions(), window.WithCache(windowCache))
			windows := window.New(repo.Message(), windowOpts...)

			composerOpts := []composer.Option{}
			if table := appCfg.MoodTable(); table != nil {
				composerOpts = append(composerOpts, composer.WithMoodTable(table))
			}
			comp := composer.New(recallSvc, windows, composerOpts...)

			ucOpts := []usecase.Option{
				usecase.WithEmbedder(embedder),
				usecase.WithRecall(recallSvc),
				usecase.WithWindows(windows),
				usecase.WithComposer(comp),
				usecase.WithMonitor(mon),
			}
			if llmClient != nil {
				ucOpts = append(ucOpts, usecase.WithLLMClient(llmClient))
			}
			uc := usecase.New(repo, ucOpts...)
			uc.Stats.Register(windowCache)

			httpHandler := httpctrl.New(uc, httpctrl.WithMetrics(enableMetrics))
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr, "metrics", enableMetrics)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
