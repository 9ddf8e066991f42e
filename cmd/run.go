package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/fedintake/internal/build"
	"github.com/shaharia-lab/fedintake/internal/config"
	"github.com/shaharia-lab/fedintake/internal/eventbus"
	"github.com/shaharia-lab/fedintake/internal/intake"
	"github.com/shaharia-lab/fedintake/internal/lemmy"
	"github.com/shaharia-lab/fedintake/internal/logger"
	"github.com/shaharia-lab/fedintake/internal/mastodon"
	"github.com/shaharia-lab/fedintake/internal/metrics"
	"github.com/shaharia-lab/fedintake/internal/scheduler"
	"github.com/shaharia-lab/fedintake/internal/server"
)

// NewRunCmd returns the "run" subcommand that starts the bot.
func NewRunCmd() *cobra.Command {
	var logLevel string
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Replay the notification backlog and follow the user stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			// CLI flags override env config.
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}
			return runBot(cfg)
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Minimum log level: debug, info, warn, error (overrides LOG_LEVEL)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Listen address for /health and /metrics, empty to disable (overrides METRICS_ADDR)")

	return cmd
}

func runBot(cfg *config.AppConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sysLogger, closer, err := logger.NewSystemLogger(cfg.LogFile, cfg.SlogLevel())
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer closer.Close() //nolint:errcheck

	sysLogger.Info("fedintake starting",
		slog.String("origin", cfg.OriginHost),
		slog.String("board", cfg.BoardHost),
		slog.Int("community_id", cfg.BoardCommunityID),
		slog.String("tag", cfg.EventTag),
		slog.String("version", build.Version),
		slog.String("commit", build.CommitSHA),
		slog.String("build_date", build.BuildDate),
	)

	recorder := metrics.New()
	bus := eventbus.New(0, sysLogger)
	defer bus.Close()
	bus.Subscribe(recorder.Listener())

	orch := intake.New(intake.Config{
		App:    cfg,
		Origin: mastodon.NewClient(cfg.OriginBaseURL(), cfg.OriginToken),
		Board:  lemmy.NewClient(cfg.BoardBaseURL(), cfg.BoardToken),
		Events: bus,
		Logger: sysLogger,
	})

	sched, err := scheduler.New(scheduler.Config{
		Engine:         orch.Window(),
		Logger:         sysLogger,
		Observer:       recorder,
		EventPublisher: bus,
	})
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			sysLogger.Warn("scheduler shutdown failed", "error", err)
		}
	}()

	if cfg.MetricsAddr != "" {
		ready := func() bool {
			_, seen := sched.Current()
			return seen
		}
		srv := server.New(cfg.MetricsAddr, recorder.Handler(), ready, sysLogger)
		go func() {
			if err := srv.Run(ctx); err != nil {
				sysLogger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	// Subscribe before replaying so live notifications queue behind the backlog.
	streamer := mastodon.NewStreamer(cfg.OriginBaseURL(), cfg.OriginToken, sysLogger)
	events := streamer.Subscribe(ctx)

	if err := orch.Run(ctx, events); err != nil {
		return fmt.Errorf("running intake: %w", err)
	}
	sysLogger.Info("fedintake stopped")
	return nil
}
