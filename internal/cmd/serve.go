package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Iron-Ham/xcstatus/internal/config"
	"github.com/Iron-Ham/xcstatus/internal/event"
	"github.com/Iron-Ham/xcstatus/internal/server"
	"github.com/Iron-Ham/xcstatus/internal/status"
	"github.com/Iron-Ham/xcstatus/internal/watch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the status server and poll loop",
	Long: `Serve the status HTTP API on the configured loopback address and keep
the cached snapshot fresh with a background poll loop. The persisted
status file is rewritten whenever the snapshot changes.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	cache := status.NewCache()
	bus := event.NewBus()
	writer := status.NewWriter(cfg.Statusline.ResolveLogsDir())

	// Updates arriving over POST /update persist the same way poll results do.
	bus.Subscribe(event.TypeStatusChanged, func(e event.Event) {
		if changed, ok := e.(event.StatusChangedEvent); ok {
			if err := writer.Write(changed.Snapshot); err != nil {
				logger.Warn("persisting status failed", "error", err)
			}
		}
	})
	// Build lifecycle transitions land in the log whether they came from a
	// poll pass or the build watcher.
	bus.Subscribe(event.TypeBuildStarted, func(e event.Event) {
		if started, ok := e.(event.BuildStartedEvent); ok {
			logger.Info("build started", "project", started.ProjectName)
		}
	})
	bus.Subscribe(event.TypeBuildFinished, func(e event.Event) {
		if finished, ok := e.(event.BuildFinishedEvent); ok {
			logger.Info("build finished",
				"project", finished.ProjectName,
				"status", finished.Status,
				"errors", finished.ErrorCount)
		}
	})

	agg := newAggregator(cfg, logger)
	agg.LastKnown = cache.Get

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.New(cache, bus, logger).ListenAndServe(ctx, cfg.Server.Addr())
	})
	g.Go(func() error {
		// The poll loop publishes its own change events, so persistence for
		// poll results comes through the same subscription as HTTP updates.
		return watch.NewPollLoop(agg, cache, bus, nil, logger, cfg.Build.PollInterval()).Run(ctx)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
