package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/xcstatus/internal/config"
	"github.com/Iron-Ham/xcstatus/internal/derived"
	"github.com/Iron-Ham/xcstatus/internal/ide"
	"github.com/Iron-Ham/xcstatus/internal/server"
	"github.com/Iron-Ham/xcstatus/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch build logs and push changes to the status server",
	Long: `Watch the active project's build-logs directory with filesystem
notifications and POST build-state changes to the status server the
moment Xcode writes them. Requires a running "xcstatus serve".`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	w := watch.NewBuildWatcher(
		ide.NewDarwin(cfg.Xcode.ProcessName),
		derived.NewResolver(cfg.Xcode.ResolveDerivedDataDir()),
		derived.NewExtractor(cfg.Extract.MaxErrorLength, cfg.Extract.MaxErrors),
		server.NewClient(serverURL(cfg), cfg.Server.UpdateTimeout()),
		logger,
	)
	w.ActiveThreshold = cfg.Build.ActiveThreshold()
	w.RescanInterval = cfg.Build.RescanInterval()
	w.ScriptTimeout = cfg.Xcode.ScriptTimeout()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return w.Run(ctx)
}
