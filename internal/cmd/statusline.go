package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/xcstatus/internal/config"
	"github.com/Iron-Ham/xcstatus/internal/render"
	"github.com/Iron-Ham/xcstatus/internal/status"
)

var statuslineCmd = &cobra.Command{
	Use:   "statusline",
	Short: "Print the one-line build status",
	Long: `Print the current Xcode build status as a single colored line with
terminal hyperlinks, for embedding in a prompt or statusline. Reads the
running server when available, otherwise runs one aggregation pass.`,
	RunE: runStatusline,
}

func init() {
	rootCmd.AddCommand(statuslineCmd)
}

func runStatusline(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	line := render.NewStatusline(cfg.Statusline.ResolveLogsDir()).Render(currentSnapshot(cmd, cfg))
	if line != "" {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}

// currentSnapshot prefers the running server's snapshot and falls back to a
// one-shot aggregation pass when the server is down.
func currentSnapshot(cmd *cobra.Command, cfg *config.Config) status.Snapshot {
	client := newStatusClient(cfg)
	if snap, err := client.GetStatus(cmd.Context()); err == nil {
		return snap
	}

	agg := newAggregator(cfg, nil)
	snap := agg.ComputeSnapshot(cmd.Context())
	// One-shot passes persist too, so the context command sees fresh state
	// even without a server running.
	_ = status.NewWriter(cfg.Statusline.ResolveLogsDir()).Write(snap)
	return snap
}
