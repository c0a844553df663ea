package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/xcstatus/internal/config"
	"github.com/Iron-Ham/xcstatus/internal/render"
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Print the Xcode context block for prompt hooks",
	Long: `Render the persisted status file as a tagged plain-text block
(<xcode-context>…</xcode-context>) suitable for injecting into prompt
hooks. Missing state is described inside the block, never as an error.`,
	RunE: runContext,
}

func init() {
	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), render.ContextBlock(cfg.Statusline.ResolveLogsDir()))
	return nil
}
