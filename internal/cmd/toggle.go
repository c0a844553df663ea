package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/xcstatus/internal/config"
	"github.com/Iron-Ham/xcstatus/internal/status"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle <true|false>",
	Short: "Enable or disable the statusline",
	Long: `Persist the statusline enabled flag. While disabled the statusline
command prints nothing; status aggregation and persistence continue.`,
	Args: cobra.ExactArgs(1),
	RunE: runToggle,
}

func init() {
	rootCmd.AddCommand(toggleCmd)
}

func runToggle(cmd *cobra.Command, args []string) error {
	var enabled bool
	switch args[0] {
	case "true":
		enabled = true
	case "false":
		enabled = false
	default:
		return fmt.Errorf("argument must be \"true\" or \"false\", got %q", args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := status.SetEnabled(cfg.Statusline.ResolveLogsDir(), enabled); err != nil {
		return err
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Statusline %s\n", state)
	return nil
}
