package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/xcstatus/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify xcstatus configuration",
	Long: `View or modify xcstatus configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  xcstatus config set server.port 8765
  xcstatus config set statusline.logs_dir .xcode-status
  xcstatus config set build.active_threshold_seconds 600

Valid keys:
  server.host                     - Status server listen host (loopback)
  server.port                     - Status server listen port
  server.update_timeout_ms        - Watcher POST timeout
  xcode.process_name              - IDE process name checked via pgrep
  xcode.derived_data_dir          - DerivedData root directory
  xcode.script_timeout_ms         - osascript project query timeout
  xcode.short_script_timeout_ms   - osascript title/document query timeout
  xcode.find_timeout_ms           - current-file tree search timeout
  build.active_threshold_seconds  - how recent an unstopped run counts as building
  build.poll_interval_ms          - aggregation poll interval
  build.rescan_interval_seconds   - watcher project rescan interval
  extract.max_error_length        - cap on one extracted error string
  extract.max_errors              - cap on errors per pass (0 = unlimited)
  statusline.logs_dir             - status file directory (relative to $HOME)
  logging.enabled                 - enable file logging (true/false)
  logging.level                   - log level: debug, info, warn, error
  logging.max_size_mb             - log size before rotation
  logging.max_backups             - rotated log files to keep`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/xcstatus/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out)

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Config file: (none - using defaults)\n")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "server:")
	fmt.Fprintf(out, "  host: %s\n", cfg.Server.Host)
	fmt.Fprintf(out, "  port: %d\n", cfg.Server.Port)
	fmt.Fprintf(out, "  update_timeout_ms: %d\n", cfg.Server.UpdateTimeoutMs)

	fmt.Fprintln(out, "xcode:")
	fmt.Fprintf(out, "  process_name: %s\n", cfg.Xcode.ProcessName)
	fmt.Fprintf(out, "  derived_data_dir: %s\n", cfg.Xcode.DerivedDataDir)
	fmt.Fprintf(out, "  script_timeout_ms: %d\n", cfg.Xcode.ScriptTimeoutMs)
	fmt.Fprintf(out, "  short_script_timeout_ms: %d\n", cfg.Xcode.ShortScriptTimeoutMs)
	fmt.Fprintf(out, "  find_timeout_ms: %d\n", cfg.Xcode.FindTimeoutMs)

	fmt.Fprintln(out, "build:")
	fmt.Fprintf(out, "  active_threshold_seconds: %d\n", cfg.Build.ActiveThresholdSeconds)
	fmt.Fprintf(out, "  poll_interval_ms: %d\n", cfg.Build.PollIntervalMs)
	fmt.Fprintf(out, "  rescan_interval_seconds: %d\n", cfg.Build.RescanIntervalSeconds)

	fmt.Fprintln(out, "extract:")
	fmt.Fprintf(out, "  max_error_length: %d\n", cfg.Extract.MaxErrorLength)
	fmt.Fprintf(out, "  max_errors: %d\n", cfg.Extract.MaxErrors)

	fmt.Fprintln(out, "statusline:")
	fmt.Fprintf(out, "  logs_dir: %s\n", cfg.Statusline.LogsDir)

	fmt.Fprintln(out, "logging:")
	fmt.Fprintf(out, "  enabled: %v\n", cfg.Logging.Enabled)
	fmt.Fprintf(out, "  level: %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "  max_size_mb: %d\n", cfg.Logging.MaxSizeMB)
	fmt.Fprintf(out, "  max_backups: %d\n", cfg.Logging.MaxBackups)

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	// Validate the key exists
	validKeys := map[string]string{
		"server.host":                    "string",
		"server.port":                    "int",
		"server.update_timeout_ms":       "int",
		"xcode.process_name":             "string",
		"xcode.derived_data_dir":         "string",
		"xcode.script_timeout_ms":        "int",
		"xcode.short_script_timeout_ms":  "int",
		"xcode.find_timeout_ms":          "int",
		"build.active_threshold_seconds": "int",
		"build.poll_interval_ms":         "int",
		"build.rescan_interval_seconds":  "int",
		"extract.max_error_length":       "int",
		"extract.max_errors":             "int",
		"statusline.logs_dir":            "string",
		"logging.enabled":                "bool",
		"logging.level":                  "string",
		"logging.max_size_mb":            "int",
		"logging.max_backups":            "int",
	}

	keyType, ok := validKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s\nRun 'xcstatus config set --help' to see valid keys", key)
	}

	// Validate the value based on type
	var typedValue interface{}
	switch keyType {
	case "string":
		typedValue = value
	case "bool":
		if value != "true" && value != "false" {
			return fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		typedValue = value == "true"
	case "int":
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if intVal < 0 {
			return fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		typedValue = intVal
	}

	// Ensure config directory exists
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set the value in viper
	viper.Set(key, typedValue)

	// Write to config file
	configFile := config.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, typedValue)
	fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s\n", configFile)

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'xcstatus config set' to modify values", configFile)
	}

	// Create config directory
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Generate a commented config file
	configContent := `# Xcstatus Configuration

# Local status server (loopback only)
server:
  host: 127.0.0.1
  port: 8765
  # Timeout for watcher POSTs to /update, in milliseconds
  update_timeout_ms: 1000

# How the IDE and its build output are located
xcode:
  process_name: Xcode
  derived_data_dir: ~/Library/Developer/Xcode/DerivedData
  script_timeout_ms: 5000
  short_script_timeout_ms: 2000
  find_timeout_ms: 3000

# Build-state resolution
build:
  # How recently a run without a stop time must have started to count as
  # in progress. Raise this for projects with slow full builds.
  active_threshold_seconds: 300
  poll_interval_ms: 1000
  rescan_interval_seconds: 10

# Error extraction from log artifacts
extract:
  max_error_length: 500
  # 0 means unlimited
  max_errors: 0

# Statusline output and status persistence
statusline:
  # Directory (relative to $HOME unless absolute) for the status JSON and
  # context file. Empty disables persistence.
  logs_dir: ""

# Debug logging
logging:
  enabled: true
  level: info
  max_size_mb: 10
  max_backups: 3
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), config.ConfigFile())
	return nil
}
