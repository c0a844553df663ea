package config

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete xcstatus configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Xcode      XcodeConfig      `mapstructure:"xcode"`
	Build      BuildConfig      `mapstructure:"build"`
	Extract    ExtractConfig    `mapstructure:"extract"`
	Statusline StatuslineConfig `mapstructure:"statusline"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig controls the local monitor server
type ServerConfig struct {
	// Host is the listen address. Loopback only; exposing the status server
	// beyond localhost is not supported.
	Host string `mapstructure:"host"`
	// Port is the listen port (default: 8765)
	Port int `mapstructure:"port"`
	// UpdateTimeoutMs is the timeout for watcher POSTs to /update (default: 1000)
	UpdateTimeoutMs int `mapstructure:"update_timeout_ms"`
}

// XcodeConfig controls how the IDE and its build output are located
type XcodeConfig struct {
	// ProcessName is the IDE process checked via pgrep (default: "Xcode")
	ProcessName string `mapstructure:"process_name"`
	// DerivedDataDir is the build-output root. Supports ~ expansion.
	// Default: ~/Library/Developer/Xcode/DerivedData
	DerivedDataDir string `mapstructure:"derived_data_dir"`
	// ScriptTimeoutMs bounds osascript project-path queries (default: 5000)
	ScriptTimeoutMs int `mapstructure:"script_timeout_ms"`
	// ShortScriptTimeoutMs bounds window-title and document queries (default: 2000)
	ShortScriptTimeoutMs int `mapstructure:"short_script_timeout_ms"`
	// FindTimeoutMs bounds the project-tree search for the current file (default: 3000)
	FindTimeoutMs int `mapstructure:"find_timeout_ms"`
}

// BuildConfig controls build-state resolution
type BuildConfig struct {
	// ActiveThresholdSeconds is how recently a run without a stop time must
	// have started to count as in progress. The 300s default is a heuristic
	// and misclassifies very long builds as idle; raise it for projects with
	// slow full builds.
	ActiveThresholdSeconds int `mapstructure:"active_threshold_seconds"`
	// PollIntervalMs is the interval between aggregation passes when polling
	// rather than watching (default: 1000)
	PollIntervalMs int `mapstructure:"poll_interval_ms"`
	// RescanIntervalSeconds is how often the watcher re-resolves the active
	// project while watching a build-logs directory (default: 10)
	RescanIntervalSeconds int `mapstructure:"rescan_interval_seconds"`
}

// ExtractConfig controls error extraction from log artifacts
type ExtractConfig struct {
	// MaxErrorLength caps a single extracted error string (default: 500)
	MaxErrorLength int `mapstructure:"max_error_length"`
	// MaxErrors caps how many errors one pass reports; 0 means unlimited
	MaxErrors int `mapstructure:"max_errors"`
}

// StatuslineConfig controls statusline output and status persistence
type StatuslineConfig struct {
	// LogsDir is the directory (relative to $HOME unless absolute) where the
	// status JSON and context file are written. Empty disables persistence
	// and makes the statusline render its "not configured" state.
	LogsDir string `mapstructure:"logs_dir"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8765,
			UpdateTimeoutMs: 1000,
		},
		Xcode: XcodeConfig{
			ProcessName:          "Xcode",
			DerivedDataDir:       "~/Library/Developer/Xcode/DerivedData",
			ScriptTimeoutMs:      5000,
			ShortScriptTimeoutMs: 2000,
			FindTimeoutMs:        3000,
		},
		Build: BuildConfig{
			ActiveThresholdSeconds: 300,
			PollIntervalMs:         1000,
			RescanIntervalSeconds:  10,
		},
		Extract: ExtractConfig{
			MaxErrorLength: 500,
			MaxErrors:      0,
		},
		Statusline: StatuslineConfig{
			LogsDir: "",
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// UpdateTimeout returns the watcher POST timeout as a time.Duration
func (c *ServerConfig) UpdateTimeout() time.Duration {
	return time.Duration(c.UpdateTimeoutMs) * time.Millisecond
}

// Addr returns the host:port listen address
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ScriptTimeout returns the osascript timeout as a time.Duration
func (c *XcodeConfig) ScriptTimeout() time.Duration {
	return time.Duration(c.ScriptTimeoutMs) * time.Millisecond
}

// ShortScriptTimeout returns the short osascript timeout as a time.Duration
func (c *XcodeConfig) ShortScriptTimeout() time.Duration {
	return time.Duration(c.ShortScriptTimeoutMs) * time.Millisecond
}

// FindTimeout returns the file-search timeout as a time.Duration
func (c *XcodeConfig) FindTimeout() time.Duration {
	return time.Duration(c.FindTimeoutMs) * time.Millisecond
}

// ResolveDerivedDataDir returns DerivedDataDir with ~ expanded.
func (c *XcodeConfig) ResolveDerivedDataDir() string {
	return expandHome(c.DerivedDataDir)
}

// ActiveThreshold returns the in-progress window as a time.Duration
func (c *BuildConfig) ActiveThreshold() time.Duration {
	return time.Duration(c.ActiveThresholdSeconds) * time.Second
}

// PollInterval returns the polling interval as a time.Duration
func (c *BuildConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// RescanInterval returns the project rescan interval as a time.Duration
func (c *BuildConfig) RescanInterval() time.Duration {
	return time.Duration(c.RescanIntervalSeconds) * time.Second
}

// ResolveLogsDir returns the persistence directory, or "" when persistence
// is disabled. Relative paths are resolved under the user's home directory,
// matching how the statusline consumer locates the file.
func (c *StatuslineConfig) ResolveLogsDir() string {
	if c.LogsDir == "" {
		return ""
	}
	path := expandHome(c.LogsDir)
	if !filepath.IsAbs(path) {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path)
		}
	}
	return path
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			return home
		}
	}
	return path
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Server defaults
	viper.SetDefault("server.host", defaults.Server.Host)
	viper.SetDefault("server.port", defaults.Server.Port)
	viper.SetDefault("server.update_timeout_ms", defaults.Server.UpdateTimeoutMs)

	// Xcode defaults
	viper.SetDefault("xcode.process_name", defaults.Xcode.ProcessName)
	viper.SetDefault("xcode.derived_data_dir", defaults.Xcode.DerivedDataDir)
	viper.SetDefault("xcode.script_timeout_ms", defaults.Xcode.ScriptTimeoutMs)
	viper.SetDefault("xcode.short_script_timeout_ms", defaults.Xcode.ShortScriptTimeoutMs)
	viper.SetDefault("xcode.find_timeout_ms", defaults.Xcode.FindTimeoutMs)

	// Build defaults
	viper.SetDefault("build.active_threshold_seconds", defaults.Build.ActiveThresholdSeconds)
	viper.SetDefault("build.poll_interval_ms", defaults.Build.PollIntervalMs)
	viper.SetDefault("build.rescan_interval_seconds", defaults.Build.RescanIntervalSeconds)

	// Extract defaults
	viper.SetDefault("extract.max_error_length", defaults.Extract.MaxErrorLength)
	viper.SetDefault("extract.max_errors", defaults.Extract.MaxErrors)

	// Statusline defaults
	viper.SetDefault("statusline.logs_dir", defaults.Statusline.LogsDir)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "xcstatus")
	}
	// Fall back to ~/.config/xcstatus
	home, err := os.UserHomeDir()
	if err != nil {
		return ".xcstatus"
	}
	return filepath.Join(home, ".config", "xcstatus")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
