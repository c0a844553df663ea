package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "server.port")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateServer()...)
	errors = append(errors, c.validateXcode()...)
	errors = append(errors, c.validateBuild()...)
	errors = append(errors, c.validateExtract()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateServer() []ValidationError {
	var errors []ValidationError

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "server.port",
			Value:   c.Server.Port,
			Message: "must be between 1 and 65535",
		})
	}
	if c.Server.UpdateTimeoutMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "server.update_timeout_ms",
			Value:   c.Server.UpdateTimeoutMs,
			Message: "must be non-negative",
		})
	}

	return errors
}

func (c *Config) validateXcode() []ValidationError {
	var errors []ValidationError

	if c.Xcode.ProcessName == "" {
		errors = append(errors, ValidationError{
			Field:   "xcode.process_name",
			Value:   c.Xcode.ProcessName,
			Message: "must not be empty",
		})
	}
	if c.Xcode.DerivedDataDir == "" {
		errors = append(errors, ValidationError{
			Field:   "xcode.derived_data_dir",
			Value:   c.Xcode.DerivedDataDir,
			Message: "must not be empty",
		})
	}
	if c.Xcode.ScriptTimeoutMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "xcode.script_timeout_ms",
			Value:   c.Xcode.ScriptTimeoutMs,
			Message: "must be positive",
		})
	}
	if c.Xcode.ShortScriptTimeoutMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "xcode.short_script_timeout_ms",
			Value:   c.Xcode.ShortScriptTimeoutMs,
			Message: "must be positive",
		})
	}
	if c.Xcode.FindTimeoutMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "xcode.find_timeout_ms",
			Value:   c.Xcode.FindTimeoutMs,
			Message: "must be positive",
		})
	}

	return errors
}

func (c *Config) validateBuild() []ValidationError {
	var errors []ValidationError

	if c.Build.ActiveThresholdSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "build.active_threshold_seconds",
			Value:   c.Build.ActiveThresholdSeconds,
			Message: "must be positive",
		})
	}
	if c.Build.PollIntervalMs < 100 {
		errors = append(errors, ValidationError{
			Field:   "build.poll_interval_ms",
			Value:   c.Build.PollIntervalMs,
			Message: "must be at least 100",
		})
	}
	if c.Build.RescanIntervalSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "build.rescan_interval_seconds",
			Value:   c.Build.RescanIntervalSeconds,
			Message: "must be positive",
		})
	}

	return errors
}

func (c *Config) validateExtract() []ValidationError {
	var errors []ValidationError

	if c.Extract.MaxErrorLength <= 0 {
		errors = append(errors, ValidationError{
			Field:   "extract.max_error_length",
			Value:   c.Extract.MaxErrorLength,
			Message: "must be positive",
		})
	}
	if c.Extract.MaxErrors < 0 {
		errors = append(errors, ValidationError{
			Field:   "extract.max_errors",
			Value:   c.Extract.MaxErrors,
			Message: "must be non-negative (0 = unlimited)",
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}
	if c.Logging.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be non-negative",
		})
	}
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
