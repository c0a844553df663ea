package cmd

import (
	"path/filepath"

	"github.com/Iron-Ham/xcstatus/internal/config"
	"github.com/Iron-Ham/xcstatus/internal/derived"
	"github.com/Iron-Ham/xcstatus/internal/ide"
	"github.com/Iron-Ham/xcstatus/internal/logging"
	"github.com/Iron-Ham/xcstatus/internal/server"
	"github.com/Iron-Ham/xcstatus/internal/status"
)

// newLogger builds the process logger from config. Long-running commands log
// to a rotated file under the config directory; disabled logging gets a nop.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.Nop(), nil
	}
	path := filepath.Join(config.ConfigDir(), "xcstatus.log")
	return logging.NewFile(path, cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
}

// newAggregator wires a fully configured aggregation pipeline.
func newAggregator(cfg *config.Config, logger *logging.Logger) *status.Aggregator {
	agg := status.NewAggregator(
		ide.NewDarwin(cfg.Xcode.ProcessName),
		derived.NewResolver(cfg.Xcode.ResolveDerivedDataDir()),
		derived.NewExtractor(cfg.Extract.MaxErrorLength, cfg.Extract.MaxErrors),
		status.NewFileLocator(cfg.Xcode.FindTimeout()),
		logger,
	)
	agg.ActiveThreshold = cfg.Build.ActiveThreshold()
	agg.ScriptTimeout = cfg.Xcode.ScriptTimeout()
	agg.ShortScriptTimeout = cfg.Xcode.ShortScriptTimeout()
	return agg
}

// serverURL is the base URL clients use to reach the local status server.
func serverURL(cfg *config.Config) string {
	return "http://" + cfg.Server.Addr()
}

// newStatusClient builds a client for the local status server.
func newStatusClient(cfg *config.Config) *server.Client {
	return server.NewClient(serverURL(cfg), cfg.Server.UpdateTimeout())
}
