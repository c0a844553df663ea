package watch

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/xcstatus/internal/derived"
	xerrors "github.com/Iron-Ham/xcstatus/internal/errors"
	"github.com/Iron-Ham/xcstatus/internal/ide"
	"github.com/Iron-Ham/xcstatus/internal/logging"
	"github.com/Iron-Ham/xcstatus/internal/server"
	"github.com/Iron-Ham/xcstatus/internal/status"
)

// artifactExt is the extension of detailed build-log artifacts.
const artifactExt = ".xcactivitylog"

// Updater posts status updates and answers liveness probes; satisfied by
// server.Client.
type Updater interface {
	PostUpdate(ctx context.Context, update status.Update) error
	Health(ctx context.Context) bool
}

var _ Updater = (*server.Client)(nil)

// BuildWatcher watches the active project's build-logs directory and posts
// status updates the moment Xcode writes them, instead of waiting for the
// next poll tick. A new log artifact means a build just started; a manifest
// write means a run's recorded state changed.
//
// The watched directory follows the active project: a rescan ticker re-resolves
// the project and moves the watch when the user switches workspaces.
type BuildWatcher struct {
	IDE       ide.Accessor
	Resolver  *derived.Resolver
	Extractor *derived.Extractor
	Client    Updater
	Logger    *logging.Logger

	// ActiveThreshold is handed to the log store for in-progress detection.
	ActiveThreshold time.Duration
	// RescanInterval is how often the active project is re-resolved.
	RescanInterval time.Duration
	// ScriptTimeout bounds the active-project query during rescans.
	ScriptTimeout time.Duration

	// store reads the currently watched build-output directory.
	store *derived.LogStore

	// last posted build state, for deduplication.
	lastStatus status.BuildStatus
	lastCount  int
	lastErrors []string
}

// NewBuildWatcher wires a BuildWatcher.
func NewBuildWatcher(accessor ide.Accessor, resolver *derived.Resolver, extractor *derived.Extractor, client Updater, logger *logging.Logger) *BuildWatcher {
	if logger == nil {
		logger = logging.Nop()
	}
	return &BuildWatcher{
		IDE:             accessor,
		Resolver:        resolver,
		Extractor:       extractor,
		Client:          client,
		Logger:          logger.WithComponent("watcher"),
		ActiveThreshold: 5 * time.Minute,
		RescanInterval:  30 * time.Second,
		ScriptTimeout:   5 * time.Second,
	}
}

// Run watches until ctx is cancelled.
func (w *BuildWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return xerrors.Wrap(err, "creating filesystem watcher")
	}
	defer watcher.Close()

	// Updates are dropped while the server is down, so a watcher started
	// before "serve" should say so up front rather than failing quietly.
	if !w.Client.Health(ctx) {
		w.Logger.Warn("status server not responding; updates will fail until it is reachable")
	}

	w.rescan(ctx, watcher)

	rescan := time.NewTicker(w.RescanInterval)
	defer rescan.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-rescan.C:
			w.rescan(ctx, watcher)

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, ev)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.Logger.Warn("watch error", "error", err)
		}
	}
}

// rescan re-resolves the active project and moves the watch to its build-logs
// directory when it changed. Resolution failures leave the current watch in
// place; the project may simply be closed right now.
func (w *BuildWatcher) rescan(ctx context.Context, watcher *fsnotify.Watcher) {
	projCtx, cancel := context.WithTimeout(ctx, w.ScriptTimeout)
	projectPath := w.IDE.ActiveProjectPath(projCtx)
	cancel()

	buildDir, err := w.Resolver.Resolve(projectPath)
	if err != nil {
		if !xerrors.IsNotFound(err) {
			w.Logger.Debug("project resolution failed", "error", err)
		}
		return
	}

	store := derived.NewLogStore(buildDir.Path, w.ActiveThreshold)
	logsDir := store.BuildLogsDir()
	if w.store != nil && w.store.BuildLogsDir() == logsDir {
		return
	}

	if w.store != nil {
		_ = watcher.Remove(w.store.BuildLogsDir())
	}
	if err := watcher.Add(logsDir); err != nil {
		// The directory appears only after the first build; the next rescan
		// picks it up.
		w.Logger.Debug("cannot watch build logs yet", "dir", logsDir, "error", err)
		w.store = nil
		return
	}

	w.store = store
	w.Logger.Info("watching build logs", "dir", logsDir)

	// Post the current recorded state so a watcher started mid-session does
	// not wait for the next build.
	w.postRecordedState(ctx)
}

// handleEvent reacts to one filesystem event in the watched directory.
func (w *BuildWatcher) handleEvent(ctx context.Context, ev fsnotify.Event) {
	if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	name := filepath.Base(ev.Name)
	switch {
	case name == derived.ManifestName:
		// Xcode rewrites the manifest when a run's state changes.
		w.postRecordedState(ctx)
	case strings.HasSuffix(name, artifactExt) && ev.Op&fsnotify.Create != 0:
		// A fresh artifact appears at the moment the build starts, well
		// before the manifest records it.
		w.Logger.Debug("build artifact created", "name", name)
		w.postBuilding(ctx)
	}
}

// postBuilding posts a building status.
func (w *BuildWatcher) postBuilding(ctx context.Context) {
	w.post(ctx, status.BuildStarted, 0, nil)
}

// postRecordedState reads the manifest and posts its current build state.
func (w *BuildWatcher) postRecordedState(ctx context.Context) {
	if w.store == nil {
		return
	}

	inProgress, err := w.store.InProgress()
	if err != nil {
		w.Logger.Debug("manifest unreadable", "error", err)
		return
	}
	if inProgress {
		w.postBuilding(ctx)
		return
	}

	run, err := w.store.LatestRun()
	if err != nil {
		return
	}

	st := status.FromRunStatus(run.Status)
	var errors []string
	count := 0
	if run.Status == derived.StatusFailed {
		var err error
		errors, err = w.Extractor.Extract(w.store.ArtifactPath(run))
		if err != nil {
			w.Logger.Debug("build artifact unreadable", "error", err)
		}
		if len(errors) > 0 {
			count = len(errors)
		} else {
			count = run.ErrorCount
		}
	}
	w.post(ctx, st, count, errors)
}

// post sends the build state to the server, skipping exact repeats of the
// last posted state.
func (w *BuildWatcher) post(ctx context.Context, st status.BuildStatus, count int, errors []string) {
	if errors == nil {
		errors = []string{}
	}
	if st == w.lastStatus && count == w.lastCount && slices.Equal(errors, w.lastErrors) {
		return
	}

	update := status.Update{
		BuildStatus: &st,
		ErrorCount:  &count,
		Errors:      &errors,
	}
	if err := w.Client.PostUpdate(ctx, update); err != nil {
		if xerrors.IsRetryable(err) {
			// The server may simply not be up yet; the state reposts on the
			// next change.
			w.Logger.Debug("server unreachable, update dropped", "status", st, "error", err)
		} else {
			w.Logger.Warn("posting update failed", "status", st, "error", err)
		}
		return
	}

	w.lastStatus = st
	w.lastCount = count
	w.lastErrors = errors
	w.Logger.Info("posted build state", "status", st, "errors", count)
}
