package status

import (
	"context"
	"strings"
	"time"

	"github.com/Iron-Ham/xcstatus/internal/derived"
	xerrors "github.com/Iron-Ham/xcstatus/internal/errors"
	"github.com/Iron-Ham/xcstatus/internal/ide"
	"github.com/Iron-Ham/xcstatus/internal/logging"
)

// titleSeparator splits an Xcode window title into project and file parts.
const titleSeparator = " — "

// Aggregator combines the IDE accessors, the DerivedData resolver, the log
// store, and the error extractor into one snapshot per pass. Every step is
// failure-isolated: a failing collaborator degrades its own fields to their
// defaults and the pass continues.
type Aggregator struct {
	IDE       ide.Accessor
	Resolver  *derived.Resolver
	Extractor *derived.Extractor
	Locator   *FileLocator
	Logger    *logging.Logger

	// ActiveThreshold is handed to the per-directory log store.
	ActiveThreshold time.Duration
	// ScriptTimeout bounds the active-project query.
	ScriptTimeout time.Duration
	// ShortScriptTimeout bounds window-title and document queries.
	ShortScriptTimeout time.Duration

	// LastKnown supplies the previous snapshot for manifest-unreadable
	// fallback. Typically the cache's Get method.
	LastKnown func() Snapshot

	now func() time.Time
}

// NewAggregator wires an Aggregator with its collaborators.
func NewAggregator(accessor ide.Accessor, resolver *derived.Resolver, extractor *derived.Extractor, locator *FileLocator, logger *logging.Logger) *Aggregator {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Aggregator{
		IDE:                accessor,
		Resolver:           resolver,
		Extractor:          extractor,
		Locator:            locator,
		Logger:             logger.WithComponent("aggregator"),
		ActiveThreshold:    5 * time.Minute,
		ScriptTimeout:      5 * time.Second,
		ShortScriptTimeout: 2 * time.Second,
		now:                time.Now,
	}
}

// ComputeSnapshot runs one aggregation pass. It never fails; whatever could
// not be determined is left at its zero value in the returned snapshot.
func (a *Aggregator) ComputeSnapshot(ctx context.Context) Snapshot {
	snap := Snapshot{
		BuildStatus: BuildIdle,
		Errors:      []string{},
		Timestamp:   a.now(),
	}

	runCtx, cancel := context.WithTimeout(ctx, a.ShortScriptTimeout)
	running := a.IDE.IsRunning(runCtx)
	cancel()
	snap.XcodeRunning = running
	if !running {
		return snap
	}

	titleCtx, cancel := context.WithTimeout(ctx, a.ShortScriptTimeout)
	title := a.IDE.WindowTitle(titleCtx)
	cancel()
	snap.ProjectName, snap.CurrentFile = splitTitle(title)

	projCtx, cancel := context.WithTimeout(ctx, a.ScriptTimeout)
	projectPath := a.IDE.ActiveProjectPath(projCtx)
	cancel()

	buildDir, err := a.Resolver.Resolve(projectPath)
	switch {
	case err == nil:
		snap.ProjectPath = buildDir.WorkspacePath
		a.fillBuildState(&snap, buildDir)
	case xerrors.IsNotFound(err):
		// No build data is an idle report, not an error.
	default:
		a.Logger.Debug("project resolution failed", "error", err)
	}

	snap.CurrentFilePath = a.locateCurrentFile(ctx, snap)

	return snap
}

// fillBuildState reads the build-log manifest for the resolved directory and
// sets the build status, error count, and detailed errors.
func (a *Aggregator) fillBuildState(snap *Snapshot, buildDir *derived.BuildOutputDir) {
	store := derived.NewLogStore(buildDir.Path, a.ActiveThreshold)

	inProgress, err := store.InProgress()
	if err != nil {
		// Unreadable manifest: keep the last-known build fields rather than
		// flapping to idle mid-build.
		a.Logger.Debug("manifest unreadable", "dir", buildDir.Path, "error", err)
		if a.LastKnown != nil {
			prev := a.LastKnown()
			snap.BuildStatus = prev.BuildStatus
			snap.ErrorCount = prev.ErrorCount
			snap.Errors = prev.Errors
		}
		return
	}
	if inProgress {
		snap.BuildStatus = BuildStarted
		return
	}

	run, err := store.LatestRun()
	if err != nil {
		// No completed runs means idle; the unreadable case was caught above.
		return
	}

	snap.BuildStatus = FromRunStatus(run.Status)
	if run.Status != derived.StatusFailed {
		return
	}

	errors, err := a.Extractor.Extract(store.ArtifactPath(run))
	if err != nil {
		a.Logger.Debug("build artifact unreadable", "error", err)
	}
	if len(errors) > 0 {
		snap.Errors = errors
		snap.ErrorCount = len(errors)
	} else {
		// Artifact missing or undecodable: fall back to the manifest's
		// coarse count so the failure is still visible.
		snap.ErrorCount = run.ErrorCount
	}
}

// locateCurrentFile resolves the window title's file name to a path within
// the project tree, falling back to the IDE's document accessor.
func (a *Aggregator) locateCurrentFile(ctx context.Context, snap Snapshot) string {
	if snap.CurrentFile != "" && snap.ProjectPath != "" && a.Locator != nil {
		projectName := derived.ProjectName(snap.ProjectPath)
		if path := a.Locator.Locate(ctx, snap.ProjectPath, projectName, snap.CurrentFile); path != "" {
			return path
		}
	}

	docCtx, cancel := context.WithTimeout(ctx, a.ShortScriptTimeout)
	docPath := a.IDE.ActiveDocumentPath(docCtx)
	cancel()
	if docPath != "" && !isProjectBundle(docPath) {
		return docPath
	}
	return ""
}

// splitTitle parses "Project — File.swift" window titles. Titles without the
// separator yield empty parts.
func splitTitle(title string) (project, file string) {
	if !strings.Contains(title, titleSeparator) {
		return "", ""
	}
	parts := strings.Split(title, titleSeparator)
	return parts[0], parts[len(parts)-1]
}

// isProjectBundle reports whether a path points at a workspace or project
// bundle rather than a source file.
func isProjectBundle(path string) bool {
	for _, ext := range derived.ProjectExtensions {
		if strings.Contains(path, ext) {
			return true
		}
	}
	return false
}
