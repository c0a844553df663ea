package derived

import (
	"os"
	"path/filepath"
	"time"

	"howett.net/plist"

	xerrors "github.com/Iron-Ham/xcstatus/internal/errors"
)

// ManifestName is the build-log index file within a build-logs directory.
const ManifestName = "LogStoreManifest.plist"

// buildLogsSubdir is where Xcode keeps build logs inside a BuildOutputDir.
var buildLogsSubdir = filepath.Join("Logs", "Build")

// RunStatus classifies the outcome of one build run.
type RunStatus string

const (
	StatusSucceeded RunStatus = "succeeded"
	StatusFailed    RunStatus = "failed"
	StatusWarning   RunStatus = "warning"
	StatusUnknown   RunStatus = "unknown"
)

// Run is one build invocation's recorded metadata from the manifest.
type Run struct {
	// ID is the manifest key for this run.
	ID string
	// StartedAt is when recording began.
	StartedAt time.Time
	// StoppedAt is when recording ended; zero while the run is still open.
	StoppedAt time.Time
	// Status is the run outcome.
	Status RunStatus
	// ErrorCount is the manifest's coarse error total.
	ErrorCount int
	// LogFileName names the detailed log artifact, relative to the
	// build-logs directory.
	LogFileName string
}

// Finished reports whether the run has a recorded stop time.
func (r *Run) Finished() bool {
	return !r.StoppedAt.IsZero()
}

// manifestDoc mirrors the LogStoreManifest.plist structure.
type manifestDoc struct {
	Logs map[string]manifestEntry `plist:"logs"`
}

type manifestEntry struct {
	TimeStartedRecording float64            `plist:"timeStartedRecording"`
	TimeStoppedRecording float64            `plist:"timeStoppedRecording"`
	PrimaryObservable    manifestObservable `plist:"primaryObservable"`
	FileName             string             `plist:"fileName"`
}

type manifestObservable struct {
	HighLevelStatus     string `plist:"highLevelStatus"`
	TotalNumberOfErrors int    `plist:"totalNumberOfErrors"`
}

// LogStore reads build runs from a build-output directory's log manifest.
// The zero value is not usable; construct with NewLogStore.
type LogStore struct {
	// Dir is the build-output directory (not the Logs/Build subdirectory).
	Dir string
	// ActiveThreshold is how recently an unstopped run must have started to
	// count as in progress. This is a heuristic: builds running longer than
	// the threshold are misreported as idle.
	ActiveThreshold time.Duration

	now func() time.Time
}

// NewLogStore creates a LogStore over a build-output directory.
func NewLogStore(dir string, activeThreshold time.Duration) *LogStore {
	return &LogStore{
		Dir:             dir,
		ActiveThreshold: activeThreshold,
		now:             time.Now,
	}
}

// BuildLogsDir returns the directory holding the manifest and log artifacts.
func (s *LogStore) BuildLogsDir() string {
	return filepath.Join(s.Dir, buildLogsSubdir)
}

// ManifestPath returns the path of the manifest file.
func (s *LogStore) ManifestPath() string {
	return filepath.Join(s.BuildLogsDir(), ManifestName)
}

// ArtifactPath resolves a run's log artifact to an absolute path.
func (s *LogStore) ArtifactPath(run *Run) string {
	if run == nil || run.LogFileName == "" {
		return ""
	}
	return filepath.Join(s.BuildLogsDir(), run.LogFileName)
}

// InProgress reports whether any run has no stop time and a start time
// within the active threshold. When several qualify only the most recent is
// considered, but the boolean answer is the same either way.
func (s *LogStore) InProgress() (bool, error) {
	runs, err := s.runs()
	if err != nil {
		return false, err
	}

	cutoff := s.now().Add(-s.ActiveThreshold)
	for _, run := range runs {
		if !run.Finished() && run.StartedAt.After(cutoff) {
			return true, nil
		}
	}
	return false, nil
}

// LatestRun returns the completed run with the maximum stop time.
// Returns ErrNoCompletedRun when the manifest holds no finished runs, and
// ErrManifestUnreadable when the manifest is missing or corrupt.
func (s *LogStore) LatestRun() (*Run, error) {
	runs, err := s.runs()
	if err != nil {
		return nil, err
	}

	var latest *Run
	for _, run := range runs {
		if !run.Finished() {
			continue
		}
		if latest == nil || run.StoppedAt.After(latest.StoppedAt) {
			r := run
			latest = &r
		}
	}
	if latest == nil {
		return nil, xerrors.ErrNoCompletedRun
	}
	return latest, nil
}

// runs decodes the manifest into Run values.
func (s *LogStore) runs() ([]Run, error) {
	data, err := os.ReadFile(s.ManifestPath())
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrManifestUnreadable, "reading manifest")
	}

	var doc manifestDoc
	if _, err := plist.Unmarshal(data, &doc); err != nil {
		return nil, xerrors.Wrap(xerrors.ErrManifestUnreadable, "decoding manifest")
	}

	runs := make([]Run, 0, len(doc.Logs))
	for id, entry := range doc.Logs {
		runs = append(runs, Run{
			ID:          id,
			StartedAt:   unixTime(entry.TimeStartedRecording),
			StoppedAt:   unixTime(entry.TimeStoppedRecording),
			Status:      statusFromCode(entry.PrimaryObservable.HighLevelStatus),
			ErrorCount:  entry.PrimaryObservable.TotalNumberOfErrors,
			LogFileName: entry.FileName,
		})
	}
	return runs, nil
}

// statusFromCode maps the manifest's single-letter status to a RunStatus.
// An absent code means the run recorded no failures.
func statusFromCode(code string) RunStatus {
	switch code {
	case "S", "":
		return StatusSucceeded
	case "E":
		return StatusFailed
	case "W":
		return StatusWarning
	default:
		return StatusUnknown
	}
}

// unixTime converts the manifest's fractional seconds to a time.Time.
// A zero value stays the zero time.
func unixTime(seconds float64) time.Time {
	if seconds == 0 {
		return time.Time{}
	}
	sec := int64(seconds)
	nsec := int64((seconds - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
