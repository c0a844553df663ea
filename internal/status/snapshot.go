// Package status defines the status snapshot produced by each aggregation
// pass, the concurrent cache holding the latest snapshot, and the JSON
// persistence consumed by out-of-process readers (statusline, prompt hooks).
package status

import (
	"slices"
	"time"

	"github.com/Iron-Ham/xcstatus/internal/derived"
)

// BuildStatus is the coarse build state shown to consumers.
type BuildStatus string

const (
	BuildIdle      BuildStatus = "idle"
	BuildStarted   BuildStatus = "building"
	BuildSucceeded BuildStatus = "succeeded"
	BuildFailed    BuildStatus = "failed"
	BuildWarning   BuildStatus = "warning"
	BuildUnknown   BuildStatus = "unknown"
)

// FromRunStatus maps a manifest run outcome onto a BuildStatus.
func FromRunStatus(s derived.RunStatus) BuildStatus {
	switch s {
	case derived.StatusSucceeded:
		return BuildSucceeded
	case derived.StatusFailed:
		return BuildFailed
	case derived.StatusWarning:
		return BuildWarning
	default:
		return BuildUnknown
	}
}

// Snapshot is one aggregation pass's view of the IDE and its build state.
// Snapshots are immutable by convention: the aggregator constructs one per
// pass and hands it to the cache, which copies on read. Field names follow
// the wire format the statusline and prompt hooks already consume.
type Snapshot struct {
	XcodeRunning    bool        `json:"xcode_running"`
	ProjectName     string      `json:"project_name"`
	ProjectPath     string      `json:"project_path"`
	CurrentFile     string      `json:"current_file"`
	CurrentFilePath string      `json:"current_file_path"`
	BuildStatus     BuildStatus `json:"build_status"`
	// ErrorCount is the number of build errors; when Errors is populated it
	// equals len(Errors), otherwise it carries the manifest's coarse count.
	ErrorCount int       `json:"build_errors"`
	Errors     []string  `json:"detailed_errors"`
	Timestamp  time.Time `json:"timestamp"`
}

// EqualIgnoringTimestamp reports whether two snapshots agree on every
// observable field. The timestamp is excluded so a pass that observed
// nothing new is not treated as a change.
func (s Snapshot) EqualIgnoringTimestamp(o Snapshot) bool {
	return s.XcodeRunning == o.XcodeRunning &&
		s.ProjectName == o.ProjectName &&
		s.ProjectPath == o.ProjectPath &&
		s.CurrentFile == o.CurrentFile &&
		s.CurrentFilePath == o.CurrentFilePath &&
		s.BuildStatus == o.BuildStatus &&
		s.ErrorCount == o.ErrorCount &&
		slices.Equal(s.Errors, o.Errors)
}

// clone returns a copy of the snapshot with its own Errors slice.
func (s Snapshot) clone() Snapshot {
	out := s
	out.Errors = slices.Clone(s.Errors)
	return out
}
