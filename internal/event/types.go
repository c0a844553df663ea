package event

import (
	"time"

	"github.com/Iron-Ham/xcstatus/internal/status"
)

// Event types published on the bus.
const (
	TypeStatusChanged = "status.changed"
	TypeBuildStarted  = "build.started"
	TypeBuildFinished = "build.finished"
)

// Event is the interface all bus events implement.
type Event interface {
	// EventType returns the type string used for subscription routing.
	EventType() string
	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides the common Event fields.
type baseEvent struct {
	at time.Time
}

func (e baseEvent) Timestamp() time.Time { return e.at }

// StatusChangedEvent is published when an aggregation pass or an inbound
// update produced an observably different snapshot.
type StatusChangedEvent struct {
	baseEvent
	Snapshot status.Snapshot
}

// NewStatusChangedEvent creates a StatusChangedEvent for snap.
func NewStatusChangedEvent(snap status.Snapshot) StatusChangedEvent {
	return StatusChangedEvent{baseEvent: baseEvent{at: time.Now()}, Snapshot: snap}
}

// EventType implements Event.
func (e StatusChangedEvent) EventType() string { return TypeStatusChanged }

// BuildStartedEvent is published when a new build log artifact appears.
type BuildStartedEvent struct {
	baseEvent
	ProjectName string
}

// NewBuildStartedEvent creates a BuildStartedEvent for the named project.
func NewBuildStartedEvent(project string) BuildStartedEvent {
	return BuildStartedEvent{baseEvent: baseEvent{at: time.Now()}, ProjectName: project}
}

// EventType implements Event.
func (e BuildStartedEvent) EventType() string { return TypeBuildStarted }

// BuildFinishedEvent is published when the manifest records a completed run.
type BuildFinishedEvent struct {
	baseEvent
	ProjectName string
	Status      status.BuildStatus
	ErrorCount  int
}

// NewBuildFinishedEvent creates a BuildFinishedEvent.
func NewBuildFinishedEvent(project string, st status.BuildStatus, errorCount int) BuildFinishedEvent {
	return BuildFinishedEvent{
		baseEvent:   baseEvent{at: time.Now()},
		ProjectName: project,
		Status:      st,
		ErrorCount:  errorCount,
	}
}

// EventType implements Event.
func (e BuildFinishedEvent) EventType() string { return TypeBuildFinished }

// TransitionEvents returns the build lifecycle events implied by a change
// from prev to next: a BuildStartedEvent when the status moves into building,
// and a BuildFinishedEvent when it moves into a recorded run outcome. A
// snapshot that changed without moving between build states yields nothing.
func TransitionEvents(prev, next status.Snapshot) []Event {
	if prev.BuildStatus == next.BuildStatus {
		return nil
	}
	var events []Event
	if next.BuildStatus == status.BuildStarted {
		events = append(events, NewBuildStartedEvent(next.ProjectName))
	}
	if isOutcome(next.BuildStatus) {
		events = append(events, NewBuildFinishedEvent(next.ProjectName, next.BuildStatus, next.ErrorCount))
	}
	return events
}

// isOutcome reports whether st is a recorded run outcome.
func isOutcome(st status.BuildStatus) bool {
	switch st {
	case status.BuildSucceeded, status.BuildFailed, status.BuildWarning:
		return true
	}
	return false
}
