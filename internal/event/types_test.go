package event

import (
	"testing"

	"github.com/Iron-Ham/xcstatus/internal/status"
)

func TestTransitionEvents(t *testing.T) {
	tests := []struct {
		name string
		prev status.BuildStatus
		next status.BuildStatus
		want []string
	}{
		{"idle to building", status.BuildIdle, status.BuildStarted, []string{TypeBuildStarted}},
		{"building to succeeded", status.BuildStarted, status.BuildSucceeded, []string{TypeBuildFinished}},
		{"building to failed", status.BuildStarted, status.BuildFailed, []string{TypeBuildFinished}},
		{"building to warning", status.BuildStarted, status.BuildWarning, []string{TypeBuildFinished}},
		{"outcome without observed start", status.BuildIdle, status.BuildFailed, []string{TypeBuildFinished}},
		{"same build state", status.BuildStarted, status.BuildStarted, nil},
		{"outcome back to idle", status.BuildFailed, status.BuildIdle, nil},
		{"unknown is not an outcome", status.BuildStarted, status.BuildUnknown, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := status.Snapshot{BuildStatus: tt.prev}
			next := status.Snapshot{ProjectName: "MyApp", BuildStatus: tt.next}

			got := TransitionEvents(prev, next)
			if len(got) != len(tt.want) {
				t.Fatalf("TransitionEvents() returned %d events, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].EventType() != tt.want[i] {
					t.Errorf("event %d type = %q, want %q", i, got[i].EventType(), tt.want[i])
				}
			}
		})
	}
}

func TestTransitionEventsCarryBuildDetails(t *testing.T) {
	prev := status.Snapshot{BuildStatus: status.BuildStarted}
	next := status.Snapshot{ProjectName: "MyApp", BuildStatus: status.BuildFailed, ErrorCount: 3}

	got := TransitionEvents(prev, next)
	if len(got) != 1 {
		t.Fatalf("TransitionEvents() returned %d events, want 1", len(got))
	}
	finished, ok := got[0].(BuildFinishedEvent)
	if !ok {
		t.Fatalf("event is %T, want BuildFinishedEvent", got[0])
	}
	if finished.ProjectName != "MyApp" {
		t.Errorf("ProjectName = %q, want %q", finished.ProjectName, "MyApp")
	}
	if finished.Status != status.BuildFailed {
		t.Errorf("Status = %q, want %q", finished.Status, status.BuildFailed)
	}
	if finished.ErrorCount != 3 {
		t.Errorf("ErrorCount = %d, want 3", finished.ErrorCount)
	}
	if finished.Timestamp().IsZero() {
		t.Error("Timestamp() is zero, want the publish time")
	}
}
