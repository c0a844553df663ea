// Package internal contains integration tests that verify the packages work
// together correctly: the aggregation pipeline feeding the cache, the event
// bus carrying change notifications, and the HTTP server round trip.
package internal

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/xcstatus/internal/derived"
	"github.com/Iron-Ham/xcstatus/internal/event"
	"github.com/Iron-Ham/xcstatus/internal/ide"
	"github.com/Iron-Ham/xcstatus/internal/server"
	"github.com/Iron-Ham/xcstatus/internal/status"
	"github.com/Iron-Ham/xcstatus/internal/testutil"
	"github.com/Iron-Ham/xcstatus/internal/watch"
)

// TestPipelineToServer drives a full pass: fixture DerivedData tree,
// aggregation into the cache, and the snapshot served over HTTP.
func TestPipelineToServer(t *testing.T) {
	root := t.TempDir()
	projPath := testutil.WriteProject(t, filepath.Join(root, "projects"), "MyApp.xcodeproj")
	derivedRoot := filepath.Join(root, "DerivedData")
	buildDir := testutil.WriteBuildOutputDir(t, derivedRoot, "MyApp-integration", projPath)

	now := float64(time.Now().Unix())
	testutil.WriteManifest(t, buildDir, []testutil.ManifestRun{
		{ID: "run-1", Started: now - 60, Stopped: now - 30, StatusCode: "E", ErrorCount: 1, FileName: "run-1.xcactivitylog"},
	})
	testutil.WriteLogArtifact(t, buildDir, "run-1.xcactivitylog",
		"/src/MyApp/Main.swift:1:1: error: something broke\n", true)

	fake := &ide.Fake{Running: true, ProjectPath: projPath, Title: "MyApp — Main.swift"}
	agg := status.NewAggregator(fake, derived.NewResolver(derivedRoot), derived.NewExtractor(500, 0), nil, nil)

	cache := status.NewCache()
	agg.LastKnown = cache.Get
	cache.Set(agg.ComputeSnapshot(context.Background()))

	ts := httptest.NewServer(server.New(cache, event.NewBus(), nil).Handler())
	defer ts.Close()

	client := server.NewClient(ts.URL, time.Second)
	snap, err := client.GetStatus(context.Background())
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}

	if snap.ProjectName != "MyApp" || snap.BuildStatus != status.BuildFailed {
		t.Errorf("served snapshot = %+v, want MyApp failed", snap)
	}
	if len(snap.Errors) != 1 {
		t.Errorf("served errors = %v, want one extracted error", snap.Errors)
	}
}

// TestWatcherUpdatesServer verifies the watcher's client path: an update
// posted to the server lands in the cache and fires exactly one change event.
func TestWatcherUpdatesServer(t *testing.T) {
	cache := status.NewCache()
	bus := event.NewBus()

	var mu sync.Mutex
	var received []status.Snapshot
	bus.Subscribe(event.TypeStatusChanged, func(e event.Event) {
		changed, ok := e.(event.StatusChangedEvent)
		if !ok {
			t.Errorf("unexpected event type %T", e)
			return
		}
		mu.Lock()
		received = append(received, changed.Snapshot)
		mu.Unlock()
	})

	ts := httptest.NewServer(server.New(cache, bus, nil).Handler())
	defer ts.Close()

	client := server.NewClient(ts.URL, time.Second)

	building := status.BuildStarted
	for i := 0; i < 3; i++ {
		if err := client.PostUpdate(context.Background(), status.Update{BuildStatus: &building}); err != nil {
			t.Fatalf("PostUpdate: %v", err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 {
		t.Fatalf("received %d change events for repeated identical updates, want 1", len(received))
	}
	if received[0].BuildStatus != status.BuildStarted {
		t.Errorf("event status = %q, want %q", received[0].BuildStatus, status.BuildStarted)
	}
	if got := cache.Get(); got.BuildStatus != status.BuildStarted {
		t.Errorf("cache status = %q, want %q", got.BuildStatus, status.BuildStarted)
	}
}

// TestPollLoopPersistsThroughBus verifies the serve wiring: poll results
// published on the bus reach a persistence subscriber.
func TestPollLoopPersistsThroughBus(t *testing.T) {
	dir := t.TempDir()
	cache := status.NewCache()
	bus := event.NewBus()
	writer := status.NewWriter(dir)

	bus.Subscribe(event.TypeStatusChanged, func(e event.Event) {
		if changed, ok := e.(event.StatusChangedEvent); ok {
			if err := writer.Write(changed.Snapshot); err != nil {
				t.Errorf("Write: %v", err)
			}
		}
	})

	fake := &ide.Fake{Running: true, Title: "MyApp — Main.swift"}
	agg := status.NewAggregator(fake, derived.NewResolver(t.TempDir()), derived.NewExtractor(500, 0), nil, nil)
	loop := watch.NewPollLoop(agg, cache, bus, nil, nil, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for {
		snap, err := status.ReadFile(dir)
		if err == nil && snap.ProjectName == "MyApp" {
			break
		}
		select {
		case <-deadline:
			cancel()
			t.Fatal("persisted status never appeared")
		case <-time.After(20 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run returned %v, want nil", err)
	}
}
