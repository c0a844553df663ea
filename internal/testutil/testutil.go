// Package testutil provides fixture builders for xcstatus tests: fake
// project files, DerivedData trees, and build-log manifests.
package testutil

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"howett.net/plist"
)

// ManifestRun describes one run entry to encode into a fixture manifest.
type ManifestRun struct {
	ID         string
	Started    float64 // unix seconds; 0 omits the key's meaning but stays encoded
	Stopped    float64 // unix seconds; 0 omits the timeStoppedRecording key
	StatusCode string  // "S", "E", "W", or "" to omit
	ErrorCount int
	FileName   string
}

// WriteProject creates a fake project bundle directory and returns its path.
func WriteProject(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("creating project fixture: %v", err)
	}
	return path
}

// WriteBuildOutputDir creates a DerivedData child directory with an
// Info.plist declaring workspacePath, returning the directory path.
func WriteBuildOutputDir(t *testing.T, root, name, workspacePath string) string {
	t.Helper()

	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating build output dir: %v", err)
	}

	info := map[string]any{"WorkspacePath": workspacePath}
	data, err := plist.Marshal(info, plist.XMLFormat)
	if err != nil {
		t.Fatalf("encoding Info.plist: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Info.plist"), data, 0644); err != nil {
		t.Fatalf("writing Info.plist: %v", err)
	}
	return dir
}

// WriteManifest encodes runs into LogStoreManifest.plist under the build
// output directory's Logs/Build subdirectory, creating it as needed.
func WriteManifest(t *testing.T, buildOutputDir string, runs []ManifestRun) string {
	t.Helper()

	logs := make(map[string]any, len(runs))
	for _, run := range runs {
		entry := map[string]any{
			"timeStartedRecording": run.Started,
		}
		if run.Stopped != 0 {
			entry["timeStoppedRecording"] = run.Stopped
		}
		if run.FileName != "" {
			entry["fileName"] = run.FileName
		}
		observable := map[string]any{
			"totalNumberOfErrors": run.ErrorCount,
		}
		if run.StatusCode != "" {
			observable["highLevelStatus"] = run.StatusCode
		}
		entry["primaryObservable"] = observable
		logs[run.ID] = entry
	}

	data, err := plist.Marshal(map[string]any{"logs": logs}, plist.XMLFormat)
	if err != nil {
		t.Fatalf("encoding manifest: %v", err)
	}

	logsDir := filepath.Join(buildOutputDir, "Logs", "Build")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		t.Fatalf("creating build logs dir: %v", err)
	}
	path := filepath.Join(logsDir, "LogStoreManifest.plist")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	return path
}

// WriteLogArtifact writes a log artifact, gzip-compressed when compress is
// true, into the build-logs directory and returns its path.
func WriteLogArtifact(t *testing.T, buildOutputDir, name, content string, compress bool) string {
	t.Helper()

	logsDir := filepath.Join(buildOutputDir, "Logs", "Build")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		t.Fatalf("creating build logs dir: %v", err)
	}

	data := []byte(content)
	if compress {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		if _, err := gz.Write(data); err != nil {
			t.Fatalf("compressing artifact: %v", err)
		}
		if err := gz.Close(); err != nil {
			t.Fatalf("closing gzip writer: %v", err)
		}
		data = buf.Bytes()
	}

	path := filepath.Join(logsDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing artifact: %v", err)
	}
	return path
}
