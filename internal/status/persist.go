package status

import (
	"encoding/json"
	"os"
	"path/filepath"

	xerrors "github.com/Iron-Ham/xcstatus/internal/errors"
)

const (
	// StatusFileName is the persisted snapshot consumed by out-of-process
	// readers (statusline, prompt hooks).
	StatusFileName = "xcode_statusline_logs.json"
	// ContextFileName holds statusline settings such as the enabled flag.
	ContextFileName = "statusline_context.json"
)

// Writer persists snapshots as JSON into a configured directory. A Writer
// with an empty Dir is disabled and silently drops writes; unset persistence
// is a supported configuration, not an error.
type Writer struct {
	// Dir is the target directory; created on first write.
	Dir string
}

// NewWriter creates a Writer for dir. An empty dir disables persistence.
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir}
}

// Enabled reports whether persistence is configured.
func (w *Writer) Enabled() bool {
	return w.Dir != ""
}

// Write persists the snapshot, replacing any previous file. The data lands
// in a temp file first and is renamed into place, so the statusline and
// prompt hooks reading concurrently never see partial JSON.
func (w *Writer) Write(snap Snapshot) error {
	if !w.Enabled() {
		return nil
	}
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return xerrors.Wrap(err, "creating status directory")
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return xerrors.Wrap(err, "encoding snapshot")
	}

	tmp, err := os.CreateTemp(w.Dir, StatusFileName+".tmp-")
	if err != nil {
		return xerrors.Wrap(err, "creating status temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return xerrors.Wrap(err, "writing status file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return xerrors.Wrap(err, "writing status file")
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return xerrors.Wrap(err, "setting status file mode")
	}
	if err := os.Rename(tmp.Name(), filepath.Join(w.Dir, StatusFileName)); err != nil {
		os.Remove(tmp.Name())
		return xerrors.Wrap(err, "replacing status file")
	}
	return nil
}

// ReadFile loads the persisted snapshot from dir.
func ReadFile(dir string) (Snapshot, error) {
	var snap Snapshot
	data, err := os.ReadFile(filepath.Join(dir, StatusFileName))
	if err != nil {
		return snap, xerrors.NewNotFoundError("status file", dir)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, xerrors.Wrap(err, "decoding status file")
	}
	return snap, nil
}

// contextFile is the statusline settings document. Unknown keys written by
// other tools are preserved across updates.
type contextFile map[string]any

// SetEnabled persists the statusline enabled flag into the context file,
// preserving any other settings already present.
func SetEnabled(dir string, enabled bool) error {
	if dir == "" {
		return xerrors.New("statusline directory not configured")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return xerrors.Wrap(err, "creating status directory")
	}

	path := filepath.Join(dir, ContextFileName)
	doc := contextFile{}
	if data, err := os.ReadFile(path); err == nil {
		// Corrupt settings are replaced rather than failing the toggle.
		_ = json.Unmarshal(data, &doc)
	}
	doc["enabled"] = enabled

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return xerrors.Wrap(err, "encoding settings")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return xerrors.Wrap(err, "writing settings")
	}
	return nil
}

// Enabled reports whether the statusline is enabled for dir. A missing or
// unreadable context file means enabled; only an explicit false disables.
func Enabled(dir string) bool {
	if dir == "" {
		return true
	}
	data, err := os.ReadFile(filepath.Join(dir, ContextFileName))
	if err != nil {
		return true
	}
	var doc contextFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return true
	}
	if v, ok := doc["enabled"].(bool); ok {
		return v
	}
	return true
}
