package status

import (
	"sync"
	"time"
)

// Update is a partial snapshot merged into the cache by POST /update and by
// the build watcher. Nil fields are left untouched.
type Update struct {
	XcodeRunning    *bool        `json:"xcode_running"`
	ProjectName     *string      `json:"project_name"`
	ProjectPath     *string      `json:"project_path"`
	CurrentFile     *string      `json:"current_file"`
	CurrentFilePath *string      `json:"current_file_path"`
	BuildStatus     *BuildStatus `json:"build_status"`
	ErrorCount      *int         `json:"build_errors"`
	Errors          *[]string    `json:"detailed_errors"`
}

// Cache holds the latest snapshot for concurrent readers and a serialized
// writer. The lock is scoped strictly to the read-or-merge operation; no I/O
// ever happens while it is held. Readers receive copies, so a reader can
// never observe a partially applied update.
type Cache struct {
	mu      sync.RWMutex
	current Snapshot

	now func() time.Time
}

// NewCache creates a Cache holding an idle snapshot.
func NewCache() *Cache {
	c := &Cache{now: time.Now}
	c.current = Snapshot{
		BuildStatus: BuildIdle,
		Timestamp:   c.now(),
	}
	return c
}

// Get returns a copy of the current snapshot.
func (c *Cache) Get() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.clone()
}

// Set replaces the current snapshot wholesale. Returns false — leaving the
// cached snapshot (and its timestamp) untouched — when the new snapshot is
// observably equal to the current one, so downstream consumers see no churn
// from passes that found nothing new.
func (c *Cache) Set(snap Snapshot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current.EqualIgnoringTimestamp(snap) {
		return false
	}
	c.current = snap.clone()
	return true
}

// Merge applies the non-nil fields of u to the current snapshot, bumping its
// timestamp. Returns whether any observable field actually changed.
func (c *Cache) Merge(u Update) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.current.clone()
	if u.XcodeRunning != nil {
		next.XcodeRunning = *u.XcodeRunning
	}
	if u.ProjectName != nil {
		next.ProjectName = *u.ProjectName
	}
	if u.ProjectPath != nil {
		next.ProjectPath = *u.ProjectPath
	}
	if u.CurrentFile != nil {
		next.CurrentFile = *u.CurrentFile
	}
	if u.CurrentFilePath != nil {
		next.CurrentFilePath = *u.CurrentFilePath
	}
	if u.BuildStatus != nil {
		next.BuildStatus = *u.BuildStatus
	}
	if u.ErrorCount != nil {
		next.ErrorCount = *u.ErrorCount
	}
	if u.Errors != nil {
		next.Errors = *u.Errors
	}

	changed := !c.current.EqualIgnoringTimestamp(next)
	next.Timestamp = c.now()
	c.current = next
	return changed
}
