// Package ide abstracts the environment-specific queries against the IDE:
// process presence, the active project path, the frontmost window title, and
// the open document path. The pipeline treats all four as opaque strings and
// never interprets them beyond the contracts documented here.
package ide

import "context"

// Accessor exposes the IDE state the pipeline consumes.
//
// Every method is a best-effort external call: implementations must bound
// their work with the supplied context and return an empty value (or false)
// on failure rather than blocking the caller. A failed accessor call degrades
// one snapshot field, never the whole aggregation pass.
type Accessor interface {
	// IsRunning reports whether the IDE process is alive.
	IsRunning(ctx context.Context) bool

	// ActiveProjectPath returns the path of the open workspace or project
	// document, or "" when no project is open or the query failed.
	ActiveProjectPath(ctx context.Context) string

	// WindowTitle returns the frontmost window title, or "".
	WindowTitle(ctx context.Context) string

	// ActiveDocumentPath returns the path of the focused source document,
	// or "" when unavailable.
	ActiveDocumentPath(ctx context.Context) string
}

// Fake is a deterministic Accessor for tests.
type Fake struct {
	Running      bool
	ProjectPath  string
	Title        string
	DocumentPath string
}

// IsRunning implements Accessor.
func (f *Fake) IsRunning(ctx context.Context) bool { return f.Running }

// ActiveProjectPath implements Accessor.
func (f *Fake) ActiveProjectPath(ctx context.Context) string { return f.ProjectPath }

// WindowTitle implements Accessor.
func (f *Fake) WindowTitle(ctx context.Context) string { return f.Title }

// ActiveDocumentPath implements Accessor.
func (f *Fake) ActiveDocumentPath(ctx context.Context) string { return f.DocumentPath }
