// Package errors provides centralized error definitions for the xcstatus
// pipeline. It defines sentinel errors for each failure class in the
// resolution pipeline, a semantic NotFoundError type, and classification
// helpers used by the aggregator to decide fallback behavior.
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Resolution-related sentinel errors
var (
	// ErrProjectNotFound indicates that no DerivedData directory matches the
	// active project. Reported to the user as idle, never as an error.
	ErrProjectNotFound = New("no matching DerivedData directory")
	// ErrNoActiveProject indicates that the IDE reported no open project.
	ErrNoActiveProject = New("no active project")
)

// Build-log sentinel errors
var (
	// ErrManifestUnreadable indicates a missing or corrupt log manifest.
	// The aggregator falls back to the last-known build status.
	ErrManifestUnreadable = New("build log manifest unreadable")
	// ErrNoCompletedRun indicates the manifest holds no completed build runs.
	ErrNoCompletedRun = New("no completed build run")
	// ErrArtifactUnreadable indicates the detailed log artifact is missing or
	// undecodable. The aggregator falls back to the manifest's error count.
	ErrArtifactUnreadable = New("log artifact unreadable")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an external call timed out.
	ErrTimeout = New("operation timed out")
	// ErrTransport indicates the publishing endpoint was unreachable.
	// Logged and retried on the next tick, never fatal to aggregation.
	ErrTransport = New("status endpoint unreachable")
)

// NotFoundError indicates a named resource could not be located.
type NotFoundError struct {
	// Resource is the type of resource (e.g. "project", "manifest").
	Resource string
	// Name identifies the specific resource that was not found.
	Name string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Name)
}

// NewNotFoundError creates a NotFoundError for the given resource.
func NewNotFoundError(resource, name string) *NotFoundError {
	return &NotFoundError{Resource: resource, Name: name}
}

// IsNotFound reports whether err represents a "no data" condition: a missing
// DerivedData match, no active project, no completed run, or a NotFoundError.
// These degrade the affected field to its default rather than failing a pass.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var nf *NotFoundError
	return Is(err, ErrProjectNotFound) ||
		Is(err, ErrNoActiveProject) ||
		Is(err, ErrNoCompletedRun) ||
		As(err, &nf)
}

// IsRetryable reports whether the operation may succeed on a later tick.
// Timeouts and transport failures are transient; everything else is treated
// as state that only changes when the filesystem does.
func IsRetryable(err error) bool {
	return Is(err, ErrTimeout) || Is(err, ErrTransport)
}

// Wrap annotates err with a message, preserving the error chain.
// Returns nil if err is nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf annotates err with a formatted message, preserving the error chain.
// Returns nil if err is nil.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
