package render

import (
	"fmt"
	"strings"

	xerrors "github.com/Iron-Ham/xcstatus/internal/errors"
	"github.com/Iron-Ham/xcstatus/internal/status"
)

// maxContextErrors caps how many detailed errors the context block lists.
const maxContextErrors = 3

// ContextBlock renders the persisted status as a tagged plain-text block for
// prompt hooks. It always returns usable text; missing or unreadable state
// is described inside the block rather than reported as an error.
func ContextBlock(logsDir string) string {
	return "<xcode-context>\n" + contextBody(logsDir) + "\n</xcode-context>"
}

func contextBody(logsDir string) string {
	if logsDir == "" {
		return "No statusline logs directory configured"
	}

	snap, err := status.ReadFile(logsDir)
	switch {
	case xerrors.IsNotFound(err):
		return "No Xcode context available (logs not found)"
	case err != nil:
		return fmt.Sprintf("Error reading Xcode context: %v", err)
	}

	if !snap.XcodeRunning {
		return "Xcode is currently closed"
	}

	parts := []string{"Xcode is running"}
	if snap.ProjectName != "" {
		parts = append(parts, "Current project: "+snap.ProjectName)
	}
	if snap.CurrentFile != "" {
		parts = append(parts, "Current file: "+snap.CurrentFile)
		if snap.CurrentFilePath != "" {
			parts = append(parts, "File path: "+snap.CurrentFilePath)
		}
	}

	if snap.ErrorCount > 0 {
		parts = append(parts, fmt.Sprintf("Build status: %d %s", snap.ErrorCount, pluralize("error", snap.ErrorCount)))
		if len(snap.Errors) > 0 {
			parts = append(parts, "Recent build errors:")
			for i, e := range snap.Errors {
				if i == maxContextErrors {
					parts = append(parts, fmt.Sprintf("   ... and %d more errors", len(snap.Errors)-maxContextErrors))
					break
				}
				parts = append(parts, fmt.Sprintf("   %d. %s", i+1, e))
			}
		}
	} else {
		parts = append(parts, "Build status: No errors")
	}

	if !snap.Timestamp.IsZero() {
		parts = append(parts, "Last updated: "+snap.Timestamp.Format("15:04:05"))
	}

	return strings.Join(parts, "\n")
}
