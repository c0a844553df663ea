package ide

import (
	"context"
	"os/exec"
	"strings"
)

// AppleScript snippets mirroring the queries Xcode answers through the
// accessibility tree. Each returns "" instead of erroring when the state
// being asked about does not exist.
const (
	scriptActiveProject = `
tell application "System Events"
    if exists (process "Xcode") then
        tell application "Xcode"
            try
                if exists active workspace document then
                    return path of active workspace document
                end if
            end try
        end tell
    end if
end tell
return ""
`

	scriptWindowTitle = `
tell application "System Events"
    if exists (process "Xcode") then
        tell process "Xcode"
            try
                return value of attribute "AXTitle" of window 1
            on error
                return ""
            end try
        end tell
    end if
end tell
`

	scriptActiveDocument = `
tell application "Xcode"
    try
        if exists front document then
            set currentDocument to front document
            if exists (contents of currentDocument) then
                set sourceFile to path of (contents of currentDocument)
                if sourceFile contains ":" then
                    return POSIX path of sourceFile
                else
                    return sourceFile as string
                end if
            end if
        end if
    end try
end tell
return ""
`
)

// Darwin is the macOS Accessor, backed by pgrep and osascript.
type Darwin struct {
	// ProcessName is the IDE process checked via pgrep -x.
	ProcessName string
}

// NewDarwin creates a Darwin accessor for the named IDE process.
func NewDarwin(processName string) *Darwin {
	if processName == "" {
		processName = "Xcode"
	}
	return &Darwin{ProcessName: processName}
}

// IsRunning implements Accessor using pgrep -x.
func (d *Darwin) IsRunning(ctx context.Context) bool {
	err := exec.CommandContext(ctx, "pgrep", "-x", d.ProcessName).Run()
	return err == nil
}

// ActiveProjectPath implements Accessor.
func (d *Darwin) ActiveProjectPath(ctx context.Context) string {
	return d.runScript(ctx, scriptActiveProject)
}

// WindowTitle implements Accessor.
func (d *Darwin) WindowTitle(ctx context.Context) string {
	return d.runScript(ctx, scriptWindowTitle)
}

// ActiveDocumentPath implements Accessor.
func (d *Darwin) ActiveDocumentPath(ctx context.Context) string {
	out := d.runScript(ctx, scriptActiveDocument)
	if out == "missing value" {
		return ""
	}
	return out
}

// runScript executes an AppleScript snippet, returning trimmed stdout or ""
// on any failure (osascript missing, timeout, script error).
func (d *Darwin) runScript(ctx context.Context, script string) string {
	out, err := exec.CommandContext(ctx, "osascript", "-e", script).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
