// Package render produces the terminal-facing output: the one-line colored
// statusline and the plain-text context block consumed by prompt hooks.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/xcstatus/internal/status"
)

var (
	redDot    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render("⏺")
	greenDot  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render("⏺")
	fileStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
)

// xcodeAppURI opens Xcode when the hyperlink is activated.
const xcodeAppURI = "file:///Applications/Xcode.app"

// Statusline renders snapshots into a single terminal line.
type Statusline struct {
	// LogsDir is the persistence directory; empty means not configured.
	LogsDir string
}

// NewStatusline creates a Statusline over the given logs directory.
func NewStatusline(logsDir string) *Statusline {
	return &Statusline{LogsDir: logsDir}
}

// Render formats snap as one line. An unset logs directory renders a setup
// hint; a disabled statusline renders nothing.
func (s *Statusline) Render(snap status.Snapshot) string {
	if s.LogsDir == "" {
		return redDot + " Set the statusline logs directory in config first."
	}
	if !status.Enabled(s.LogsDir) {
		return ""
	}

	if !snap.XcodeRunning {
		return redDot + " xcode closed | " + hyperlink(xcodeAppURI, "open now")
	}

	var b strings.Builder
	if snap.ProjectName != "" {
		b.WriteString(greenDot + " " + snap.ProjectName)
	} else {
		b.WriteString(greenDot + " xcode opened but not focused")
	}

	if snap.CurrentFile != "" {
		name := snap.CurrentFile
		if snap.CurrentFilePath != "" {
			name = hyperlink("file://"+snap.CurrentFilePath, name)
		}
		b.WriteString(" | " + fileStyle.Render("⧉ In "+name))
	}

	if snap.ErrorCount > 0 {
		b.WriteString(fmt.Sprintf(" | %d build %s", snap.ErrorCount, pluralize("error", snap.ErrorCount)))
	}

	return b.String()
}

// hyperlink wraps text in an OSC 8 terminal hyperlink.
func hyperlink(uri, text string) string {
	return "\033]8;;" + uri + "\033\\" + text + "\033]8;;\033\\"
}

// pluralize appends "s" to word when n is not 1.
func pluralize(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
