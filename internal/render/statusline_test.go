package render

import (
	"strings"
	"testing"
	"time"

	"github.com/Iron-Ham/xcstatus/internal/status"
)

func TestRenderNotConfigured(t *testing.T) {
	s := NewStatusline("")
	out := s.Render(status.Snapshot{})
	if !strings.Contains(out, "logs directory") {
		t.Errorf("Render = %q, want setup hint", out)
	}
}

func TestRenderXcodeClosed(t *testing.T) {
	s := NewStatusline(t.TempDir())
	out := s.Render(status.Snapshot{XcodeRunning: false})

	if !strings.Contains(out, "xcode closed") {
		t.Errorf("Render = %q, want closed message", out)
	}
	if !strings.Contains(out, "open now") || !strings.Contains(out, "\033]8;;file:///Applications/Xcode.app") {
		t.Errorf("Render = %q, want open-now hyperlink", out)
	}
}

func TestRenderOpenWithProjectAndFile(t *testing.T) {
	s := NewStatusline(t.TempDir())
	out := s.Render(status.Snapshot{
		XcodeRunning:    true,
		ProjectName:     "MyApp",
		CurrentFile:     "Main.swift",
		CurrentFilePath: "/Users/dev/MyApp/Main.swift",
	})

	if !strings.Contains(out, "MyApp") {
		t.Errorf("Render = %q, want project name", out)
	}
	if !strings.Contains(out, "Main.swift") {
		t.Errorf("Render = %q, want file name", out)
	}
	if !strings.Contains(out, "\033]8;;file:///Users/dev/MyApp/Main.swift") {
		t.Errorf("Render = %q, want file hyperlink", out)
	}
}

func TestRenderUnfocused(t *testing.T) {
	s := NewStatusline(t.TempDir())
	out := s.Render(status.Snapshot{XcodeRunning: true})
	if !strings.Contains(out, "not focused") {
		t.Errorf("Render = %q, want unfocused message", out)
	}
}

func TestRenderErrorPluralization(t *testing.T) {
	s := NewStatusline(t.TempDir())

	one := s.Render(status.Snapshot{XcodeRunning: true, ProjectName: "MyApp", ErrorCount: 1})
	if !strings.Contains(one, "1 build error") || strings.Contains(one, "errors") {
		t.Errorf("Render = %q, want singular error", one)
	}

	many := s.Render(status.Snapshot{XcodeRunning: true, ProjectName: "MyApp", ErrorCount: 3})
	if !strings.Contains(many, "3 build errors") {
		t.Errorf("Render = %q, want plural errors", many)
	}
}

func TestRenderNoErrorsOmitsCount(t *testing.T) {
	s := NewStatusline(t.TempDir())
	out := s.Render(status.Snapshot{XcodeRunning: true, ProjectName: "MyApp"})
	if strings.Contains(out, "build error") {
		t.Errorf("Render = %q, want no error segment", out)
	}
}

func TestRenderDisabled(t *testing.T) {
	dir := t.TempDir()
	if err := status.SetEnabled(dir, false); err != nil {
		t.Fatal(err)
	}

	s := NewStatusline(dir)
	if out := s.Render(status.Snapshot{XcodeRunning: true, ProjectName: "MyApp"}); out != "" {
		t.Errorf("Render = %q while disabled, want empty", out)
	}
}

func TestContextBlockStates(t *testing.T) {
	if out := ContextBlock(""); !strings.Contains(out, "No statusline logs directory configured") {
		t.Errorf("ContextBlock(\"\") = %q", out)
	}

	empty := t.TempDir()
	if out := ContextBlock(empty); !strings.Contains(out, "logs not found") {
		t.Errorf("ContextBlock(empty dir) = %q", out)
	}

	closed := t.TempDir()
	writeStatus(t, closed, status.Snapshot{XcodeRunning: false})
	if out := ContextBlock(closed); !strings.Contains(out, "Xcode is currently closed") {
		t.Errorf("ContextBlock(closed) = %q", out)
	}
}

func TestContextBlockRunning(t *testing.T) {
	dir := t.TempDir()
	writeStatus(t, dir, status.Snapshot{
		XcodeRunning:    true,
		ProjectName:     "MyApp",
		CurrentFile:     "Main.swift",
		CurrentFilePath: "/Users/dev/MyApp/Main.swift",
		ErrorCount:      4,
		Errors:          []string{"e1", "e2", "e3", "e4"},
		Timestamp:       time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	})

	out := ContextBlock(dir)
	for _, want := range []string{
		"<xcode-context>",
		"</xcode-context>",
		"Xcode is running",
		"Current project: MyApp",
		"Current file: Main.swift",
		"File path: /Users/dev/MyApp/Main.swift",
		"Build status: 4 errors",
		"1. e1",
		"3. e3",
		"... and 1 more errors",
		"Last updated: 09:30:00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ContextBlock missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "4. e4") {
		t.Errorf("ContextBlock lists more than %d errors:\n%s", maxContextErrors, out)
	}
}

func TestContextBlockNoErrors(t *testing.T) {
	dir := t.TempDir()
	writeStatus(t, dir, status.Snapshot{XcodeRunning: true, ProjectName: "MyApp"})

	out := ContextBlock(dir)
	if !strings.Contains(out, "Build status: No errors") {
		t.Errorf("ContextBlock = %q, want no-errors status", out)
	}
}

func writeStatus(t *testing.T, dir string, snap status.Snapshot) {
	t.Helper()
	if err := status.NewWriter(dir).Write(snap); err != nil {
		t.Fatal(err)
	}
}
