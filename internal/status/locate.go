package status

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// sourceDirs are conventional source-folder names tried when the tree search
// comes up empty.
var sourceDirs = []string{"Sources", "src"}

// prunedDirs are build, version-control, and derived directories excluded
// from the tree search.
var prunedDirs = []string{".build", ".git", "DerivedData"}

// FileLocator finds a file by name within a project's directory tree. It
// shells out to find(1) with prune rules and a short timeout; when the tool
// is unavailable or times out it falls back to checking a fixed priority
// list of conventional locations.
type FileLocator struct {
	// Timeout bounds the find invocation.
	Timeout time.Duration
}

// NewFileLocator creates a FileLocator with the given search timeout.
func NewFileLocator(timeout time.Duration) *FileLocator {
	return &FileLocator{Timeout: timeout}
}

// Locate returns the path of the first file named fileName under the
// project's parent directory, or "" when nothing was found. projectPath is
// the workspace/project bundle path; projectName its stripped name.
func (l *FileLocator) Locate(ctx context.Context, projectPath, projectName, fileName string) string {
	if fileName == "" || projectPath == "" {
		return ""
	}
	projectDir := filepath.Dir(projectPath)

	if path := l.findInTree(ctx, projectDir, fileName); path != "" {
		return path
	}
	return guessPath(projectDir, projectName, fileName)
}

// findInTree runs find(1) over the project directory with prune rules.
func (l *FileLocator) findInTree(ctx context.Context, projectDir, fileName string) string {
	findCtx, cancel := context.WithTimeout(ctx, l.Timeout)
	defer cancel()

	args := []string{projectDir}
	for _, dir := range prunedDirs {
		args = append(args, "-path", "*/"+dir, "-prune", "-o")
	}
	args = append(args, "-name", fileName, "-type", "f", "-print")

	out, err := exec.CommandContext(findCtx, "find", args...).Output()
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line != "" {
			return line
		}
	}
	return ""
}

// guessPath checks conventional project locations in a fixed priority order
// and returns the first that exists.
func guessPath(projectDir, projectName, fileName string) string {
	candidates := []string{
		filepath.Join(projectDir, projectName, fileName),
		filepath.Join(projectDir, fileName),
	}
	for _, src := range sourceDirs {
		candidates = append(candidates,
			filepath.Join(projectDir, src, fileName),
			filepath.Join(projectDir, projectName, src, fileName),
		)
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
