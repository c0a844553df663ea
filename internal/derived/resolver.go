// Package derived implements the build-state resolution pipeline over
// Xcode's DerivedData: locating the build-output directory for a project,
// reading the build-log manifest, and extracting compile errors from log
// artifacts. Everything here is a read-only view over filesystem state; the
// package never invokes the build tool.
package derived

import (
	"os"
	"path/filepath"
	"strings"

	"howett.net/plist"

	xerrors "github.com/Iron-Ham/xcstatus/internal/errors"
)

// ProjectExtensions are the project-file suffixes stripped when deriving a
// project name from a workspace or project path.
var ProjectExtensions = []string{".xcworkspace", ".xcodeproj"}

const infoPlistName = "Info.plist"

// BuildOutputDir is a DerivedData child directory whose Info.plist declares
// which workspace it was generated for.
type BuildOutputDir struct {
	// Path is the directory under the DerivedData root.
	Path string
	// WorkspacePath is the source project the directory was built from,
	// as declared by the directory's Info.plist.
	WorkspacePath string
}

// infoPlist is the subset of a DerivedData Info.plist the resolver reads.
type infoPlist struct {
	WorkspacePath string `plist:"WorkspacePath"`
}

// Resolver maps an active project path to its BuildOutputDir by scanning the
// DerivedData root directly. Scanning replaces asking the build tool for the
// same path, which takes seconds per query; resolution runs on every tick and
// must stay well under 200ms on a warm filesystem cache.
type Resolver struct {
	// Root is the DerivedData directory to scan.
	Root string
}

// NewResolver creates a Resolver over the given DerivedData root.
func NewResolver(root string) *Resolver {
	return &Resolver{Root: root}
}

// Resolve returns the BuildOutputDir whose declared workspace is the same
// file as activeProjectPath. Candidates are children of the root whose name
// starts with the project name (or its space-to-underscore variant, since
// DerivedData substitutes separators). Matching uses same-file identity, not
// string equality, so path aliases like symlinks still resolve.
//
// Unreadable candidates are skipped. Returns ErrProjectNotFound when no
// candidate matches.
func (r *Resolver) Resolve(activeProjectPath string) (*BuildOutputDir, error) {
	if activeProjectPath == "" {
		return nil, xerrors.ErrNoActiveProject
	}

	name := ProjectName(activeProjectPath)
	normalized := NormalizeName(name)

	entries, err := os.ReadDir(r.Root)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrProjectNotFound, "reading DerivedData root")
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if !strings.HasPrefix(entry.Name(), name) && !strings.HasPrefix(entry.Name(), normalized) {
			continue
		}

		dir := filepath.Join(r.Root, entry.Name())
		workspacePath, err := readWorkspacePath(filepath.Join(dir, infoPlistName))
		if err != nil || workspacePath == "" {
			// Stale or foreign directory; keep scanning.
			continue
		}
		if sameFile(workspacePath, activeProjectPath) {
			return &BuildOutputDir{Path: dir, WorkspacePath: workspacePath}, nil
		}
	}

	return nil, xerrors.ErrProjectNotFound
}

// readWorkspacePath decodes the WorkspacePath field of an Info.plist.
func readWorkspacePath(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var info infoPlist
	if _, err := plist.Unmarshal(data, &info); err != nil {
		return "", err
	}
	return info.WorkspacePath, nil
}

// sameFile reports whether two paths identify the same file, resolving
// symlinks and case differences through the filesystem.
func sameFile(a, b string) bool {
	fa, err := os.Stat(a)
	if err != nil {
		return false
	}
	fb, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(fa, fb)
}

// ProjectName derives a project name from a workspace or project path by
// stripping the known project-file suffixes from its basename.
func ProjectName(projectPath string) string {
	name := filepath.Base(projectPath)
	for _, ext := range ProjectExtensions {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

// NormalizeName returns the space-to-underscore variant of a project name,
// the substitution DerivedData applies to directory names.
func NormalizeName(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}
