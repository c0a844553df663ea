package derived

import (
	"os"
	"path/filepath"
	"testing"

	xerrors "github.com/Iron-Ham/xcstatus/internal/errors"
	"github.com/Iron-Ham/xcstatus/internal/testutil"
)

func TestProjectName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/Users/dev/MyApp/MyApp.xcodeproj", "MyApp"},
		{"/Users/dev/MyApp/MyApp.xcworkspace", "MyApp"},
		{"/Users/dev/Apple Music/Apple Music.xcodeproj", "Apple Music"},
		{"/Users/dev/plain-dir", "plain-dir"},
	}
	for _, tt := range tests {
		if got := ProjectName(tt.path); got != tt.want {
			t.Errorf("ProjectName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("Apple Music"); got != "Apple_Music" {
		t.Errorf("NormalizeName() = %q, want %q", got, "Apple_Music")
	}
	if got := NormalizeName("MyApp"); got != "MyApp" {
		t.Errorf("NormalizeName() = %q, want %q", got, "MyApp")
	}
}

func TestResolveMatchesDeclaredWorkspace(t *testing.T) {
	root := t.TempDir()
	projects := t.TempDir()

	project := testutil.WriteProject(t, projects, "MyApp.xcodeproj")

	// A stale directory for a different project with a similar name must not
	// match even though its name prefix does.
	other := testutil.WriteProject(t, projects, "MyAppKit.xcodeproj")
	testutil.WriteBuildOutputDir(t, root, "MyAppKit-aaaabbbb", other)

	want := testutil.WriteBuildOutputDir(t, root, "MyApp-ccccdddd", project)

	r := NewResolver(root)
	got, err := r.Resolve(project)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.Path != want {
		t.Errorf("Resolve() path = %q, want %q", got.Path, want)
	}
	if got.WorkspacePath != project {
		t.Errorf("Resolve() workspace = %q, want %q", got.WorkspacePath, project)
	}
}

func TestResolveNormalizedDirectoryName(t *testing.T) {
	root := t.TempDir()
	projects := t.TempDir()

	project := testutil.WriteProject(t, projects, "Apple Music.xcodeproj")
	want := testutil.WriteBuildOutputDir(t, root, "Apple_Music-ffffeeee", project)

	r := NewResolver(root)
	got, err := r.Resolve(project)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.Path != want {
		t.Errorf("Resolve() path = %q, want %q", got.Path, want)
	}
}

func TestResolveThroughSymlink(t *testing.T) {
	root := t.TempDir()
	projects := t.TempDir()

	project := testutil.WriteProject(t, projects, "MyApp.xcodeproj")
	link := filepath.Join(projects, "link.xcodeproj")
	if err := os.Symlink(project, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	// Info.plist declares the real path; the caller resolves via the link.
	want := testutil.WriteBuildOutputDir(t, root, "MyApp-ccccdddd", project)

	r := NewResolver(root)
	got, err := r.Resolve(link)
	if err != nil {
		t.Fatalf("Resolve() through symlink error = %v", err)
	}
	if got.Path != want {
		t.Errorf("Resolve() path = %q, want %q", got.Path, want)
	}
}

func TestResolveDistinctFilesDoNotMatch(t *testing.T) {
	root := t.TempDir()
	projects := t.TempDir()

	project := testutil.WriteProject(t, projects, "MyApp.xcodeproj")
	impostor := testutil.WriteProject(t, filepath.Join(projects, "other"), "MyApp.xcodeproj")

	testutil.WriteBuildOutputDir(t, root, "MyApp-ccccdddd", impostor)

	r := NewResolver(root)
	if _, err := r.Resolve(project); !xerrors.Is(err, xerrors.ErrProjectNotFound) {
		t.Errorf("Resolve() error = %v, want ErrProjectNotFound", err)
	}
}

func TestResolveSkipsUnreadableCandidates(t *testing.T) {
	root := t.TempDir()
	projects := t.TempDir()

	project := testutil.WriteProject(t, projects, "MyApp.xcodeproj")

	// First candidate has a corrupt Info.plist; resolution must continue.
	broken := filepath.Join(root, "MyApp-aaaa0000")
	if err := os.MkdirAll(broken, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(broken, "Info.plist"), []byte("not a plist"), 0644); err != nil {
		t.Fatal(err)
	}

	want := testutil.WriteBuildOutputDir(t, root, "MyApp-bbbb1111", project)

	r := NewResolver(root)
	got, err := r.Resolve(project)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.Path != want {
		t.Errorf("Resolve() path = %q, want %q", got.Path, want)
	}
}

func TestResolveEmptyProjectPath(t *testing.T) {
	r := NewResolver(t.TempDir())
	if _, err := r.Resolve(""); !xerrors.Is(err, xerrors.ErrNoActiveProject) {
		t.Errorf("Resolve(\"\") error = %v, want ErrNoActiveProject", err)
	}
}

func TestResolveMissingRoot(t *testing.T) {
	r := NewResolver(filepath.Join(t.TempDir(), "does-not-exist"))
	if _, err := r.Resolve("/tmp/whatever.xcodeproj"); !xerrors.Is(err, xerrors.ErrProjectNotFound) {
		t.Errorf("Resolve() error = %v, want ErrProjectNotFound", err)
	}
}
