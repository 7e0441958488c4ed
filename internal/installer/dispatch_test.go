package installer

import (
	"context"
	"testing"

	"github.com/mason-org/mason-go/internal/masonerr"
	"github.com/mason-org/mason-go/internal/purl"
	"github.com/mason-org/mason-go/internal/recipe"
)

func TestLookupAllEcosystems(t *testing.T) {
	want := []string{
		"cargo", "composer", "gem", "generic", "github", "golang",
		"luarocks", "npm", "nuget", "opam", "openvsx", "pypi",
	}
	for _, typ := range want {
		if _, ok := Lookup(typ); !ok {
			t.Errorf("no handler registered for %q", typ)
		}
	}
}

func TestInstallUnsupportedInstaller(t *testing.T) {
	pkg := &recipe.Package{Name: "widget", PURL: purl.PURL{Type: "cobol"}}
	ws := NewWorkspace(t.TempDir())
	err := Install(context.Background(), ws, pkg)
	if err == nil {
		t.Fatal("expected error")
	}
	merr, ok := err.(*masonerr.Error)
	if !ok || merr.Kind != masonerr.KindUnsupportedInstaller {
		t.Fatalf("got %v, want UnsupportedInstaller", err)
	}
}

func TestRunBuildNoop(t *testing.T) {
	ws := NewWorkspace(t.TempDir())
	if err := RunBuild(context.Background(), ws, nil); err != nil {
		t.Fatalf("nil build should be a no-op: %v", err)
	}
	if err := RunBuild(context.Background(), ws, &recipe.Build{Run: "  "}); err != nil {
		t.Fatalf("blank build.run should be a no-op: %v", err)
	}
}

func TestRunBuildRunsCommands(t *testing.T) {
	dir := t.TempDir()
	ws := NewWorkspace(dir)
	build := &recipe.Build{Run: "touch built.txt", Cmds: []string{"touch built.txt"}}
	if err := RunBuild(context.Background(), ws, build); err != nil {
		t.Fatalf("RunBuild: %v", err)
	}
}

func TestRunBuildFailureWraps(t *testing.T) {
	ws := NewWorkspace(t.TempDir())
	build := &recipe.Build{Run: "exit 1", Cmds: []string{"exit 1"}}
	err := RunBuild(context.Background(), ws, build)
	if err == nil {
		t.Fatal("expected error")
	}
	merr, ok := err.(*masonerr.Error)
	if !ok || merr.Kind != masonerr.KindSubprocessFailed {
		t.Fatalf("got %v, want SubprocessFailed", err)
	}
}
