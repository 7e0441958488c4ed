package installer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mason-org/mason-go/internal/purl"
	"github.com/mason-org/mason-go/internal/recipe"
)

func TestGithubHandlerInstallFilesPlain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("binary-bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	ws := NewWorkspace(dir)
	pkg := &recipe.Package{
		PURL:  purl.PURL{Namespace: "owner", Name: "repo", Version: "v1.0.0"},
		Files: []string{srv.URL + "/tool"},
	}

	if err := (githubHandler{}).Install(context.Background(), ws, pkg); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "tool")); err != nil {
		t.Errorf("expected downloaded file: %v", err)
	}
}

func TestGithubHandlerInstallFilesDestDir(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("binary-bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	ws := NewWorkspace(dir)
	pkg := &recipe.Package{
		PURL:  purl.PURL{Namespace: "owner", Name: "repo", Version: "v1.0.0"},
		Files: []string{srv.URL + "/tool:bin/"},
	}

	if err := (githubHandler{}).Install(context.Background(), ws, pkg); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "bin", "tool")); err != nil {
		t.Errorf("expected downloaded file under bin/: %v", err)
	}
}

func TestGithubHandlerInstallFilesRename(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("binary-bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	ws := NewWorkspace(dir)
	pkg := &recipe.Package{
		PURL:  purl.PURL{Namespace: "owner", Name: "repo", Version: "v1.0.0"},
		Files: []string{srv.URL + "/tool-linux-x64:tool"},
	}

	if err := (githubHandler{}).Install(context.Background(), ws, pkg); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "tool")); err != nil {
		t.Errorf("expected renamed file %q: %v", "tool", err)
	}
}

func TestSplitFileEntry(t *testing.T) {
	cases := []struct {
		in         string
		source     string
		dest       string
		destIsDir  bool
	}{
		{"a.tar.gz", "a.tar.gz", "", false},
		{"a.tar.gz:dest/", "a.tar.gz", "dest/", true},
		{"a.tar.gz:dest", "a.tar.gz", "dest", false},
	}
	for _, tc := range cases {
		source, dest, destIsDir := splitFileEntry(tc.in)
		if source != tc.source || dest != tc.dest || destIsDir != tc.destIsDir {
			t.Errorf("splitFileEntry(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tc.in, source, dest, destIsDir, tc.source, tc.dest, tc.destIsDir)
		}
	}
}
