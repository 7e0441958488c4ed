package lifecycle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mason-org/mason-go/internal/config"
	"github.com/mason-org/mason-go/internal/purl"
	"github.com/mason-org/mason-go/internal/receipt"
	"github.com/mason-org/mason-go/internal/recipe"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{
		DataDir:     root,
		PackagesDir: filepath.Join(root, "packages"),
		BinDir:      filepath.Join(root, "bin"),
		ShareDir:    filepath.Join(root, "share"),
		OptDir:      filepath.Join(root, "opt"),
		RegistryDir: filepath.Join(root, "registries"),
		LockPath:    filepath.Join(root, "mason.lock"),
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func testPackage(t *testing.T, srv *httptest.Server) (purl.PURL, *recipe.Package) {
	t.Helper()
	p := purl.PURL{Type: "generic", Name: "echo-tool", Version: "1.0.0"}
	pkg := &recipe.Package{
		Name:  "echo-tool",
		PURL:  p,
		Files: map[string]string{"echo-tool": srv.URL + "/echo-tool"},
		Bin:   map[string]string{"echo-tool": "echo-tool"},
	}
	return p, pkg
}

func TestInstallThenUninstall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("#!/bin/sh\necho hi\n"))
	}))
	defer srv.Close()

	cfg := testConfig(t)
	p, pkg := testPackage(t, srv)

	if err := Install(context.Background(), cfg, p, "pkg:generic/echo-tool@1.0.0", pkg); err != nil {
		t.Fatalf("Install: %v", err)
	}

	pkgDir := cfg.PackageDir("echo-tool")
	if !receipt.Exists(pkgDir) {
		t.Fatal("expected receipt after install")
	}
	binDest := filepath.Join(cfg.BinDir, "echo-tool")
	if _, err := os.Lstat(binDest); err != nil {
		t.Fatalf("expected bin symlink: %v", err)
	}

	if err := Uninstall(cfg, "echo-tool"); err != nil {
		t.Fatalf("Uninstall: %v", err)
	}
	if _, err := os.Stat(pkgDir); !os.IsNotExist(err) {
		t.Errorf("expected package dir removed, stat err = %v", err)
	}
	if _, err := os.Lstat(binDest); !os.IsNotExist(err) {
		t.Errorf("expected bin symlink removed, lstat err = %v", err)
	}
}

func TestReinstallProducesIdenticalReceipt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("#!/bin/sh\necho hi\n"))
	}))
	defer srv.Close()

	cfg := testConfig(t)
	p, pkg := testPackage(t, srv)
	purlStr := "pkg:generic/echo-tool@1.0.0"

	if err := Install(context.Background(), cfg, p, purlStr, pkg); err != nil {
		t.Fatalf("first Install: %v", err)
	}
	first, err := os.ReadFile(filepath.Join(cfg.PackageDir("echo-tool"), receipt.FileName))
	if err != nil {
		t.Fatal(err)
	}

	if err := Uninstall(cfg, "echo-tool"); err != nil {
		t.Fatalf("Uninstall: %v", err)
	}

	if err := Install(context.Background(), cfg, p, purlStr, pkg); err != nil {
		t.Fatalf("second Install: %v", err)
	}
	second, err := os.ReadFile(filepath.Join(cfg.PackageDir("echo-tool"), receipt.FileName))
	if err != nil {
		t.Fatal(err)
	}

	if string(first) != string(second) {
		t.Errorf("receipts differ across reinstall:\n%s\nvs\n%s", first, second)
	}
}

func TestUninstallMissingPackageIsNotFound(t *testing.T) {
	cfg := testConfig(t)
	err := Uninstall(cfg, "does-not-exist")
	if err == nil {
		t.Fatal("expected NotFound error")
	}
}

func TestGuardedRemoveAllRefusesOutsideDataDir(t *testing.T) {
	root := t.TempDir()
	if err := guardedRemoveAll(filepath.Join(root, "data"), filepath.Join(root, "elsewhere")); err == nil {
		t.Fatal("expected refusal to remove a path outside the data directory")
	}
}
