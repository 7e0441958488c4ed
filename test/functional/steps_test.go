package functional

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

func aCleanMasonEnvironment(ctx context.Context) error {
	if getState(ctx) == nil {
		return fmt.Errorf("no test state in context")
	}
	return nil
}

// aFakeInstalledPackageWithBin writes a receipt and its linked bin symlink
// directly to disk, bypassing install, so uninstall steps can be exercised
// without needing network access to a real registry.
func aFakeInstalledPackageWithBin(ctx context.Context, name, bin string) error {
	s := getState(ctx)
	pkgDir := filepath.Join(s.dataDir, "packages", name)
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		return err
	}

	target := filepath.Join(pkgDir, bin)
	if err := os.WriteFile(target, []byte("#!/bin/sh\necho "+bin+"\n"), 0o755); err != nil {
		return err
	}

	binDest := filepath.Join(s.dataDir, "bin", bin)
	if err := os.Symlink(target, binDest); err != nil {
		return err
	}

	receipt := map[string]any{
		"name": name,
		"primary_source": map[string]string{
			"id": "pkg:generic/" + name + "@1.0.0",
		},
		"links": map[string]any{
			"bin":   map[string]string{bin: bin},
			"share": map[string]string{},
			"opt":   map[string]string{},
		},
	}
	data, err := json.MarshalIndent(receipt, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(pkgDir, "mason-receipt.json"), data, 0o644)
}

// aFakeOrphanedPackageWithNoReceipt creates a package directory with no
// mason-receipt.json, which list must skip (spec.md §6: the receipt's
// presence is the only signal of a committed install).
func aFakeOrphanedPackageWithNoReceipt(ctx context.Context, name string) error {
	s := getState(ctx)
	pkgDir := filepath.Join(s.dataDir, "packages", name)
	return os.MkdirAll(pkgDir, 0o755)
}

func iRun(ctx context.Context, commandLine string) error {
	s := getState(ctx)
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return fmt.Errorf("empty command")
	}
	if fields[0] != "mason" {
		return fmt.Errorf("commands must start with \"mason\", got %q", fields[0])
	}

	cmd := exec.Command(s.binPath, fields[1:]...)
	cmd.Env = append(os.Environ(),
		"MASON_DATA_DIR="+s.dataDir,
		"MASON_CACHE_DIR="+filepath.Join(s.dataDir, "cache"),
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	s.stdout = stdout.String()
	s.stderr = stderr.String()
	s.exitCode = 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			s.exitCode = exitErr.ExitCode()
		} else {
			return fmt.Errorf("running %s: %w", commandLine, err)
		}
	}
	return nil
}

func theExitCodeIs(ctx context.Context, want int) error {
	s := getState(ctx)
	if s.exitCode != want {
		return fmt.Errorf("exit code = %d, want %d\nstdout: %s\nstderr: %s", s.exitCode, want, s.stdout, s.stderr)
	}
	return nil
}

func theExitCodeIsNot(ctx context.Context, notWant int) error {
	s := getState(ctx)
	if s.exitCode == notWant {
		return fmt.Errorf("exit code = %d, want anything else\nstdout: %s\nstderr: %s", s.exitCode, s.stdout, s.stderr)
	}
	return nil
}

func theOutputContains(ctx context.Context, substr string) error {
	s := getState(ctx)
	if !strings.Contains(s.stdout, substr) {
		return fmt.Errorf("stdout %q does not contain %q", s.stdout, substr)
	}
	return nil
}

func theOutputDoesNotContain(ctx context.Context, substr string) error {
	s := getState(ctx)
	if strings.Contains(s.stdout, substr) {
		return fmt.Errorf("stdout %q unexpectedly contains %q", s.stdout, substr)
	}
	return nil
}

func theErrorOutputContains(ctx context.Context, substr string) error {
	s := getState(ctx)
	if !strings.Contains(s.stderr, substr) {
		return fmt.Errorf("stderr %q does not contain %q", s.stderr, substr)
	}
	return nil
}

func theFileExists(ctx context.Context, relPath string) error {
	s := getState(ctx)
	path := filepath.Join(s.dataDir, relPath)
	if _, err := os.Lstat(path); err != nil {
		return fmt.Errorf("expected %s to exist: %w", path, err)
	}
	return nil
}

func theFileDoesNotExist(ctx context.Context, relPath string) error {
	s := getState(ctx)
	path := filepath.Join(s.dataDir, relPath)
	if _, err := os.Lstat(path); err == nil {
		return fmt.Errorf("expected %s not to exist", path)
	} else if !os.IsNotExist(err) {
		return err
	}
	return nil
}
