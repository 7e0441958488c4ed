package linker

import (
	"strings"
	"testing"
)

func TestWrapperScriptNodePOSIX(t *testing.T) {
	got, err := WrapperScript("node", "out/main.js", "/pkgs/foo", "linux")
	if err != nil {
		t.Fatalf("WrapperScript: %v", err)
	}
	if !strings.HasPrefix(got, "#!/bin/sh\n") {
		t.Errorf("missing shebang: %q", got)
	}
	if !strings.Contains(got, `exec node "/pkgs/foo/out/main.js" "$@"`) {
		t.Errorf("unexpected body: %q", got)
	}
}

func TestWrapperScriptGemPOSIX(t *testing.T) {
	got, err := WrapperScript("gem", "bin/rails", "/pkgs/rails-app", "linux")
	if err != nil {
		t.Fatalf("WrapperScript: %v", err)
	}
	for _, want := range []string{
		`export GEM_HOME="/pkgs/rails-app"`,
		`export GEM_PATH="/pkgs/rails-app"`,
		`export PATH="/pkgs/rails-app/bin:$PATH"`,
		`exec ruby "/pkgs/rails-app/bin/rails" "$@"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("script missing %q, got:\n%s", want, got)
		}
	}
}

func TestWrapperScriptPyvenvPOSIX(t *testing.T) {
	got, err := WrapperScript("pyvenv", "cli.py", "/pkgs/tool", "linux")
	if err != nil {
		t.Fatalf("WrapperScript: %v", err)
	}
	if !strings.Contains(got, `exec "/pkgs/tool/venv/bin/python" "/pkgs/tool/cli.py" "$@"`) {
		t.Errorf("unexpected body: %q", got)
	}
}

func TestWrapperScriptJavaJarPOSIX(t *testing.T) {
	got, err := WrapperScript("java-jar", "server.jar", "/pkgs/svc", "linux")
	if err != nil {
		t.Fatalf("WrapperScript: %v", err)
	}
	if !strings.Contains(got, `exec java -jar "/pkgs/svc/server.jar" "$@"`) {
		t.Errorf("unexpected body: %q", got)
	}
}

func TestWrapperScriptWindows(t *testing.T) {
	got, err := WrapperScript("node", "out\\main.js", "C:\\pkgs\\foo", "windows")
	if err != nil {
		t.Fatalf("WrapperScript: %v", err)
	}
	if !strings.HasPrefix(got, "@ECHO off\r\n") {
		t.Errorf("missing windows header: %q", got)
	}
	if !strings.Contains(got, "node ") {
		t.Errorf("unexpected body: %q", got)
	}
}

func TestWrapperScriptRejectsUnknownType(t *testing.T) {
	if _, err := WrapperScript("cargo", "rg", "/pkgs/rg", "linux"); err == nil {
		t.Fatal("expected error for non-wrapper bin type")
	}
}

func TestWrapperScriptRejectsUnsafePath(t *testing.T) {
	if _, err := WrapperScript("node", "main.js", "/pkgs/`rm -rf /`", "linux"); err == nil {
		t.Fatal("expected error for unsafe path")
	}
}
