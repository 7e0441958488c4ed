package linker

import (
	"fmt"
	"path/filepath"
	"strings"
)

// dangerousShellChars mirrors the teacher's validateShellSafePath check:
// any of these embedded in a path that gets interpolated into a generated
// shell script could break out of its quoting.
const dangerousShellChars = "\n\r\"'`$\\;"

func validateShellSafePath(path, unsafe string) error {
	if strings.ContainsAny(path, unsafe) {
		return fmt.Errorf("linker: path %q contains characters unsafe to embed in a wrapper script", path)
	}
	return nil
}

// WrapperScript renders the POSIX shell (or Windows .cmd) body for one of
// the interpreter/JVM bin types in spec.md §4.7's table. pkgDir is the
// package's absolute install directory; target is the in-package path (or,
// for "exec", the literal command) the wrapper ultimately runs.
func WrapperScript(binType, target, pkgDir, goos string) (string, error) {
	unsafe := dangerousShellChars
	if goos == "windows" {
		// Backslash is the Windows path separator, not an escape in .cmd.
		unsafe = strings.ReplaceAll(unsafe, `\`, "")
	}
	if err := validateShellSafePath(pkgDir, unsafe); err != nil {
		return "", err
	}
	if err := validateShellSafePath(target, unsafe); err != nil {
		return "", err
	}

	if goos == "windows" {
		return windowsWrapperScript(binType, target, pkgDir)
	}
	return posixWrapperScript(binType, target, pkgDir)
}

func posixWrapperScript(binType, target, pkgDir string) (string, error) {
	targetPath := filepath.Join(pkgDir, target)

	switch binType {
	case "exec":
		return fmt.Sprintf("#!/bin/sh\nexec \"%s\" \"$@\"\n", targetPath), nil
	case "node":
		return fmt.Sprintf("#!/bin/sh\nexec node \"%s\" \"$@\"\n", targetPath), nil
	case "php":
		return fmt.Sprintf("#!/bin/sh\nexec php \"%s\" \"$@\"\n", targetPath), nil
	case "python":
		return fmt.Sprintf("#!/bin/sh\nexec python3 \"%s\" \"$@\"\n", targetPath), nil
	case "ruby":
		return fmt.Sprintf("#!/bin/sh\nexec ruby \"%s\" \"$@\"\n", targetPath), nil
	case "pyvenv":
		venvPython := filepath.Join(pkgDir, "venv", "bin", "python")
		return fmt.Sprintf("#!/bin/sh\nexec \"%s\" \"%s\" \"$@\"\n", venvPython, targetPath), nil
	case "dotnet":
		return fmt.Sprintf("#!/bin/sh\nexec dotnet \"%s\" \"$@\"\n", targetPath), nil
	case "java-jar":
		return fmt.Sprintf("#!/bin/sh\nexec java -jar \"%s\" \"$@\"\n", targetPath), nil
	case "gem":
		return gemWrapperScript(target, pkgDir), nil
	default:
		return "", fmt.Errorf("linker: %q is not a wrapper bin type", binType)
	}
}

// gemWrapperScript is adapted from internal/actions/gem_install.go's
// runtime wrapper: GEM_HOME/GEM_PATH pinned to the package directory so the
// gem's own dependencies resolve without touching the system gem path, ruby
// added to PATH, then exec the gem's generated script directly (no
// BASH_SOURCE resolution loop is needed here since this wrapper is the only
// one mason ever writes to this path, unlike gem's own relocated wrapper).
func gemWrapperScript(target, pkgDir string) string {
	binDir := filepath.Join(pkgDir, "bin")
	targetPath := filepath.Join(pkgDir, target)
	return fmt.Sprintf(`#!/bin/sh
export GEM_HOME="%s"
export GEM_PATH="%s"
export PATH="%s:$PATH"
exec ruby "%s" "$@"
`, pkgDir, pkgDir, binDir, targetPath)
}

func windowsWrapperScript(binType, target, pkgDir string) (string, error) {
	targetPath := filepath.Join(pkgDir, target)

	var command string
	switch binType {
	case "exec":
		command = fmt.Sprintf("%q %%*", targetPath)
	case "node":
		command = fmt.Sprintf("node %q %%*", targetPath)
	case "php":
		command = fmt.Sprintf("php %q %%*", targetPath)
	case "python":
		command = fmt.Sprintf("python %q %%*", targetPath)
	case "ruby":
		command = fmt.Sprintf("ruby %q %%*", targetPath)
	case "pyvenv":
		venvPython := filepath.Join(pkgDir, "venv", "Scripts", "python.exe")
		command = fmt.Sprintf("%q %q %%*", venvPython, targetPath)
	case "dotnet":
		command = fmt.Sprintf("dotnet %q %%*", targetPath)
	case "java-jar":
		command = fmt.Sprintf("java -jar %q %%*", targetPath)
	case "gem":
		binDir := filepath.Join(pkgDir, "bin")
		return fmt.Sprintf("@ECHO off\r\nSET \"GEM_HOME=%s\"\r\nSET \"GEM_PATH=%s\"\r\nSET \"PATH=%s;%%PATH%%\"\r\nruby %q %%*\r\n",
			pkgDir, pkgDir, binDir, targetPath), nil
	default:
		return "", fmt.Errorf("linker: %q is not a wrapper bin type", binType)
	}
	return fmt.Sprintf("@ECHO off\r\n%s\r\n", command), nil
}
