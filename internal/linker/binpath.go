// Package linker builds the bin/share/opt link graph from a resolved
// package's Bin/Share/Opt maps, generating wrapper scripts for
// interpreted/JVM tools where a plain symlink cannot work (spec.md §4.7).
package linker

import (
	"fmt"
	"path/filepath"
	"strings"
)

// wrapperTypes are the bin specifiers that require a generated wrapper
// script rather than a direct symlink target, per spec.md §4.7's table.
var wrapperTypes = map[string]bool{
	"exec": true, "dotnet": true, "gem": true, "java-jar": true,
	"node": true, "php": true, "python": true, "pyvenv": true, "ruby": true,
}

// symlinkTypes maps a typed bin specifier to the template used to compute
// its in-package source path, separately for POSIX and Windows.
var symlinkTypes = map[string]struct{ posix, windows string }{
	"cargo":    {"bin/%s", "bin/%s.exe"},
	"composer": {"vendor/bin/%s", "vendor/bin/%s.bat"},
	"golang":   {"%s", "%s.exe"},
	"luarocks": {"bin/%s", "bin/%s.bat"},
	"npm":      {"node_modules/.bin/%s", `node_modules\.bin\%s.cmd`},
	"nuget":    {"%s", "%s.exe"},
	"opam":     {"bin/%s", "bin/%s.exe"},
	"pypi":     {"venv/bin/%s", `venv\Scripts\%s.exe`},
}

// IsWrapperType reports whether binType requires a generated wrapper
// script (as opposed to a plain symlink).
func IsWrapperType(binType string) bool { return wrapperTypes[binType] }

// ParseBinValue splits a recipe bin value into its optional "type:target"
// specifier, or reports it as a plain literal path when there is no colon
// (or the text before the colon isn't a recognized type, in which case the
// whole string is treated as a literal path containing a colon).
func ParseBinValue(value string) (binType, target string, typed bool) {
	i := strings.Index(value, ":")
	if i < 0 {
		return "", value, false
	}
	candidate := value[:i]
	if candidate == "" {
		return "", value, false
	}
	if !IsWrapperType(candidate) {
		if _, ok := symlinkTypes[candidate]; !ok {
			return "", value, false
		}
	}
	return candidate, value[i+1:], true
}

// SourcePath computes the in-package path a plain or typed (non-wrapper)
// bin value resolves to, for the given OS ("windows" or anything else for
// POSIX). Wrapper types have no fixed source path here; see
// WrapperSourcePath.
func SourcePath(binType, target, goos string) (string, error) {
	if binType == "" {
		return target, nil
	}
	tmpl, ok := symlinkTypes[binType]
	if !ok {
		return "", fmt.Errorf("linker: %q is not a plain symlink bin type", binType)
	}
	if goos == "windows" {
		return fmt.Sprintf(tmpl.windows, target), nil
	}
	return fmt.Sprintf(tmpl.posix, target), nil
}

// WrapperSourcePath computes where a generated wrapper script for a given
// bin destination name is written inside the package directory. Mason has
// no single canonical wrapper location in the registry schema itself, so
// this repository writes wrappers under a dedicated subdirectory keyed by
// the exported bin name, keeping the package's own tree (node_modules/,
// venv/, vendor/...) untouched.
func WrapperSourcePath(destName, goos string) string {
	name := destName
	if goos == "windows" {
		name += ".cmd"
	}
	return filepath.Join("mason-wrappers", name)
}
