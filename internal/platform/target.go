// Package platform probes the current operating system, architecture, and
// (on Linux) libc implementation, and exposes the resulting set of target
// tags that recipe variants are matched against.
package platform

import (
	"runtime"
	"sync"
)

// archMap normalizes Go's GOARCH values to the tags recipes use.
var archMap = map[string]string{
	"amd64":   "x64",
	"386":     "x86",
	"arm64":   "arm64",
	"arm":     "arm",
	"riscv64": "riscv64",
}

// systemMap normalizes Go's GOOS values to the tags recipes use.
var systemMap = map[string]string{
	"linux":   "linux",
	"darwin":  "darwin",
	"windows": "win",
}

// Tags is the set of target tags the current host satisfies. Membership,
// not order, is meaningful: IsPlatform checks set membership only.
type Tags struct {
	os     string
	arch   string
	libc   string // linux only; "gnu" or "musl"
	values map[string]struct{}
}

// OS returns the normalized operating system tag ("linux", "darwin", "win").
func (t Tags) OS() string { return t.os }

// Arch returns the normalized architecture tag (e.g. "x64", "arm64").
func (t Tags) Arch() string { return t.arch }

// Libc returns the detected libc flavor ("gnu" or "musl"), empty off Linux.
func (t Tags) Libc() string { return t.libc }

// Has reports whether tag is one of the tags produced for this host.
func (t Tags) Has(tag string) bool {
	_, ok := t.values[tag]
	return ok
}

// IsPlatform reports whether any of the requested target strings match the
// current host's tag set. target may be a single tag or (per recipe syntax)
// a list of tags, any of which is sufficient.
func (t Tags) IsPlatform(target any) bool {
	switch v := target.(type) {
	case string:
		return t.Has(v)
	case []string:
		for _, tag := range v {
			if t.Has(tag) {
				return true
			}
		}
		return false
	case []any:
		for _, tag := range v {
			if s, ok := tag.(string); ok && t.Has(s) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

var (
	probeOnce   sync.Once
	probeResult Tags
)

// Probe returns the current host's target tags, computed once per process
// and memoized thereafter.
func Probe() Tags {
	probeOnce.Do(func() {
		probeResult = probe(runtime.GOOS, runtime.GOARCH, detectLibc)
	})
	return probeResult
}

// ProbeFor builds the tag set for an arbitrary os/arch/libc-detector triple,
// independent of the host the test happens to run on. Exported for other
// packages' tests (e.g. internal/recipe) that need deterministic tags.
func ProbeFor(goos, goarch string, libcOf func() string) Tags {
	return probe(goos, goarch, libcOf)
}

// probe builds the tag set for a given os/arch/libc-detector triple. Split
// out from Probe so tests can exercise arbitrary combinations without
// depending on the host the tests happen to run on.
func probe(goos, goarch string, libcOf func() string) Tags {
	system := systemMap[goos]
	arch := archMap[goarch]

	values := map[string]struct{}{
		system + "_" + arch: {},
	}
	if goos == "windows" {
		values["win"] = struct{}{}
	} else {
		values["unix"] = struct{}{}
	}

	t := Tags{os: system, arch: arch}

	if goos == "linux" {
		libc := libcOf()
		if libc == "" {
			libc = "gnu"
		}
		t.libc = libc
		values["linux"] = struct{}{}
		values[system+"_"+arch+"_"+libc] = struct{}{}
	}

	t.values = values
	return t
}
