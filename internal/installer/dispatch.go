package installer

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mason-org/mason-go/internal/masonerr"
	"github.com/mason-org/mason-go/internal/recipe"
)

// downloader abstracts archive.Downloader so tests can inject a fake.
type downloader interface {
	Download(ctx context.Context, url, dest string) error
}

// Handler is the one method every ecosystem installer implements: fetch
// and/or build pkg's artifacts into ws.Dir. Implementations run with the
// current working directory set to ws.Dir (spec.md §4.6).
type Handler interface {
	Install(ctx context.Context, ws *Workspace, pkg *recipe.Package) error
}

// registry maps a PURL type to its handler, populated once at init. Each
// handler is stateless so a single shared instance is safe to reuse.
var registry = map[string]Handler{
	"cargo":    cargoHandler{},
	"composer": composerHandler{},
	"gem":      gemHandler{},
	"generic":  genericHandler{},
	"github":   githubHandler{},
	"golang":   golangHandler{},
	"luarocks": luarocksHandler{},
	"npm":      npmHandler{},
	"nuget":    nugetHandler{},
	"opam":     opamHandler{},
	"openvsx":  openvsxHandler{},
	"pypi":     pypiHandler{},
}

// Lookup returns the handler registered for purlType, per spec.md §4.6's
// dispatch table.
func Lookup(purlType string) (Handler, bool) {
	h, ok := registry[purlType]
	return h, ok
}

// Install dispatches pkg to its ecosystem handler, failing with
// UnsupportedInstaller if the PURL type has none (spec.md §4.6/§7).
func Install(ctx context.Context, ws *Workspace, pkg *recipe.Package) error {
	h, ok := Lookup(pkg.PURL.Type)
	if !ok {
		return masonerr.UnsupportedInstaller(pkg.Name, pkg.PURL.Type)
	}
	return h.Install(ctx, ws, pkg)
}

// RunBuild executes the recipe's optional build.run commands sequentially
// through the system shell, in ws.Dir, with ws.Env plus build.Env layered
// on top. Any non-zero exit aborts the install (spec.md §4.6).
func RunBuild(ctx context.Context, ws *Workspace, build *recipe.Build) error {
	if build == nil || strings.TrimSpace(build.Run) == "" {
		return nil
	}

	env := append([]string(nil), ws.Env...)
	for k, v := range build.Env {
		env = setEnv(env, k, v)
	}

	for _, line := range build.Cmds {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cmd := exec.CommandContext(ctx, shellPath(), shellFlag(), line)
		cmd.Dir = ws.Dir
		cmd.Env = env
		cmd.Stdout = nil
		cmd.Stderr = nil
		output, err := cmd.CombinedOutput()
		if err != nil {
			return masonerr.SubprocessFailed(line, fmt.Errorf("%w\n%s", err, output))
		}
	}
	return nil
}

func shellPath() string {
	return "/bin/sh"
}

func shellFlag() string {
	return "-c"
}

// runAndWrap runs cmd, wrapping any failure as a masonerr.SubprocessFailed
// with the combined output attached for diagnostics.
func runAndWrap(cmd *exec.Cmd, label string) error {
	output, err := cmd.CombinedOutput()
	if err != nil {
		return masonerr.SubprocessFailed(label, fmt.Errorf("%w\n%s", err, output))
	}
	return nil
}
