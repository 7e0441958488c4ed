package installer

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/mason-org/mason-go/internal/recipe"
)

// opamHandler installs an OCaml package into the package directory via
// opam's --destdir mechanism.
type opamHandler struct{}

func (opamHandler) Install(ctx context.Context, ws *Workspace, pkg *recipe.Package) error {
	name := pkg.PURL.Name
	version := pkg.PURL.Version
	if !validName(name) || !validVersion(version) {
		return fmt.Errorf("opam: invalid package spec %s.%s", name, version)
	}

	spec := fmt.Sprintf("%s.%s", name, version)
	cmd := exec.CommandContext(ctx, "opam", "install", "--destdir=.", "--yes", "--verbose", spec)
	cmd.Dir = ws.Dir
	cmd.Env = ws.Env
	return runAndWrap(cmd, "opam install "+spec)
}
