package installer

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/mason-org/mason-go/internal/recipe"
)

// golangHandler runs `go install` with GOBIN pointed at the package
// directory and CGO_ENABLED=0, grounded on the teacher's
// internal/actions/go_install.go; GOPROXY and GOSUMDB are inherited as-is.
type golangHandler struct{}

func (golangHandler) Install(ctx context.Context, ws *Workspace, pkg *recipe.Package) error {
	if !validVersion(pkg.PURL.Version) {
		return fmt.Errorf("golang: invalid version %q", pkg.PURL.Version)
	}

	importPath := pkg.PURL.Namespace + "/" + pkg.PURL.Name
	if pkg.PURL.Subpath != "" {
		importPath += "/" + pkg.PURL.Subpath
	}
	spec := fmt.Sprintf("%s@%s", importPath, pkg.PURL.Version)

	cmd := exec.CommandContext(ctx, "go", "install", "-v", spec)
	cmd.Dir = ws.Dir
	env := ws.WithEnv("GOBIN", ws.Dir).Env
	env = setEnv(env, "CGO_ENABLED", "0")
	cmd.Env = env
	return runAndWrap(cmd, "go install "+spec)
}
