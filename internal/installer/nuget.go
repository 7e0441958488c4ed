package installer

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/mason-org/mason-go/internal/recipe"
)

// nugetHandler installs a .NET global tool into the package directory.
type nugetHandler struct{}

func (nugetHandler) Install(ctx context.Context, ws *Workspace, pkg *recipe.Package) error {
	name := pkg.PURL.Name
	version := pkg.PURL.Version
	if !validName(name) || !validVersion(version) {
		return fmt.Errorf("nuget: invalid package spec %s@%s", name, version)
	}

	cmd := exec.CommandContext(ctx, "dotnet", "tool", "update",
		"--tool-path", ".", "--version", version, name)
	cmd.Dir = ws.Dir
	cmd.Env = ws.Env
	return runAndWrap(cmd, "dotnet tool update "+name)
}
