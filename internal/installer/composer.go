package installer

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/mason-org/mason-go/internal/recipe"
)

// composerHandler initializes a non-interactive PHP project (stability
// stable) and requires the PURL's namespace/name at the resolved version.
type composerHandler struct{}

func (composerHandler) Install(ctx context.Context, ws *Workspace, pkg *recipe.Package) error {
	namespace := pkg.PURL.Namespace
	name := pkg.PURL.Name
	version := pkg.PURL.Version
	if !validName(namespace) || !validName(name) || !validVersion(version) {
		return fmt.Errorf("composer: invalid package spec %s/%s@%s", namespace, name, version)
	}

	initCmd := exec.CommandContext(ctx, "composer", "init",
		"--no-interaction", "--stability=stable", "--name=mason/mason-installed")
	initCmd.Dir = ws.Dir
	initCmd.Env = ws.Env
	if err := runAndWrap(initCmd, "composer init"); err != nil {
		return err
	}

	spec := fmt.Sprintf("%s/%s:%s", namespace, name, version)
	reqCmd := exec.CommandContext(ctx, "composer", "require", "--no-interaction", spec)
	reqCmd.Dir = ws.Dir
	reqCmd.Env = ws.Env
	return runAndWrap(reqCmd, "composer require "+spec)
}
