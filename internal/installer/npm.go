package installer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/mason-org/mason-go/internal/recipe"
)

// npmHandler pins a shallow install strategy via .npmrc, then installs the
// named package and any extra packages the recipe lists.
type npmHandler struct{}

func (npmHandler) Install(ctx context.Context, ws *Workspace, pkg *recipe.Package) error {
	name := pkg.PURL.Name
	version := pkg.PURL.Version
	if !validName(name) || !validVersion(version) {
		return fmt.Errorf("npm: invalid package spec %s@%s", name, version)
	}
	for _, extra := range pkg.ExtraPackages {
		if !validName(extra) {
			return fmt.Errorf("npm: invalid extra package %q", extra)
		}
	}

	npmrc := filepath.Join(ws.Dir, ".npmrc")
	if err := os.WriteFile(npmrc, []byte("install-strategy=shallow\n"), 0o644); err != nil {
		return fmt.Errorf("npm: writing .npmrc: %w", err)
	}

	initCmd := exec.CommandContext(ctx, "npm", "init", "--yes", "--scope=mason")
	initCmd.Dir = ws.Dir
	initCmd.Env = ws.Env
	if err := runAndWrap(initCmd, "npm init"); err != nil {
		return err
	}

	args := []string{"install", fmt.Sprintf("%s@%s", name, version)}
	args = append(args, pkg.ExtraPackages...)

	installCmd := exec.CommandContext(ctx, "npm", args...)
	installCmd.Dir = ws.Dir
	installCmd.Env = ws.Env
	return runAndWrap(installCmd, "npm install "+name)
}
