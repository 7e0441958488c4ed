package installer

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/mason-org/mason-go/internal/recipe"
)

// gemHandler installs the Ruby gem into the package directory, grounded on
// the teacher's internal/actions/gem_install.go GEM_HOME/bindir convention.
type gemHandler struct{}

func (gemHandler) Install(ctx context.Context, ws *Workspace, pkg *recipe.Package) error {
	name := pkg.PURL.Name
	version := pkg.PURL.Version
	if !validName(name) || !validVersion(version) {
		return fmt.Errorf("gem: invalid package spec %s@%s", name, version)
	}

	cmd := exec.CommandContext(ctx, "gem", "install", name,
		"--version", version,
		"--install-dir", ".",
		"--bindir", "./bin",
		"--no-user-install",
		"--no-document",
	)
	cmd.Dir = ws.Dir
	cmd.Env = ws.WithEnv("GEM_HOME", ws.Dir).Env
	return runAndWrap(cmd, "gem install "+name)
}
