package installer

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/mason-org/mason-go/internal/recipe"
)

// luarocksHandler installs into a package-local rocks tree.
type luarocksHandler struct{}

func (luarocksHandler) Install(ctx context.Context, ws *Workspace, pkg *recipe.Package) error {
	name := pkg.PURL.Name
	version := pkg.PURL.Version
	if !validName(name) || !validVersion(version) {
		return fmt.Errorf("luarocks: invalid package spec %s@%s", name, version)
	}

	args := []string{"install", "--tree", ".", name, version}
	if server, ok := pkg.PURL.Qualifiers["repository_url"]; ok && server != "" {
		args = append(args, "--server", server)
	}
	if dev, ok := pkg.PURL.Qualifiers["dev"]; ok && dev == "true" {
		args = append(args, "--dev")
	}

	cmd := exec.CommandContext(ctx, "luarocks", args...)
	cmd.Dir = ws.Dir
	cmd.Env = ws.Env
	return runAndWrap(cmd, "luarocks install "+name)
}
