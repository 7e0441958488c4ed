package installer

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/mason-org/mason-go/internal/recipe"
)

// cargoHandler invokes the Rust package installer with --root isolation,
// grounded on the teacher's internal/actions/cargo_install.go (charset
// validation ahead of exec.CommandContext). It runs with the workspace
// environment, i.e. the inherited process environment plus PWD.
type cargoHandler struct{}

func (cargoHandler) Install(ctx context.Context, ws *Workspace, pkg *recipe.Package) error {
	name := pkg.PURL.Name
	version := pkg.PURL.Version
	if !validName(name) {
		return fmt.Errorf("cargo: invalid crate name %q", name)
	}

	args := []string{"install", "--root", "."}

	if repo, ok := pkg.PURL.Qualifiers["repository_url"]; ok && repo != "" {
		args = append(args, "--git", repo)
		if rev, ok := pkg.PURL.Qualifiers["rev"]; ok && rev == "true" {
			if !validFlagValue(version) {
				return fmt.Errorf("cargo: invalid rev %q", version)
			}
			args = append(args, "--rev", version)
		} else {
			if !validFlagValue(version) {
				return fmt.Errorf("cargo: invalid tag %q", version)
			}
			args = append(args, "--tag", version)
		}
	} else {
		if !validVersion(version) {
			return fmt.Errorf("cargo: invalid version %q", version)
		}
		args = append(args, "--version", version)
	}

	if features, ok := pkg.PURL.Qualifiers["features"]; ok && validFlagValue(features) {
		args = append(args, "--features", features)
	}
	if locked, ok := pkg.PURL.Qualifiers["locked"]; ok && locked == "true" {
		args = append(args, "--locked")
	}

	args = append(args, name)

	cmd := exec.CommandContext(ctx, "cargo", args...)
	cmd.Dir = ws.Dir
	cmd.Env = ws.Env
	return runAndWrap(cmd, "cargo "+name)
}
