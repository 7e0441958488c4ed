package installer

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/mason-org/mason-go/internal/recipe"
)

// pypiHandler creates a virtual environment with access to system site
// packages, then uses its interpreter to install the package.
type pypiHandler struct{}

func (pypiHandler) Install(ctx context.Context, ws *Workspace, pkg *recipe.Package) error {
	name := pkg.PURL.Name
	version := pkg.PURL.Version
	if !validName(name) || !validVersion(version) {
		return fmt.Errorf("pypi: invalid package spec %s==%s", name, version)
	}
	for _, extra := range pkg.ExtraPackages {
		if !validName(extra) {
			return fmt.Errorf("pypi: invalid extra package %q", extra)
		}
	}

	venvCmd := exec.CommandContext(ctx, "python3", "-m", "venv", "--system-site-packages", "venv")
	venvCmd.Dir = ws.Dir
	venvCmd.Env = ws.Env
	if err := runAndWrap(venvCmd, "python -m venv"); err != nil {
		return err
	}

	spec := name
	if extra, ok := pkg.PURL.Qualifiers["extra"]; ok && validFlagValue(extra) {
		spec = fmt.Sprintf("%s[%s]", name, extra)
	}
	spec = fmt.Sprintf("%s==%s", spec, version)

	pipArgs := []string{"-m", "pip", "install", "--ignore-installed", "-U", spec}
	pipArgs = append(pipArgs, pkg.ExtraPackages...)

	python := filepath.Join(ws.Dir, "venv", "bin", "python")
	pipCmd := exec.CommandContext(ctx, python, pipArgs...)
	pipCmd.Dir = ws.Dir
	pipCmd.Env = ws.Env
	return runAndWrap(pipCmd, "pip install "+spec)
}
