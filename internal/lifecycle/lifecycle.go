// Package lifecycle orchestrates a single package's install and uninstall
// (spec.md §4.8): resolve, dispatch, build, link, commit the receipt, and
// roll back cleanly on any failure along the way.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mason-org/mason-go/internal/config"
	"github.com/mason-org/mason-go/internal/installer"
	"github.com/mason-org/mason-go/internal/linker"
	"github.com/mason-org/mason-go/internal/masonerr"
	"github.com/mason-org/mason-go/internal/purl"
	"github.com/mason-org/mason-go/internal/receipt"
	"github.com/mason-org/mason-go/internal/recipe"
)

// Install performs mkdir(pkgdir) -> dispatch -> build.run -> link -> write
// receipt, exactly the order spec.md §4.8 requires. pkgSource is the
// original PURL string recorded on the receipt as primary_source.id. Any
// failure removes every link this call created, and removes pkgdir if this
// call created it. An already existing pkgdir is installed into in place
// and is neither removed nor restored on failure.
func Install(ctx context.Context, cfg *config.Config, p purl.PURL, pkgSource string, pkg *recipe.Package) (err error) {
	pkgDir := cfg.PackageDir(pkg.Name)

	journal := newJournal(pkgDir)
	defer func() {
		if err != nil {
			journal.rollback()
		}
	}()

	if err := journal.mkdirAll(pkgDir); err != nil {
		return err
	}

	ws := installer.NewWorkspace(pkgDir)
	if err := installer.Install(ctx, ws, pkg); err != nil {
		return err
	}
	if err := installer.RunBuild(ctx, ws, pkg.Build); err != nil {
		return err
	}

	linked, err := linker.Link(linker.Dirs{Bin: cfg.BinDir, Share: cfg.ShareDir, Opt: cfg.OptDir}, pkgDir, pkg)
	if err != nil {
		return err
	}
	journal.recordLinks(linked)

	binLinks, shareLinks, optLinks := splitLinks(linked, cfg)
	r, err := receipt.New(pkg.Name, pkgSource, pkgDir, binLinks, shareLinks, optLinks, cfg.BinDir, filepath.Join(cfg.ShareDir, pkg.Name), filepath.Join(cfg.OptDir, pkg.Name))
	if err != nil {
		return err
	}
	if err := receipt.Write(pkgDir, r); err != nil {
		return err
	}

	journal.commit()
	return nil
}

// Uninstall reads name's receipt and removes exactly the recorded link
// destinations, then the package directory itself (spec.md §4.8).
func Uninstall(cfg *config.Config, name string) error {
	pkgDir := cfg.PackageDir(name)
	r, err := receipt.Read(pkgDir)
	if err != nil {
		if os.IsNotExist(err) {
			return masonerr.NotFound(name)
		}
		return err
	}

	for _, dest := range receipt.AllDestinations(r, cfg.BinDir, cfg.ShareDir, cfg.OptDir) {
		if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("lifecycle: removing %s: %w", dest, err)
		}
	}

	return guardedRemoveAll(cfg.DataDir, pkgDir)
}

// guardedRemoveAll refuses to remove any path not rooted under dataDir,
// defending against a runaway template expansion having produced an
// absurd package directory (spec.md §4.8).
func guardedRemoveAll(dataDir, path string) error {
	absData, err := filepath.Abs(dataDir)
	if err != nil {
		return err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if absPath == absData || !strings.HasPrefix(absPath, absData+string(filepath.Separator)) {
		return fmt.Errorf("lifecycle: refusing to remove %s: not rooted under data directory %s", absPath, absData)
	}
	return os.RemoveAll(absPath)
}

func splitLinks(linked []linker.Linked, cfg *config.Config) (bin, share, opt []linker.Linked) {
	for _, l := range linked {
		switch {
		case strings.HasPrefix(l.Path, cfg.BinDir+string(filepath.Separator)):
			bin = append(bin, l)
		case strings.HasPrefix(l.Path, cfg.ShareDir+string(filepath.Separator)):
			share = append(share, l)
		case strings.HasPrefix(l.Path, cfg.OptDir+string(filepath.Separator)):
			opt = append(opt, l)
		}
	}
	return bin, share, opt
}
