// Package receipt reads and writes the on-disk commit record of an install,
// <pkgdir>/mason-receipt.json (spec.md §6). Its presence is the only
// distinction between "installed" and "orphaned, about to be overwritten".
package receipt

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mason-org/mason-go/internal/linker"
)

// FileName is the receipt's fixed basename inside a package directory.
const FileName = "mason-receipt.json"

// PrimarySource carries the original PURL string the package was resolved
// from, so a later search/upgrade can re-derive the recipe without
// re-parsing the install-time arguments.
type PrimarySource struct {
	ID string `json:"id"`
}

// Links is the exported-path -> in-package-path map for one destination
// root (bin, share, or opt). Directory-typed share/opt sources are expanded
// to one entry per contained file at receipt-write time, so uninstall never
// has to re-walk a directory to know what it owns.
type Links map[string]string

// Receipt is the full on-disk record written on successful install.
type Receipt struct {
	Name          string        `json:"name"`
	PrimarySource PrimarySource `json:"primary_source"`
	Links         struct {
		Bin   Links `json:"bin"`
		Share Links `json:"share"`
		Opt   Links `json:"opt"`
	} `json:"links"`
}

// New builds a Receipt from the linked destinations produced by
// linker.Link, expressing each as exported-path (relative to its dest root)
// -> in-package-path.
func New(name, purlString string, pkgDir string, binLinks, shareLinks, optLinks []linker.Linked, binDir, shareDir, optDir string) (*Receipt, error) {
	r := &Receipt{Name: name}
	r.PrimarySource.ID = purlString

	bin, err := toLinks(binLinks, binDir, pkgDir)
	if err != nil {
		return nil, err
	}
	share, err := toLinks(shareLinks, shareDir, pkgDir)
	if err != nil {
		return nil, err
	}
	opt, err := toLinks(optLinks, optDir, pkgDir)
	if err != nil {
		return nil, err
	}
	r.Links.Bin = bin
	r.Links.Share = share
	r.Links.Opt = opt
	return r, nil
}

func toLinks(linked []linker.Linked, destRoot, pkgDir string) (Links, error) {
	out := make(Links, len(linked))
	for _, l := range linked {
		exported, err := filepath.Rel(destRoot, l.Path)
		if err != nil {
			return nil, fmt.Errorf("receipt: %s is not under %s: %w", l.Path, destRoot, err)
		}
		inPkg, err := resolveInPackagePath(l.Path, pkgDir)
		if err != nil {
			return nil, err
		}
		out[exported] = inPkg
	}
	return out, nil
}

// resolveInPackagePath follows l.Path's symlink target (or, for a wrapper,
// the wrapper script's own path) and expresses it relative to pkgDir.
func resolveInPackagePath(destPath, pkgDir string) (string, error) {
	target, err := os.Readlink(destPath)
	if err != nil {
		return "", fmt.Errorf("receipt: reading symlink %s: %w", destPath, err)
	}
	rel, err := filepath.Rel(pkgDir, target)
	if err != nil {
		return "", fmt.Errorf("receipt: %s is not under package dir %s: %w", target, pkgDir, err)
	}
	return rel, nil
}

// Write marshals r as indented, key-ordered JSON to <pkgDir>/mason-receipt.json.
// encoding/json already sorts map keys and struct fields are declared in a
// fixed order, so two installs of the same package produce byte-identical
// output (spec.md §8's receipt-idempotence property).
func Write(pkgDir string, r *Receipt) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("receipt: marshaling: %w", err)
	}
	data = append(data, '\n')
	return os.WriteFile(filepath.Join(pkgDir, FileName), data, 0o644)
}

// Read loads the receipt from pkgDir, or returns os.ErrNotExist (wrapped)
// if the package was never fully installed.
func Read(pkgDir string) (*Receipt, error) {
	data, err := os.ReadFile(filepath.Join(pkgDir, FileName))
	if err != nil {
		return nil, err
	}
	var r Receipt
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("receipt: parsing %s: %w", filepath.Join(pkgDir, FileName), err)
	}
	return &r, nil
}

// Exists reports whether pkgDir has a committed receipt.
func Exists(pkgDir string) bool {
	_, err := os.Stat(filepath.Join(pkgDir, FileName))
	return err == nil
}

// AllDestinations returns every exported destination path this receipt
// owns, across bin/share/opt, rooted at the given dest directories — the
// exact set uninstall must remove (spec.md §4.8: "removes exactly the
// recorded link destinations"). share/opt entries live under a
// per-package subdirectory named after r.Name.
func AllDestinations(r *Receipt, binDir, shareDir, optDir string) []string {
	var out []string
	for dest := range r.Links.Bin {
		out = append(out, filepath.Join(binDir, dest))
	}
	for dest := range r.Links.Share {
		out = append(out, filepath.Join(shareDir, r.Name, dest))
	}
	for dest := range r.Links.Opt {
		out = append(out, filepath.Join(optDir, r.Name, dest))
	}
	return out
}
