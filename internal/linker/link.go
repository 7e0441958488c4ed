package linker

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mason-org/mason-go/internal/masonerr"
	"github.com/mason-org/mason-go/internal/recipe"
)

// Dirs names the three destination roots a package can link into, relative
// to the Mason data directory (spec.md §4.7): bin/, share/<pkg>/, opt/<pkg>/.
type Dirs struct {
	Bin   string
	Share string
	Opt   string
}

// Linked records one created filesystem entry, in the order it was made, so
// a failed install can unwind exactly what it built (spec.md §6's journaled
// rollback, Open Question O-2).
type Linked struct {
	Path      string // absolute destination path
	IsSymlink bool
}

// Link walks pkg's Bin/Share/Opt maps and creates every symlink (and, for
// wrapper bin types, the wrapper script backing it) under dirs. On any
// failure it unlinks everything it already created and returns the error;
// a partial package is never left linked.
func Link(dirs Dirs, pkgDir string, pkg *recipe.Package) ([]Linked, error) {
	var created []Linked

	rollback := func(err error) ([]Linked, error) {
		for i := len(created) - 1; i >= 0; i-- {
			os.Remove(created[i].Path)
		}
		return nil, err
	}

	for name, value := range pkg.Bin {
		linked, err := linkBin(dirs.Bin, pkgDir, name, value)
		if err != nil {
			return rollback(err)
		}
		created = append(created, linked...)
	}

	for name, source := range pkg.Share {
		linked, err := mirror(filepath.Join(dirs.Share, pkg.Name), pkgDir, name, source)
		if err != nil {
			return rollback(err)
		}
		created = append(created, linked...)
	}

	for name, source := range pkg.Opt {
		linked, err := mirror(filepath.Join(dirs.Opt, pkg.Name), pkgDir, name, source)
		if err != nil {
			return rollback(err)
		}
		created = append(created, linked...)
	}

	return created, nil
}

// linkBin resolves one bin entry (name -> value, where value is either a
// literal in-package path or a "type:target" specifier) and creates the
// destination symlink at binDir/name, generating a wrapper script first
// when the bin type demands one.
func linkBin(binDir, pkgDir, name, value string) ([]Linked, error) {
	goos := runtime.GOOS
	binType, target, typed := ParseBinValue(value)

	destName := name
	if goos == "windows" {
		destName += ".exe"
	}
	dest := filepath.Join(binDir, destName)

	if typed && IsWrapperType(binType) {
		script, err := WrapperScript(binType, target, pkgDir, goos)
		if err != nil {
			return nil, err
		}
		wrapperRel := WrapperSourcePath(name, goos)
		wrapperPath := filepath.Join(pkgDir, wrapperRel)
		if err := writeWrapperAtomic(wrapperPath, script); err != nil {
			return nil, err
		}
		if goos == "windows" {
			dest = filepath.Join(binDir, name+".cmd")
		}
		if err := symlink(wrapperPath, dest); err != nil {
			return nil, err
		}
		return []Linked{{Path: dest, IsSymlink: true}}, nil
	}

	source, err := SourcePath(binType, target, goos)
	if err != nil {
		return nil, err
	}
	sourcePath := filepath.Join(pkgDir, source)

	if goos != "windows" {
		if err := os.Chmod(sourcePath, 0o755); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("linker: chmod %s: %w", sourcePath, err)
		}
	}

	if err := symlink(sourcePath, dest); err != nil {
		return nil, err
	}
	return []Linked{{Path: dest, IsSymlink: true}}, nil
}

// mirror links every file under pkgDir/source into destRoot/name, preserving
// the relative tree, when source names a directory; for a single file it
// creates exactly one symlink at destRoot/name (spec.md §4.7's share/opt
// per-file expansion, needed so uninstall can remove files one at a time).
func mirror(destRoot, pkgDir, name, source string) ([]Linked, error) {
	sourcePath := filepath.Join(pkgDir, source)
	info, err := os.Stat(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("linker: stat %s: %w", sourcePath, err)
	}

	if !info.IsDir() {
		dest := filepath.Join(destRoot, name)
		if err := symlink(sourcePath, dest); err != nil {
			return nil, err
		}
		return []Linked{{Path: dest, IsSymlink: true}}, nil
	}

	var created []Linked
	walkErr := filepath.WalkDir(sourcePath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(sourcePath, path)
		if err != nil {
			return err
		}
		dest := filepath.Join(destRoot, name, rel)
		if err := symlink(path, dest); err != nil {
			return err
		}
		created = append(created, Linked{Path: dest, IsSymlink: true})
		return nil
	})
	if walkErr != nil {
		for i := len(created) - 1; i >= 0; i-- {
			os.Remove(created[i].Path)
		}
		return nil, walkErr
	}
	return created, nil
}

// symlink creates dest -> source, making dest's parent directory as needed
// and removing a pre-existing symlink at dest first (matching the teacher's
// createSymlink idiom). A pre-existing non-symlink file is reported as
// masonerr.LinkConflict rather than clobbered.
func symlink(source, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("linker: mkdir %s: %w", filepath.Dir(dest), err)
	}

	if fi, err := os.Lstat(dest); err == nil {
		if fi.Mode()&os.ModeSymlink == 0 {
			return masonerr.LinkConflict(dest)
		}
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("linker: removing existing symlink %s: %w", dest, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("linker: lstat %s: %w", dest, err)
	}

	return os.Symlink(source, dest)
}

// writeWrapperAtomic writes a wrapper script to path via a temp-file-then-
// rename sequence so a concurrent reader never observes a partial script,
// mirroring the teacher's wrapper-writing idiom in internal/install/manager.go.
func writeWrapperAtomic(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("linker: mkdir %s: %w", filepath.Dir(path), err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(content), 0o755); err != nil {
		return fmt.Errorf("linker: writing wrapper %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("linker: renaming wrapper into place: %w", err)
	}
	return nil
}

// copyFile is kept for callers that need a real (non-symlinked) copy, e.g.
// when mirroring onto a filesystem that doesn't support symlinks.
func copyFile(source, dest string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
