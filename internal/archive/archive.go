// Package archive classifies and extracts the archive formats Mason
// encounters in upstream releases, and streams downloads with progress
// reporting.
package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

// Format identifies a recognized archive kind.
type Format string

const (
	FormatTarGz  Format = "tar.gz"
	FormatTarBz2 Format = "tar.bz2"
	FormatTarXz  Format = "tar.xz"
	FormatTar    Format = "tar"
	FormatGz     Format = "gz"
	FormatZip    Format = "zip"
	FormatVsix   Format = "vsix"
	FormatNone   Format = ""
)

// Classify inspects a filename's trailing suffixes and returns the archive
// format, or FormatNone if the file is not a recognized archive.
func Classify(name string) Format {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return FormatTarGz
	case strings.HasSuffix(lower, ".tar.bz2"), strings.HasSuffix(lower, ".tbz2"):
		return FormatTarBz2
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		return FormatTarXz
	case strings.HasSuffix(lower, ".tar"):
		return FormatTar
	case strings.HasSuffix(lower, ".vsix"):
		return FormatVsix
	case strings.HasSuffix(lower, ".zip"):
		return FormatZip
	case strings.HasSuffix(lower, ".gz"):
		return FormatGz
	default:
		return FormatNone
	}
}

// IsExtractable reports whether Classify recognizes name as an archive.
func IsExtractable(name string) bool {
	return Classify(name) != FormatNone
}

// Extract extracts path (whose format is inferred from its name) into the
// out directory, which must already exist. It refuses to write outside out,
// guarding against both `..` path-traversal entries and symlink targets that
// would escape the destination.
func Extract(path, out string) error {
	switch Classify(path) {
	case FormatTarGz:
		return extractTar(path, out, func(r io.Reader) (io.Reader, func() error, error) {
			gzr, err := gzip.NewReader(r)
			if err != nil {
				return nil, nil, fmt.Errorf("gzip: %w", err)
			}
			return gzr, gzr.Close, nil
		})
	case FormatTarBz2:
		return extractTar(path, out, func(r io.Reader) (io.Reader, func() error, error) {
			return bzip2.NewReader(r), func() error { return nil }, nil
		})
	case FormatTarXz:
		return extractTar(path, out, func(r io.Reader) (io.Reader, func() error, error) {
			xzr, err := xz.NewReader(r)
			if err != nil {
				return nil, nil, fmt.Errorf("xz: %w", err)
			}
			return xzr, func() error { return nil }, nil
		})
	case FormatTar:
		return extractTar(path, out, func(r io.Reader) (io.Reader, func() error, error) {
			return r, func() error { return nil }, nil
		})
	case FormatZip, FormatVsix:
		return extractZip(path, out)
	case FormatGz:
		return extractGz(path, out)
	default:
		return fmt.Errorf("archive: %s is not a recognized archive format", path)
	}
}

func extractGz(path, out string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gzr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("gzip: %w", err)
	}
	defer gzr.Close()

	stem := strings.TrimSuffix(filepath.Base(path), ".gz")
	target := filepath.Join(out, stem)
	if !isWithin(target, out) {
		return fmt.Errorf("archive: entry %s escapes destination", stem)
	}

	outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer outFile.Close()

	_, err = io.Copy(outFile, gzr)
	return err
}

func extractTar(path, out string, wrap func(io.Reader) (io.Reader, func() error, error)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r, closeFn, err := wrap(f)
	if err != nil {
		return err
	}
	defer closeFn()

	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("archive: reading tar header: %w", err)
		}

		name := strings.TrimPrefix(header.Name, "./")
		if name == "" || name == "." {
			continue
		}
		target := filepath.Join(out, name)
		if !isWithin(target, out) {
			return fmt.Errorf("archive: entry %s escapes destination", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode&0o777))
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			out.Close()
		case tar.TypeSymlink:
			if err := validateSymlinkTarget(header.Linkname, target, out); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			os.Remove(target)
			if err := os.Symlink(header.Linkname, target); err != nil {
				return err
			}
		}
	}
}

func extractZip(path, out string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := strings.TrimPrefix(f.Name, "./")
		if name == "" {
			continue
		}
		target := filepath.Join(out, name)
		if !isWithin(target, out) {
			return fmt.Errorf("archive: entry %s escapes destination", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}

		rc, err := f.Open()
		if err != nil {
			return err
		}
		outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.Mode())
		if err != nil {
			rc.Close()
			return err
		}
		_, err = io.Copy(outFile, rc)
		outFile.Close()
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// isWithin reports whether target is base or a descendant of base.
func isWithin(target, base string) bool {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return false
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return false
	}
	return absTarget == absBase || strings.HasPrefix(absTarget, absBase+string(os.PathSeparator))
}

// validateSymlinkTarget rejects absolute symlink targets and any relative
// target that would resolve outside destDir.
func validateSymlinkTarget(linkTarget, linkLocation, destDir string) error {
	if filepath.IsAbs(linkTarget) {
		return fmt.Errorf("archive: absolute symlink target not allowed: %s -> %s", linkLocation, linkTarget)
	}
	resolved := filepath.Join(filepath.Dir(linkLocation), linkTarget)
	if !isWithin(resolved, destDir) {
		return fmt.Errorf("archive: symlink target escapes destination: %s -> %s", linkLocation, linkTarget)
	}
	return nil
}
