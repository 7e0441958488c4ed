package installer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mason-org/mason-go/internal/archive"
	"github.com/mason-org/mason-go/internal/recipe"
)

// githubHandler either downloads named release assets (when pkg.Files is
// present) or shallow-clones/fetches the tagged repo, per spec.md §4.6.
type githubHandler struct{}

func (h githubHandler) Install(ctx context.Context, ws *Workspace, pkg *recipe.Package) error {
	if pkg.Files != nil {
		return h.installFiles(ctx, ws, pkg)
	}
	return h.installClone(ctx, ws, pkg)
}

// installFiles handles pkg.Files entries of the form "source",
// "source:dest/" (download into a destination directory), or "source:dest"
// (download then move to dest).
func (h githubHandler) installFiles(ctx context.Context, ws *Workspace, pkg *recipe.Package) error {
	entries, err := filesAsList(pkg.Files)
	if err != nil {
		return err
	}

	dl := archive.NewDownloader()
	for _, entry := range entries {
		source, dest, destIsDir := splitFileEntry(entry)
		url := downloadURL(pkg, source)

		var tmp string
		switch {
		case destIsDir:
			// Download-then-move: stage under a unique name so concurrent
			// entries that share a basename, or a stale file already at
			// that basename in pkgDir, can never collide with the rename
			// below (spec.md §4.6: "download into dest directory").
			tmp = filepath.Join(ws.Dir, fmt.Sprintf(".mason-staging-%s", uuid.NewString()))
		case dest == "":
			tmp = filepath.Join(ws.Dir, filepath.Base(source))
		default:
			tmp = filepath.Join(ws.Dir, dest)
		}
		if err := os.MkdirAll(filepath.Dir(tmp), 0o755); err != nil {
			return err
		}

		if err := dl.Download(ctx, url, tmp); err != nil {
			return err
		}

		if destIsDir {
			destDir := filepath.Join(ws.Dir, strings.TrimSuffix(dest, "/"))
			if err := os.MkdirAll(destDir, 0o755); err != nil {
				return err
			}
			finalPath := filepath.Join(destDir, filepath.Base(source))
			if err := os.Rename(tmp, finalPath); err != nil {
				return err
			}
			tmp = finalPath
		}

		if archive.IsExtractable(source) {
			if err := archive.Extract(tmp, filepath.Dir(tmp)); err != nil {
				return err
			}
		}
	}
	return nil
}

// filesAsList normalizes Files into an ordered list of entries, accepting
// either a []string (github/openvsx's usual shape) or a map whose keys are
// the entries (defensive, in case a recipe authored it as a set).
func filesAsList(files any) ([]string, error) {
	switch v := files.(type) {
	case []string:
		return v, nil
	case map[string]string:
		out := make([]string, 0, len(v))
		for k := range v {
			out = append(out, k)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("github: unsupported files shape %T", files)
	}
}

// splitFileEntry parses "source", "source:dest/", or "source:dest". When
// source is a URL, the colons of its scheme and host:port stay part of it.
func splitFileEntry(entry string) (source, dest string, destIsDir bool) {
	prefix, rest := "", entry
	if i := strings.Index(entry, "://"); i >= 0 {
		j := strings.Index(entry[i+3:], "/")
		if j < 0 {
			return entry, "", false
		}
		prefix, rest = entry[:i+3+j], entry[i+3+j:]
	}
	source, dest, ok := strings.Cut(rest, ":")
	source = prefix + source
	if !ok {
		return entry, "", false
	}
	if strings.HasSuffix(dest, "/") {
		return source, dest, true
	}
	return source, dest, false
}

// downloadURL builds the GitHub release asset URL for a bare asset name.
// Recipes may also specify a fully-qualified URL as the source, in which
// case it is used verbatim.
func downloadURL(pkg *recipe.Package, source string) string {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return source
	}
	repo := strings.TrimPrefix(pkg.PURL.Namespace+"/"+pkg.PURL.Name, "/")
	return fmt.Sprintf("https://github.com/%s/releases/download/%s/%s", repo, pkg.PURL.Version, source)
}

// installClone shallow-clones the repo at the resolved tag (or fetches and
// resets if a .git directory is already present from a previous attempt).
func (h githubHandler) installClone(ctx context.Context, ws *Workspace, pkg *recipe.Package) error {
	repo := fmt.Sprintf("https://github.com/%s/%s.git", pkg.PURL.Namespace, pkg.PURL.Name)
	version := pkg.PURL.Version
	if !validFlagValue(version) {
		return fmt.Errorf("github: invalid tag %q", version)
	}

	if _, err := os.Stat(filepath.Join(ws.Dir, ".git")); err == nil {
		fetch := exec.CommandContext(ctx, "git", "fetch", "--depth=1", "--tags", "origin", version)
		fetch.Dir = ws.Dir
		fetch.Env = ws.Env
		if err := runAndWrap(fetch, "git fetch"); err != nil {
			return err
		}
		reset := exec.CommandContext(ctx, "git", "reset", "--hard", version)
		reset.Dir = ws.Dir
		reset.Env = ws.Env
		return runAndWrap(reset, "git reset")
	}

	clone := exec.CommandContext(ctx, "git", "clone", "--depth=1", repo, ".")
	clone.Dir = ws.Dir
	clone.Env = ws.Env
	if err := runAndWrap(clone, "git clone"); err != nil {
		return err
	}
	fetchTag := exec.CommandContext(ctx, "git", "fetch", "--depth=1", "--tags", "origin", version)
	fetchTag.Dir = ws.Dir
	fetchTag.Env = ws.Env
	if err := runAndWrap(fetchTag, "git fetch tag"); err != nil {
		return err
	}
	checkout := exec.CommandContext(ctx, "git", "checkout", version)
	checkout.Dir = ws.Dir
	checkout.Env = ws.Env
	return runAndWrap(checkout, "git checkout")
}
