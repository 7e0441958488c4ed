package installer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mason-org/mason-go/internal/archive"
	"github.com/mason-org/mason-go/internal/recipe"
)

// defaultOpenvsxBaseURL is the Open VSX registry's file API root.
const defaultOpenvsxBaseURL = "https://open-vsx.org/api"

// openvsxHandler downloads each file in pkg.Files from the Open VSX
// registry's per-version file API, extracting anything extractable (the
// .vsix package itself, typically). baseURL is overridable in tests.
type openvsxHandler struct {
	baseURL    string
	downloader downloader
}

func (h openvsxHandler) Install(ctx context.Context, ws *Workspace, pkg *recipe.Package) error {
	entries, err := filesAsList(pkg.Files)
	if err != nil {
		return err
	}

	base := h.baseURL
	if base == "" {
		base = defaultOpenvsxBaseURL
	}
	dl := h.downloader
	if dl == nil {
		dl = archive.NewDownloader()
	}

	for _, file := range entries {
		url := fmt.Sprintf("%s/%s/%s/%s/file/%s",
			base, pkg.PURL.Namespace, pkg.PURL.Name, pkg.PURL.Version, file)
		dest := filepath.Join(ws.Dir, filepath.Base(file))
		if err := dl.Download(ctx, url, dest); err != nil {
			return err
		}
		if archive.IsExtractable(file) {
			if err := archive.Extract(dest, ws.Dir); err != nil {
				return err
			}
		}
	}
	return nil
}
