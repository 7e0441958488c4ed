package installer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mason-org/mason-go/internal/archive"
	"github.com/mason-org/mason-go/internal/recipe"
)

// genericHandler streams every (filename -> url) pair in pkg.Files to
// filename, extracting it in place when the filename is a recognized
// archive format (spec.md §4.6).
type genericHandler struct {
	downloader downloader
}

var _ Handler = genericHandler{}

func (h genericHandler) Install(ctx context.Context, ws *Workspace, pkg *recipe.Package) error {
	files, ok := pkg.Files.(map[string]string)
	if !ok {
		return fmt.Errorf("generic: files must be a filename->url map, got %T", pkg.Files)
	}

	dl := h.downloader
	if dl == nil {
		dl = archive.NewDownloader()
	}

	for filename, url := range files {
		dest := filepath.Join(ws.Dir, filename)
		if err := dl.Download(ctx, url, dest); err != nil {
			return err
		}
		if archive.IsExtractable(filename) {
			if err := archive.Extract(dest, ws.Dir); err != nil {
				return err
			}
		}
	}
	return nil
}
