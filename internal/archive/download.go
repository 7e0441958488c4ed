package archive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/mason-org/mason-go/internal/httputil"
	"github.com/mason-org/mason-go/internal/masonerr"
	"github.com/mason-org/mason-go/internal/progress"
)

// Downloader streams an HTTP GET response to a local file, optionally
// rendering a terminal progress bar.
type Downloader struct {
	Client *http.Client
}

// NewDownloader returns a Downloader using an SSRF-hardened client.
func NewDownloader() *Downloader {
	return &Downloader{Client: httputil.NewSecureClient(httputil.DefaultOptions())}
}

// Download streams url's body into a new file at dest, creating parent
// directories as needed. A non-2xx response is reported as NetworkError.
func (d *Downloader) Download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return masonerr.NetworkError(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return masonerr.NetworkError(url, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	var w io.Writer = out
	if progress.ShouldShowProgress() {
		pw := progress.NewWriter(out, resp.ContentLength, os.Stderr, filepath.Base(dest))
		defer pw.Finish()
		w = pw
	}

	_, err = io.Copy(w, resp.Body)
	return err
}
