package archive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestDownloadWritesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("archive contents"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out.bin")
	d := &Downloader{Client: srv.Client()}
	if err := d.Download(context.Background(), srv.URL, dest); err != nil {
		t.Fatalf("Download: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(data) != "archive contents" {
		t.Errorf("unexpected content: %q", data)
	}
}

func TestDownloadReportsNetworkErrorOn4xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out.bin")
	d := &Downloader{Client: srv.Client()}
	err := d.Download(context.Background(), srv.URL, dest)
	if err == nil {
		t.Fatalf("expected an error for a 404 response")
	}
}

func TestDownloadReportsNetworkErrorOnTransportFailure(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.bin")
	d := NewDownloader()
	err := d.Download(context.Background(), "http://127.0.0.1:0/unreachable", dest)
	if err == nil {
		t.Fatalf("expected an error for an unreachable host")
	}
}
