// Package registry implements the two recipe-store backends spec.md §4.5
// describes.
package registry

import (
	"archive/zip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/mason-org/mason-go/internal/httputil"
	"github.com/mason-org/mason-go/internal/log"
	"github.com/mason-org/mason-go/internal/masonerr"
)

const (
	registryAssetName   = "registry.json.zip"
	checksumsAssetName  = "checksums.txt"
	infoFileName        = "info.json"
	registryJSONName    = "registry.json"
	envGitHubTokenName  = "GITHUB_TOKEN"
	envGitHubTokenName2 = "MASON_GITHUB_TOKEN"
)

// GitHubRegistry is the default Mason registry backend: recipes are
// published as a GitHub release asset pair (registry.json.zip,
// checksums.txt) on the given repo, per spec.md §4.5.
type GitHubRegistry struct {
	Repo       string // "owner/repo"
	CacheDir   string // registries/github/<owner>/<repo>
	client     *github.Client
	httpClient downloader
}

// downloader abstracts the httputil-backed streaming download so tests can
// substitute a local HTTP server without reaching the network.
type downloader interface {
	Download(ctx context.Context, url, dest string) error
}

type httpDownloader struct{}

func (httpDownloader) Download(ctx context.Context, url, dest string) error {
	client := httputil.NewSecureClient(httputil.DefaultOptions())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
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
	_, err = io.Copy(out, resp.Body)
	return err
}

// NewGitHubRegistry constructs a registry for "owner/repo", caching under
// cacheDir (typically config.RegistryDir/github/owner/repo). An optional
// GitHub token (GITHUB_TOKEN or MASON_GITHUB_TOKEN) raises the API rate
// limit, matching the teacher's resolver construction.
func NewGitHubRegistry(repo, cacheDir string) *GitHubRegistry {
	var apiClient *github.Client
	if token := firstNonEmpty(os.Getenv(envGitHubTokenName), os.Getenv(envGitHubTokenName2)); token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		apiClient = github.NewClient(oauth2.NewClient(context.Background(), ts))
	} else {
		apiClient = github.NewClient(nil)
	}
	return &GitHubRegistry{
		Repo:       repo,
		CacheDir:   cacheDir,
		client:     apiClient,
		httpClient: httpDownloader{},
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Packages implements Store, refreshing the cache first when needed.
func (r *GitHubRegistry) Packages(ctx context.Context) (map[string]json.RawMessage, error) {
	if _, err := os.Stat(filepath.Join(r.CacheDir, registryJSONName)); err != nil {
		if err := r.Update(ctx); err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(filepath.Join(r.CacheDir, registryJSONName))
	if err != nil {
		return nil, err
	}
	return decodeRecipes(data)
}

// Update refreshes the cached registry when the upstream release's tag
// differs from the cached info.json's version, verifying the published
// SHA-256 checksums before replacing the cache (spec.md §4.5, §8).
func (r *GitHubRegistry) Update(ctx context.Context) error {
	owner, name, err := splitRepo(r.Repo)
	if err != nil {
		return err
	}

	release, _, err := r.client.Repositories.GetLatestRelease(ctx, owner, name)
	if err != nil {
		return masonerr.NetworkError(r.Repo, err)
	}
	tag := release.GetTagName()

	if cached, err := readInfo(r.CacheDir); err == nil && cached.Version == tag {
		log.Default().Debug("registry cache is current", "repo", r.Repo, "version", tag)
		return nil
	}

	log.Default().Info("refreshing registry cache", "repo", r.Repo, "version", tag)

	if err := os.MkdirAll(r.CacheDir, 0o755); err != nil {
		return fmt.Errorf("registry: creating cache dir: %w", err)
	}

	registryAsset := findAsset(release.Assets, registryAssetName)
	checksumsAsset := findAsset(release.Assets, checksumsAssetName)
	if registryAsset == nil || checksumsAsset == nil {
		return masonerr.RegistryCorrupt(fmt.Sprintf("release %s is missing %s or %s", tag, registryAssetName, checksumsAssetName))
	}

	zipPath := filepath.Join(r.CacheDir, registryAssetName)
	checksumsPath := filepath.Join(r.CacheDir, checksumsAssetName)

	if err := r.httpClient.Download(ctx, registryAsset.GetBrowserDownloadURL(), zipPath); err != nil {
		return err
	}
	if err := r.httpClient.Download(ctx, checksumsAsset.GetBrowserDownloadURL(), checksumsPath); err != nil {
		return err
	}
	defer os.Remove(zipPath)
	defer os.Remove(checksumsPath)

	checksumLines, err := verifyChecksums(r.CacheDir, checksumsPath)
	if err != nil {
		return err
	}

	if err := extractRegistryZip(zipPath, r.CacheDir); err != nil {
		return masonerr.ArchiveError(zipPath, err)
	}

	info := Info{DownloadTimestamp: time.Now().UTC(), Version: tag, Checksums: checksumLines}
	return writeInfo(r.CacheDir, info)
}

func splitRepo(repo string) (owner, name string, err error) {
	parts := strings.SplitN(repo, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("registry: malformed repo %q, want owner/repo", repo)
	}
	return parts[0], parts[1], nil
}

func findAsset(assets []*github.ReleaseAsset, name string) *github.ReleaseAsset {
	for _, a := range assets {
		if a.GetName() == name {
			return a
		}
	}
	return nil
}

// verifyChecksums checks every "<sha256>  <filename>" line in checksumsPath:
// the referenced file must exist (relative to dir) and its SHA-256 must
// match. A malformed line or a missing file refuses the update with
// RegistryCorrupt; a hash mismatch refuses it with ChecksumMismatch.
func verifyChecksums(dir, checksumsPath string) ([]string, error) {
	data, err := os.ReadFile(checksumsPath)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, masonerr.RegistryCorrupt(fmt.Sprintf("malformed checksum line: %q", line))
		}
		wantSum, filename := fields[0], fields[1]

		path := filepath.Join(dir, filename)
		sum, err := sha256File(path)
		if err != nil {
			return nil, masonerr.RegistryCorrupt(fmt.Sprintf("checksum references missing file %q", filename))
		}
		if !strings.EqualFold(sum, wantSum) {
			log.Default().Warn("checksum mismatch", "file", filename, "want", wantSum, "got", sum)
			return nil, masonerr.ChecksumMismatch(filename)
		}
	}
	return lines, nil
}

func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func extractRegistryZip(zipPath, out string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := filepath.Base(f.Name)
		rc, err := f.Open()
		if err != nil {
			return err
		}
		dest := filepath.Join(out, name)
		outFile, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
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

func readInfo(dir string) (Info, error) {
	data, err := os.ReadFile(filepath.Join(dir, infoFileName))
	if err != nil {
		return Info{}, err
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return Info{}, err
	}
	return info, nil
}

func writeInfo(dir string, info Info) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, infoFileName), data, 0o644)
}
