// Package masoncontext implements the Context Mason threads through every
// command: a stable, order-preserving union of all configured registries
// (spec.md §3/§4.5's "first occurrence wins"), a memoized Package cache,
// and read-only enumeration of what's installed and searchable.
package masoncontext

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	lru "github.com/hashicorp/golang-lru"

	"github.com/Masterminds/semver/v3"

	"github.com/mason-org/mason-go/internal/config"
	"github.com/mason-org/mason-go/internal/masonerr"
	"github.com/mason-org/mason-go/internal/platform"
	"github.com/mason-org/mason-go/internal/receipt"
	"github.com/mason-org/mason-go/internal/recipe"
	"github.com/mason-org/mason-go/internal/registry"
)

// packageCacheSize bounds the in-memory Package memoization. Mason
// registries run in the low thousands of packages; this comfortably holds
// a full working set without unbounded growth across a long-lived process.
const packageCacheSize = 4096

// Context is Mason's immutable, constructed-once handle to configuration,
// the registry union, platform tags, and a memoized Package cache (spec.md
// §3: "Package object: in-memory, created on demand by Context; immutable
// after construction").
type Context struct {
	Config *config.Config
	Tags   platform.Tags
	stores []registry.Store
	cache  *lru.Cache
}

// New builds a Context over stores, in the priority order they should be
// merged (first occurrence of a package name wins).
func New(cfg *config.Config, tags platform.Tags, stores ...registry.Store) (*Context, error) {
	cache, err := lru.New(packageCacheSize)
	if err != nil {
		return nil, fmt.Errorf("masoncontext: creating package cache: %w", err)
	}
	return &Context{Config: cfg, Tags: tags, stores: stores, cache: cache}, nil
}

// updatableStore is implemented by registry backends that cache remote
// data locally and need an explicit refresh step (e.g. the github backend
// checking for a new release). Backends without a remote source, like the
// local file registry, simply don't implement it.
type updatableStore interface {
	Update(ctx context.Context) error
}

// Refresh updates every store that supports it (spec.md §6's `update`
// command) and drops the in-memory Package cache, since previously
// resolved packages may now be stale.
func (c *Context) Refresh(ctx context.Context) error {
	for _, store := range c.stores {
		if u, ok := store.(updatableStore); ok {
			if err := u.Update(ctx); err != nil {
				return err
			}
		}
	}
	c.cache.Purge()
	return nil
}

// merged returns every registry's raw recipes unioned by name, first
// occurrence wins across stores in the order they were given to New.
func (c *Context) merged(ctx context.Context) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage)
	for _, store := range c.stores {
		pkgs, err := store.Packages(ctx)
		if err != nil {
			return nil, err
		}
		for name, raw := range pkgs {
			if _, exists := out[name]; !exists {
				out[name] = raw
			}
		}
	}
	return out, nil
}

// Lookup resolves name to a platform-specific Package, memoizing the
// result for the lifetime of the Context. Returns masonerr.NotFound when no
// configured registry publishes name.
func (c *Context) Lookup(ctx context.Context, name string) (*recipe.Package, error) {
	if cached, ok := c.cache.Get(name); ok {
		return cached.(*recipe.Package), nil
	}

	pkgs, err := c.merged(ctx)
	if err != nil {
		return nil, err
	}
	raw, ok := pkgs[name]
	if !ok {
		return nil, masonerr.NotFound(name)
	}

	pkg, err := recipe.Resolve(raw, c.Tags)
	if err != nil {
		return nil, err
	}
	c.cache.Add(name, pkg)
	return pkg, nil
}

// Search returns every registered package (across all stores, deduplicated
// by name) matching query as a case-sensitive-free substring of its name or
// description, optionally narrowed by category and language (spec.md §6's
// `search [-c CATEGORY] [-l LANG] [query]`). Results are sorted by name for
// stable output. Search is a pure read and takes no lock (spec.md §5).
func (c *Context) Search(ctx context.Context, query, category, language string) ([]*recipe.Package, error) {
	pkgs, err := c.merged(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(pkgs))
	for name := range pkgs {
		names = append(names, name)
	}
	sort.Strings(names)

	var results []*recipe.Package
	for _, name := range names {
		pkg, err := c.Lookup(ctx, name)
		if err != nil {
			continue
		}
		if category != "" && !contains(pkg.Categories, category) {
			continue
		}
		if language != "" && !contains(pkg.Languages, language) {
			continue
		}
		if query != "" && !matchesQuery(pkg, query) {
			continue
		}
		results = append(results, pkg)
	}
	return results, nil
}

func matchesQuery(pkg *recipe.Package, query string) bool {
	return containsFold(pkg.Name, query) || containsFold(pkg.Description, query)
}

// InstalledPackage describes one package already on disk, as surfaced by
// List.
type InstalledPackage struct {
	Name    string
	Receipt *receipt.Receipt
}

// List enumerates every package with a committed receipt under the data
// directory's packages root (spec.md §6: "enumeration of installed
// packages"). A package directory without a receipt is mid-install or
// orphaned and is skipped, not reported as installed.
func (c *Context) List() ([]InstalledPackage, error) {
	entries, err := os.ReadDir(c.Config.PackagesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("masoncontext: listing %s: %w", c.Config.PackagesDir, err)
	}

	var out []InstalledPackage
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pkgDir := filepath.Join(c.Config.PackagesDir, e.Name())
		if !receipt.Exists(pkgDir) {
			continue
		}
		r, err := receipt.Read(pkgDir)
		if err != nil {
			return nil, err
		}
		out = append(out, InstalledPackage{Name: e.Name(), Receipt: r})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// NeedsUpgrade compares the version embedded in installed's primary_source
// PURL against the version the registry currently publishes for name,
// reporting true when the registry version is strictly newer. A malformed
// or non-semver version on either side is treated conservatively as "no
// upgrade available" rather than erroring the whole upgrade run.
func (c *Context) NeedsUpgrade(ctx context.Context, name string, installed *receipt.Receipt) (bool, error) {
	latest, err := c.Lookup(ctx, name)
	if err != nil {
		return false, err
	}

	installedVersion, err := versionFromPURL(installed.PrimarySource.ID)
	if err != nil {
		return false, nil
	}
	current, err := semver.NewVersion(installedVersion)
	if err != nil {
		return false, nil
	}
	next, err := semver.NewVersion(latest.PURL.Version)
	if err != nil {
		return false, nil
	}
	return next.GreaterThan(current), nil
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
