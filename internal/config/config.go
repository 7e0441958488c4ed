// Package config resolves Mason's on-disk layout and tunables from the
// environment once at startup, producing an immutable Config threaded
// explicitly through the rest of the program rather than read ad hoc from
// os.Getenv (spec.md §9: "Global mutable singletons").
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const (
	// EnvDataDir overrides the root of Mason's package/bin/share/opt tree.
	EnvDataDir = "MASON_DATA_DIR"

	// EnvCacheDir overrides the registry cache directory.
	EnvCacheDir = "MASON_CACHE_DIR"

	// EnvRegistryRepo overrides the default github registry source.
	EnvRegistryRepo = "MASON_REGISTRY_REPO"

	// EnvAPITimeout configures the HTTP client timeout.
	EnvAPITimeout = "MASON_API_TIMEOUT"

	// DefaultRegistryRepo is the upstream registry consumed when none is
	// configured.
	DefaultRegistryRepo = "mason-org/mason-registry"

	// DefaultAPITimeout is the default HTTP client timeout.
	DefaultAPITimeout = 30 * time.Second
)

// Config is Mason's resolved, immutable runtime configuration.
type Config struct {
	DataDir      string // root data directory
	PackagesDir  string // DataDir/packages
	BinDir       string // DataDir/bin
	ShareDir     string // DataDir/share
	OptDir       string // DataDir/opt
	RegistryDir  string // DataDir/registries
	LockPath     string // DataDir/mason.lock
	RegistryRepo string // "owner/repo" of the default github registry
	CacheDir     string // registry download/cache scratch space
	APITimeout   time.Duration
}

// Load builds a Config from the environment, following spec.md §6's
// directory-resolution precedence.
func Load() (*Config, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, err
	}

	repo := os.Getenv(EnvRegistryRepo)
	if repo == "" {
		repo = DefaultRegistryRepo
	}

	cacheDir, err := resolveCacheDir()
	if err != nil {
		return nil, err
	}

	return &Config{
		DataDir:      dataDir,
		PackagesDir:  filepath.Join(dataDir, "packages"),
		BinDir:       filepath.Join(dataDir, "bin"),
		ShareDir:     filepath.Join(dataDir, "share"),
		OptDir:       filepath.Join(dataDir, "opt"),
		RegistryDir:  filepath.Join(dataDir, "registries"),
		LockPath:     filepath.Join(dataDir, "mason.lock"),
		RegistryRepo: repo,
		CacheDir:     cacheDir,
		APITimeout:   apiTimeout(),
	}, nil
}

// resolveDataDir implements spec.md §6's precedence:
// MASON_DATA_DIR, else $XDG_DATA_HOME/mason (Unix) or %APPDATA%\mason
// (Windows), else a platform-appropriate fallback under $HOME.
func resolveDataDir() (string, error) {
	if v := os.Getenv(EnvDataDir); v != "" {
		return v, nil
	}

	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "mason"), nil
		}
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "mason"), nil
		}
	} else if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "mason"), nil
	}

	home := os.Getenv("HOME")
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("config: cannot determine home directory: %w", err)
		}
		home = h
	}

	if runtime.GOOS == "windows" {
		return filepath.Join(home, "AppData", "Roaming", "mason"), nil
	}
	return filepath.Join(home, ".local", "share", "mason"), nil
}

// resolveCacheDir mirrors resolveDataDir for the cache-specific override.
func resolveCacheDir() (string, error) {
	if v := os.Getenv(EnvCacheDir); v != "" {
		return v, nil
	}

	if runtime.GOOS == "windows" {
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "mason", "cache"), nil
		}
	} else if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return filepath.Join(xdgCache, "mason"), nil
	}

	home := os.Getenv("HOME")
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("config: cannot determine home directory: %w", err)
		}
		home = h
	}
	return filepath.Join(home, ".cache", "mason"), nil
}

// apiTimeout reads MASON_API_TIMEOUT, falling back to DefaultAPITimeout on
// an unset or invalid value, warning on stderr the way the teacher's
// internal/config.GetAPITimeout does.
func apiTimeout() time.Duration {
	v := os.Getenv(EnvAPITimeout)
	if v == "" {
		return DefaultAPITimeout
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid %s value %q, using default %v\n", EnvAPITimeout, v, DefaultAPITimeout)
		return DefaultAPITimeout
	}
	if d < time.Second || d > 10*time.Minute {
		fmt.Fprintf(os.Stderr, "Warning: %s out of range (%v), using default %v\n", EnvAPITimeout, d, DefaultAPITimeout)
		return DefaultAPITimeout
	}
	return d
}

// EnsureDirectories creates the directories Mason writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.DataDir, c.PackagesDir, c.BinDir, c.ShareDir, c.OptDir, c.RegistryDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: creating %s: %w", dir, err)
		}
	}
	return nil
}

// PackageDir returns the per-package root directory for name.
func (c *Config) PackageDir(name string) string {
	return filepath.Join(c.PackagesDir, name)
}
