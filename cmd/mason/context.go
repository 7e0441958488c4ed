package main

import (
	"fmt"

	"github.com/mason-org/mason-go/internal/config"
	"github.com/mason-org/mason-go/internal/masoncontext"
	"github.com/mason-org/mason-go/internal/platform"
	"github.com/mason-org/mason-go/internal/registry"
)

// newContext loads configuration and builds the Context over the default
// github registry. Local file-backed registries are not yet exposed as a
// CLI flag; MASON_REGISTRY_REPO is the one supported override (spec.md §6).
func newContext() (*config.Config, *masoncontext.Context, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, nil, err
	}

	store := registry.NewGitHubRegistry(cfg.RegistryRepo, cfg.CacheDir)
	mctx, err := masoncontext.New(cfg, platform.Probe(), store)
	if err != nil {
		return nil, nil, err
	}
	return cfg, mctx, nil
}
