// Package registry implements the two recipe-store backends spec.md §4.5
// describes: a GitHub-release-backed store (the default) and a local
// directory of per-package YAML files, used directly by integration tests
// and self-hosted mirrors.
package registry

import (
	"context"
	"encoding/json"
)

// Store fetches the full set of raw recipes a registry publishes, keyed by
// package name. Values are kept as json.RawMessage so internal/recipe can
// resolve them against a platform without this package needing to know the
// recipe schema.
type Store interface {
	Packages(ctx context.Context) (map[string]json.RawMessage, error)
}
