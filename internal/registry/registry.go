package registry

import (
	"encoding/json"
	"time"
)

// Kind distinguishes the two registry backends spec.md §4.5 describes.
type Kind string

const (
	KindGitHub Kind = "github"
	KindFile   Kind = "file"
)

// Info is the sidecar metadata a github-backed registry persists alongside
// its cached registry.json, recording what was last fetched and verified.
type Info struct {
	DownloadTimestamp time.Time `json:"download_timestamp"`
	Version           string    `json:"version"`
	Checksums         []string  `json:"checksums"`
}

// Record describes one configured registry source, independent of backend.
// Context holds a list of these (or rather, of the Store values they back)
// when merging multiple registries by package name.
type Record struct {
	Type   Kind
	Source string // "owner/repo" for github, a directory path for file
	Path   string // on-disk cache/root path
	Info   Info
}

// decodeRecipes parses a registry.json byte slice (a JSON array of recipe
// objects) into a name-keyed map of raw recipe documents, the shape
// internal/recipe.Resolve expects to consume.
func decodeRecipes(data []byte) (map[string]json.RawMessage, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	out := make(map[string]json.RawMessage, len(raw))
	for _, entry := range raw {
		var nameOnly struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(entry, &nameOnly); err != nil {
			continue
		}
		if nameOnly.Name == "" {
			continue
		}
		out[nameOnly.Name] = entry
	}
	return out, nil
}
