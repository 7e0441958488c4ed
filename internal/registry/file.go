package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileRegistry is the local-directory backend: Dir contains
// packages/<name>/package.yaml files, each holding one or more YAML
// documents (a multi-document stream), per spec.md §4.5.
type FileRegistry struct {
	Dir string
}

// NewFileRegistry constructs a registry backed by a local directory.
func NewFileRegistry(dir string) *FileRegistry {
	return &FileRegistry{Dir: dir}
}

// Packages implements Store by walking Dir/packages/*/package.yaml and
// concatenating every document in every file's YAML stream.
func (r *FileRegistry) Packages(ctx context.Context) (map[string]json.RawMessage, error) {
	matches, err := filepath.Glob(filepath.Join(r.Dir, "packages", "*", "package.yaml"))
	if err != nil {
		return nil, err
	}

	out := make(map[string]json.RawMessage, len(matches))
	for _, path := range matches {
		docs, err := readYAMLStream(path)
		if err != nil {
			return nil, fmt.Errorf("registry: reading %s: %w", path, err)
		}
		for _, doc := range docs {
			name, _ := doc["name"].(string)
			if name == "" {
				continue
			}
			raw, err := json.Marshal(doc)
			if err != nil {
				return nil, fmt.Errorf("registry: re-encoding %s: %w", path, err)
			}
			out[name] = raw
		}
	}
	return out, nil
}

func readYAMLStream(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	var docs []map[string]any
	for {
		var doc map[string]any
		err := dec.Decode(&doc)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if doc != nil {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}
