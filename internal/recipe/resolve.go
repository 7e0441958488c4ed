package recipe

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/mason-org/mason-go/internal/platform"
	"github.com/mason-org/mason-go/internal/purl"
)

// Resolve turns a raw registry recipe (one JSON object per package, as
// produced by the registry store) into a platform-specific,
// template-expanded Package, per spec.md §4.4.
//
// When no asset/download/build variant matches tags, Resolve does not
// error: it returns a Package with Files == nil, matching spec.md §8's
// invariant that resolution itself stays pure and leaves the
// UnsupportedTarget decision to the installer dispatch that follows.
func Resolve(raw json.RawMessage, tags platform.Tags) (*Package, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("recipe: invalid JSON")
	}
	if !gjson.GetBytes(raw, "source").Exists() {
		return nil, fmt.Errorf("recipe: missing source object")
	}

	id := gjson.GetBytes(raw, "source.id").String()
	p, err := purl.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("recipe: parsing source.id %q: %w", id, err)
	}

	text := string(raw)
	for _, key := range []string{"asset", "download", "build"} {
		text, err = selectVariant(text, key, tags)
		if err != nil {
			return nil, fmt.Errorf("recipe: selecting %s variant: %w", key, err)
		}
	}

	rendered, err := Render(text, tags, p.Version)
	if err != nil {
		return nil, fmt.Errorf("recipe: rendering: %w", err)
	}

	var final map[string]any
	if err := json.Unmarshal([]byte(rendered), &final); err != nil {
		return nil, fmt.Errorf("recipe: re-parsing rendered recipe: %w", err)
	}

	return populate(final, p)
}

// selectVariant path-addresses source.<key> with gjson and, when it is a
// list, overwrites it in place with sjson to the first element whose
// "target" matches tags, or to null when none match (spec.md §4.4 step 1:
// "serialize the recipe to a JSON text" and mutate that text directly).
func selectVariant(text, key string, tags platform.Tags) (string, error) {
	path := "source." + key
	list := gjson.Get(text, path)
	if !list.IsArray() {
		return text, nil
	}

	for _, entry := range list.Array() {
		if tags.IsPlatform(targetTags(entry)) {
			return sjson.SetRaw(text, path, entry.Raw)
		}
	}
	return sjson.SetRaw(text, path, "null")
}

// targetTags extracts a variant's "target" field as either a string or a
// []any, matching the shape platform.Tags.IsPlatform expects.
func targetTags(variant gjson.Result) any {
	target := variant.Get("target")
	if target.IsArray() {
		tags := make([]any, 0, len(target.Array()))
		for _, t := range target.Array() {
			tags = append(tags, t.String())
		}
		return tags
	}
	if target.Exists() {
		return target.String()
	}
	return nil
}

func populate(final map[string]any, p purl.PURL) (*Package, error) {
	source, _ := final["source"].(map[string]any)

	pkg := &Package{
		Name:          asString(final["name"]),
		Homepage:      asString(final["homepage"]),
		Licenses:      asStringSlice(final["licenses"]),
		Languages:     asStringSlice(final["languages"]),
		Categories:    asStringSlice(final["categories"]),
		PURL:          p,
		ExtraPackages: asStringSlice(source["extra_packages"]),
		Bin:           asStringMap(final["bin"]),
		Share:         asStringMap(final["share"]),
		Opt:           asStringMap(final["opt"]),
	}

	description := asString(final["description"])
	description = strings.ReplaceAll(description, "\n", " ")
	pkg.Description = strings.TrimSpace(description)

	if dep, ok := final["deprecation"].(map[string]any); ok {
		if msg := asString(dep["message"]); msg != "" {
			pkg.Deprecation = &Deprecation{Message: msg}
		}
	}

	pkg.Files = filesFromSource(source)

	if build, ok := source["build"].(map[string]any); ok && build != nil {
		run := asString(build["run"])
		pkg.Build = &Build{
			Run:  run,
			Cmds: strings.Split(run, "\n"),
			Env:  asStringMap(build["env"]),
		}
	}

	return pkg, nil
}

// filesFromSource derives the files field per spec.md §4.4 step 4:
// source.asset.file, else source.download.files or source.download.file.
func filesFromSource(source map[string]any) any {
	if asset, ok := source["asset"].(map[string]any); ok && asset != nil {
		switch f := asset["file"].(type) {
		case string:
			return []string{f}
		case []any:
			return asStringSlice(f)
		}
		return nil
	}
	if download, ok := source["download"].(map[string]any); ok && download != nil {
		if files := download["files"]; files != nil {
			if m, ok := files.(map[string]any); ok {
				return asStringMap(m)
			}
			return asStringSlice(files)
		}
		if f := asString(download["file"]); f != "" {
			return []string{f}
		}
	}
	return nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asStringSlice(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, e := range list {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asStringMap(v any) map[string]string {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		if s, ok := val.(string); ok {
			out[k] = s
		}
	}
	return out
}
