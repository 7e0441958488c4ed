// Package recipe resolves a registry recipe into a platform-specific,
// template-expanded Package (spec.md §4.4).
package recipe

import "github.com/mason-org/mason-go/internal/purl"

// Deprecation carries an optional deprecation notice on a recipe.
type Deprecation struct {
	Message string `json:"message"`
}

// Build is the post-install build step: a list of shell command lines run
// sequentially in the package directory, plus extra environment variables.
type Build struct {
	Cmds []string          `json:"-"`
	Run  string            `json:"run"`
	Env  map[string]string `json:"env"`
}

// Package is the resolved, platform-specific, template-expanded recipe:
// the entity every other Mason component (installer, linker, receipt)
// operates on.
type Package struct {
	Name          string
	Description   string
	Homepage      string
	Licenses      []string
	Languages     []string
	Categories    []string
	Deprecation   *Deprecation
	PURL          purl.PURL
	ExtraPackages []string
	Files         any // []string, map[string]string, or nil
	Build         *Build
	Bin           map[string]string
	Share         map[string]string
	Opt           map[string]string
}

// IsDeprecated reports whether the recipe carries a deprecation notice.
func (p *Package) IsDeprecated() bool {
	return p.Deprecation != nil && p.Deprecation.Message != ""
}
