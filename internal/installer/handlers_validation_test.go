package installer

import (
	"context"
	"testing"

	"github.com/mason-org/mason-go/internal/purl"
	"github.com/mason-org/mason-go/internal/recipe"
)

// These handlers validate their inputs before ever invoking exec.Command,
// so an invalid name/version exercises the guard without needing the
// upstream toolchain (cargo, gem, npm, ...) installed in the test
// environment.
func TestHandlersRejectInvalidSpecs(t *testing.T) {
	ws := NewWorkspace(t.TempDir())
	ctx := context.Background()

	cases := []struct {
		name    string
		handler Handler
		pkg     *recipe.Package
	}{
		{"cargo", cargoHandler{}, &recipe.Package{PURL: purl.PURL{Name: "../bad", Version: "1.0"}}},
		{"composer", composerHandler{}, &recipe.Package{PURL: purl.PURL{Namespace: "vendor", Name: "pkg", Version: "bad;rm"}}},
		{"gem", gemHandler{}, &recipe.Package{PURL: purl.PURL{Name: "", Version: "1.0"}}},
		{"golang", golangHandler{}, &recipe.Package{PURL: purl.PURL{Namespace: "github.com/x", Name: "y", Version: ""}}},
		{"luarocks", luarocksHandler{}, &recipe.Package{PURL: purl.PURL{Name: "x y", Version: "1.0"}}},
		{"npm", npmHandler{}, &recipe.Package{PURL: purl.PURL{Name: "ok", Version: "1.0"}, ExtraPackages: []string{"bad pkg"}}},
		{"nuget", nugetHandler{}, &recipe.Package{PURL: purl.PURL{Name: "tool", Version: "not a version!"}}},
		{"opam", opamHandler{}, &recipe.Package{PURL: purl.PURL{Name: "tool", Version: ""}}},
		{"pypi", pypiHandler{}, &recipe.Package{PURL: purl.PURL{Name: "tool", Version: "1.0"}, ExtraPackages: []string{"../evil"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.handler.Install(ctx, ws, tc.pkg); err == nil {
				t.Fatalf("%s: expected validation error", tc.name)
			}
		})
	}
}
