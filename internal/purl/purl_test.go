package purl

import (
	"reflect"
	"testing"
)

func TestParseCargoExample(t *testing.T) {
	p, err := Parse("pkg:cargo/ripgrep@13.0.0?features=pcre2,simd&locked=true")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Type != "cargo" {
		t.Errorf("Type = %q, want cargo", p.Type)
	}
	if p.Name != "ripgrep" {
		t.Errorf("Name = %q, want ripgrep", p.Name)
	}
	if p.Version != "13.0.0" {
		t.Errorf("Version = %q, want 13.0.0", p.Version)
	}
	want := map[string]string{"features": "pcre2,simd", "locked": "true"}
	if !reflect.DeepEqual(p.Qualifiers, want) {
		t.Errorf("Qualifiers = %v, want %v", p.Qualifiers, want)
	}
}

func TestParseMinimal(t *testing.T) {
	p, err := Parse("pkg:npm/left-pad")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Name != "left-pad" || p.Namespace != "" || p.Version != "" {
		t.Errorf("unexpected parse: %+v", p)
	}
	if p.Qualifiers == nil {
		t.Errorf("Qualifiers should be an empty map, not nil")
	}
}

func TestParseNamespaceAndSubpath(t *testing.T) {
	p, err := Parse("pkg:github/neovim/neovim@v0.9.0#runtime/lua/vim")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Namespace != "neovim" {
		t.Errorf("Namespace = %q, want neovim", p.Namespace)
	}
	if p.Name != "neovim" {
		t.Errorf("Name = %q, want neovim", p.Name)
	}
	if p.Subpath != "runtime/lua/vim" {
		t.Errorf("Subpath = %q", p.Subpath)
	}
}

func TestParseSubpathDropsDotSegments(t *testing.T) {
	p, err := Parse("pkg:npm/foo#../x/./y")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Subpath != "x/y" {
		t.Errorf("Subpath = %q, want x/y", p.Subpath)
	}
}

func TestChecksumList(t *testing.T) {
	p, err := Parse("pkg:generic/foo@1.0?checksums=sha256:aaa,sha256:bbb")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"sha256:aaa", "sha256:bbb"}
	if !reflect.DeepEqual(p.ChecksumList(), want) {
		t.Errorf("ChecksumList = %v, want %v", p.ChecksumList(), want)
	}
}

func TestParseLiteralPlusInVersionNotDecodedAsSpace(t *testing.T) {
	p, err := Parse("pkg:golang/github.com/gofrs/uuid@v4.3.1+incompatible")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Version != "v4.3.1+incompatible" {
		t.Errorf("Version = %q, want v4.3.1+incompatible", p.Version)
	}
}

func TestParseFormatIdempotent(t *testing.T) {
	cases := []string{
		"pkg:cargo/ripgrep@13.0.0?features=pcre2,simd&locked=true",
		"pkg:npm/left-pad",
		"pkg:github/neovim/neovim@v0.9.0#runtime/lua/vim",
		"pkg:pypi/black@23.1.0",
		"pkg:golang/github.com/gofrs/uuid@v4.3.1+incompatible",
	}
	for _, c := range cases {
		p1, err := Parse(c)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c, err)
		}
		formatted := p1.Format()
		p2, err := Parse(formatted)
		if err != nil {
			t.Fatalf("Parse(Format(%q)) = %q: %v", c, formatted, err)
		}
		if !reflect.DeepEqual(p1, p2) {
			t.Errorf("parse∘format not idempotent for %q:\n  p1=%+v\n  p2=%+v", c, p1, p2)
		}
	}
}
