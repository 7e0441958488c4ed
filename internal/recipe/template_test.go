package recipe

import (
	"testing"

	"github.com/tidwall/gjson"

	"github.com/mason-org/mason-go/internal/platform"
)

func TestRenderAlternationFallsBackWhenEmpty(t *testing.T) {
	doc := `{"source":{"id":"pkg:generic/x@"},"name":"{{ version || \"latest\" }}"}`
	out, err := Render(doc, platform.Probe(), "")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := gjson.Get(out, "name").String(); got != "latest" {
		t.Errorf("name = %q, want %q", got, "latest")
	}
}

func TestRenderAlternationPrefersLeftWhenPresent(t *testing.T) {
	doc := `{"source":{"id":"pkg:generic/x@v1.2"},"name":"{{ version || \"latest\" }}"}`
	out, err := Render(doc, platform.Probe(), "v1.2")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := gjson.Get(out, "name").String(); got != "v1.2" {
		t.Errorf("name = %q, want %q", got, "v1.2")
	}
}

func TestRenderStripPrefix(t *testing.T) {
	doc := `{"name":"{{ version | strip_prefix(\"v\") }}"}`
	out, err := Render(doc, platform.Probe(), "v1.2.3")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := gjson.Get(out, "name").String(); got != "1.2.3" {
		t.Errorf("name = %q, want %q", got, "1.2.3")
	}
}

func TestRenderTakeIfNotKeepsValueWhenConditionFalse(t *testing.T) {
	doc := `{"name":"{{ version | take_if_not(is_platform(\"win\")) }}"}`
	out, err := Render(doc, platform.Probe(), "1.0")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := gjson.Get(out, "name").String(); got != "1.0" {
		t.Errorf("name = %q, want %q (host is not win)", got, "1.0")
	}
}

func TestRenderSelfReference(t *testing.T) {
	doc := `{"homepage":"https://example.com","description":"see {{ homepage }}"}`
	out, err := Render(doc, platform.Probe(), "")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := gjson.Get(out, "description").String(); got != "see https://example.com" {
		t.Errorf("description = %q", got)
	}
}
