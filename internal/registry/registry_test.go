package registry

import (
	"encoding/json"
	"testing"
)

func TestDecodeRecipes(t *testing.T) {
	raw := []byte(`[
		{"name": "ripgrep", "description": "grep but fast"},
		{"name": "fd"},
		{"description": "no name, dropped"}
	]`)

	got, err := decodeRecipes(raw)
	if err != nil {
		t.Fatalf("decodeRecipes: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	if _, ok := got["ripgrep"]; !ok {
		t.Error("missing ripgrep entry")
	}
	if _, ok := got["fd"]; !ok {
		t.Error("missing fd entry")
	}

	var rg map[string]any
	if err := json.Unmarshal(got["ripgrep"], &rg); err != nil {
		t.Fatalf("re-decoding ripgrep entry: %v", err)
	}
	if rg["description"] != "grep but fast" {
		t.Errorf("description = %v", rg["description"])
	}
}

func TestDecodeRecipesInvalidJSON(t *testing.T) {
	if _, err := decodeRecipes([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
