package main

import "testing"

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"on", true},
		{"0", false},
		{"false", false},
		{"", false},
		{"random", false},
	}
	for _, tt := range tests {
		if got := isTruthy(tt.input); got != tt.want {
			t.Errorf("isTruthy(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range []string{"dap", "formatter", "linter", "lsp", "LSP"} {
		if !validCategory(c) {
			t.Errorf("validCategory(%q) = false, want true", c)
		}
	}
	if validCategory("not-a-category") {
		t.Error("validCategory(\"not-a-category\") = true, want false")
	}
}
