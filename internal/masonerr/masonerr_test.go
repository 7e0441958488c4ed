package masonerr

import (
	"errors"
	"net"
	"testing"
)

func TestKindString(t *testing.T) {
	if NotFound("x").Kind.String() != "NotFound" {
		t.Errorf("unexpected Kind string")
	}
}

func TestErrorMessageWithCause(t *testing.T) {
	cause := errors.New("boom")
	err := ArchiveError("tool.tar.gz", cause)
	if err.Unwrap() != cause {
		t.Errorf("Unwrap should return the cause")
	}
	if got := err.Error(); got == "" {
		t.Errorf("Error() should not be empty")
	}
}

func TestErrorMessageWithoutCause(t *testing.T) {
	err := LinkConflict("/data/bin/rg")
	if err.Cause != nil {
		t.Errorf("expected no cause")
	}
	if got := err.Error(); got != "LinkConflict: /data/bin/rg already exists and is not a symlink" {
		t.Errorf("Error() = %q", got)
	}
}

func TestIsComparesByKind(t *testing.T) {
	a := NotFound("foo")
	b := NotFound("bar")
	c := UnsupportedTarget("foo")

	if !errors.Is(a, b) {
		t.Errorf("two NotFound errors should satisfy errors.Is regardless of package")
	}
	if errors.Is(a, c) {
		t.Errorf("NotFound should not match UnsupportedTarget")
	}
}

func TestNetworkErrorClassifiesDNSFailure(t *testing.T) {
	dnsErr := &net.DNSError{Err: "no such host", Name: "nonexistent.invalid"}
	err := NetworkError("https://nonexistent.invalid/x", dnsErr)
	if err.Kind != KindNetworkError {
		t.Errorf("expected KindNetworkError")
	}
	if got := err.Error(); got == "" {
		t.Errorf("Error() should not be empty")
	}
}

func TestClassifyNilCause(t *testing.T) {
	if got := classify(nil); got != "unknown" {
		t.Errorf("classify(nil) = %q, want unknown", got)
	}
}
