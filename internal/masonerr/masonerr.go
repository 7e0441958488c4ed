// Package masonerr defines Mason's error taxonomy (spec.md §7). Every
// component returns one of these kinds so the CLI can print
// "<program>: <message>" without inspecting component-specific types, and so
// callers can branch on failure class with errors.As.
package masonerr

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Kind classifies a Mason error for dispatch and reporting.
type Kind int

const (
	KindNotFound Kind = iota
	KindDeprecated
	KindUnsupportedInstaller
	KindUnsupportedTarget
	KindNetworkError
	KindArchiveError
	KindChecksumMismatch
	KindSubprocessFailed
	KindLinkConflict
	KindRegistryCorrupt
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindDeprecated:
		return "Deprecated"
	case KindUnsupportedInstaller:
		return "UnsupportedInstaller"
	case KindUnsupportedTarget:
		return "UnsupportedTarget"
	case KindNetworkError:
		return "NetworkError"
	case KindArchiveError:
		return "ArchiveError"
	case KindChecksumMismatch:
		return "ChecksumMismatch"
	case KindSubprocessFailed:
		return "SubprocessFailed"
	case KindLinkConflict:
		return "LinkConflict"
	case KindRegistryCorrupt:
		return "RegistryCorrupt"
	default:
		return "Unknown"
	}
}

// Error is a taxonomy-tagged Mason error wrapping an optional cause.
type Error struct {
	Kind    Kind
	Package string // package name, empty if not package-scoped
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports a match when target is an *Error of the same Kind, so
// errors.Is(err, &masonerr.Error{Kind: masonerr.KindX}) compares by kind
// alone; most callers should prefer errors.As with *Error and inspect Kind.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

func NotFound(pkg string) *Error {
	return &Error{Kind: KindNotFound, Package: pkg, Message: "package not found in any registry"}
}

func Deprecated(pkg, message string) *Error {
	return &Error{Kind: KindDeprecated, Package: pkg, Message: message}
}

func UnsupportedInstaller(pkg, purlType string) *Error {
	return &Error{Kind: KindUnsupportedInstaller, Package: pkg, Message: fmt.Sprintf("no installer handles type %q", purlType)}
}

func UnsupportedTarget(pkg string) *Error {
	return &Error{Kind: KindUnsupportedTarget, Package: pkg, Message: "no variant matches the current platform"}
}

// NetworkError classifies the underlying transport error (DNS, TLS, timeout,
// connection refused, ...) the way the teacher's registry package does, then
// wraps it as a Mason NetworkError.
func NetworkError(target string, cause error) *Error {
	return &Error{Kind: KindNetworkError, Message: fmt.Sprintf("request to %s failed (%s)", target, classify(cause)), Cause: cause}
}

func ArchiveError(path string, cause error) *Error {
	return &Error{Kind: KindArchiveError, Message: fmt.Sprintf("cannot extract %s", path), Cause: cause}
}

func ChecksumMismatch(file string) *Error {
	return &Error{Kind: KindChecksumMismatch, Message: fmt.Sprintf("checksum mismatch for %s", file)}
}

func SubprocessFailed(command string, cause error) *Error {
	return &Error{Kind: KindSubprocessFailed, Message: fmt.Sprintf("command failed: %s", command), Cause: cause}
}

func LinkConflict(dest string) *Error {
	return &Error{Kind: KindLinkConflict, Message: fmt.Sprintf("%s already exists and is not a symlink", dest)}
}

func RegistryCorrupt(message string) *Error {
	return &Error{Kind: KindRegistryCorrupt, Message: message}
}

// classify labels the underlying cause for a NetworkError's message, mirroring
// the teacher's internal/registry/errors.go classification chain.
func classify(err error) string {
	if err == nil {
		return "unknown"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return "timeout"
		}
		return "dns"
	}

	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return "tls"
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return "timeout"
		}
		var innerDNS *net.DNSError
		if errors.As(opErr.Err, &innerDNS) {
			return "dns"
		}
		return "connection"
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return "timeout"
		}
		msg := urlErr.Err.Error()
		if strings.Contains(msg, "certificate") || strings.Contains(msg, "tls") || strings.Contains(msg, "x509") {
			return "tls"
		}
		return classify(urlErr.Err)
	}

	return "network"
}
