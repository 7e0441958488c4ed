package masoncontext

import (
	"strings"

	"github.com/mason-org/mason-go/internal/purl"
)

// containsFold reports whether substr occurs in s, ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// versionFromPURL extracts the version component of a stored PURL string,
// as recorded in a receipt's primary_source.id.
func versionFromPURL(s string) (string, error) {
	p, err := purl.Parse(s)
	if err != nil {
		return "", err
	}
	return p.Version, nil
}
