package installer

import "regexp"

// These patterns gate every value that reaches exec.Command as an argument
// built from recipe/PURL data, mirroring the teacher's
// internal/actions/cargo_install.go and go_install.go charset checks: reject
// anything that isn't plausibly a package/version/executable identifier
// before it ever reaches a shell-adjacent API.
var (
	packageNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/@-]{0,213}$`)
	versionPattern      = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._+-]{0,63}$`)
	flagValuePattern    = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._,+-]{0,127}$`)
)

func validName(s string) bool    { return s != "" && packageNamePattern.MatchString(s) }
func validVersion(s string) bool { return s != "" && versionPattern.MatchString(s) }
func validFlagValue(s string) bool {
	return s != "" && flagValuePattern.MatchString(s)
}
