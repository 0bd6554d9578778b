package simple

import (
	"regexp"
	"strings"
)

// ProjectName is a project name normalized per PEP 503: lowercase, with every
// run of ".", "-" and "_" collapsed into a single "-".
type ProjectName string

// String returns the normalized name.
func (n ProjectName) String() string { return string(n) }

var (
	separatorRunRE = regexp.MustCompile(`[-_.]+`)
	validNameRE    = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
)

// Normalize canonicalizes a raw project name.
//
// It fails with [*InvalidNameError] when raw is empty or contains characters
// outside [A-Za-z0-9._-]. Normalize is idempotent:
// Normalize(string(Normalize(x))) == Normalize(x).
func Normalize(raw string) (ProjectName, error) {
	if raw == "" {
		return "", &InvalidNameError{Name: raw, Reason: "name is empty"}
	}
	if !validNameRE.MatchString(raw) {
		return "", &InvalidNameError{Name: raw, Reason: "name may only contain letters, digits, '.', '-' and '_'"}
	}
	return canonicalize(raw), nil
}

// MustNormalize is like [Normalize] but panics on invalid input.
// It is intended for names known at compile time.
func MustNormalize(raw string) ProjectName {
	n, err := Normalize(raw)
	if err != nil {
		panic(err)
	}
	return n
}

// canonicalize applies the normalization without validating the alphabet.
// Decoders use it for names served by an index, which are kept even when
// they contain characters a user could not type.
func canonicalize(raw string) ProjectName {
	return ProjectName(separatorRunRE.ReplaceAllString(strings.ToLower(raw), "-"))
}
