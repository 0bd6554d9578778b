package simple

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// SchemaVersion is the (major, minor) API revision a document declares.
type SchemaVersion struct {
	Major int
	Minor int
}

// String formats the version as "major.minor".
func (v SchemaVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Less reports whether v is an older revision than o.
func (v SchemaVersion) Less(o SchemaVersion) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	return v.Minor < o.Minor
}

var (
	// DefaultVersion applies to documents that declare no version: every
	// HTML page without a repository-version meta tag and JSON documents
	// without meta.api-version.
	DefaultVersion = SchemaVersion{Major: 1, Minor: 0}

	// KnownVersion is the newest revision whose fields this package decodes.
	KnownVersion = SchemaVersion{Major: 1, Minor: 1}
)

// ParseSchemaVersion parses a declared version such as "1.0" or "1.1".
// A bare major ("1") is read as minor 0. Patch components are ignored.
func ParseSchemaVersion(s string) (SchemaVersion, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "v") || strings.HasPrefix(s, "V") {
		return SchemaVersion{}, fmt.Errorf("invalid api version %q", s)
	}
	v, err := semver.NewVersion(s)
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("invalid api version %q: %w", s, err)
	}
	if v.Prerelease() != "" || v.Metadata() != "" {
		return SchemaVersion{}, fmt.Errorf("invalid api version %q", s)
	}
	return SchemaVersion{Major: int(v.Major()), Minor: int(v.Minor())}, nil
}

// Status is the outcome of a version policy decision.
type Status int

const (
	// Supported documents decode without remarks.
	Supported Status = iota
	// SupportedWithWarning documents come from a newer minor revision.
	// They decode using the fields this package knows; unknown fields are
	// ignored.
	SupportedWithWarning
	// Unsupported documents come from a different major revision and must
	// not be decoded.
	Unsupported
)

func (s Status) String() string {
	switch s {
	case Supported:
		return "supported"
	case SupportedWithWarning:
		return "supported-with-warning"
	case Unsupported:
		return "unsupported"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Classification is the result of [Classify].
type Classification struct {
	Status Status
	Reason string // empty when Status is Supported
}

// Classify decides whether a document declaring version declared can be
// decoded by code that knows knownMajor.knownMinor.
//
//   - A different major version is Unsupported: majors are not backward
//     compatible.
//   - The same major with a newer minor is SupportedWithWarning.
//   - Anything else is Supported.
func Classify(declared SchemaVersion, knownMajor, knownMinor int) Classification {
	switch {
	case declared.Major != knownMajor:
		return Classification{
			Status: Unsupported,
			Reason: fmt.Sprintf("api version %s has major version %d, only %d is supported",
				declared, declared.Major, knownMajor),
		}
	case declared.Minor > knownMinor:
		return Classification{
			Status: SupportedWithWarning,
			Reason: fmt.Sprintf("api version %s is newer than %d.%d; unknown fields are ignored",
				declared, knownMajor, knownMinor),
		}
	}
	return Classification{Status: Supported}
}

// Warning is a non-fatal advisory returned next to a decoded document whose
// minor version is newer than [KnownVersion].
type Warning struct {
	Declared SchemaVersion
	Known    SchemaVersion
	Reason   string
}

func (w *Warning) String() string { return w.Reason }

// checkVersion applies the shared policy for both decoders.
func checkVersion(declared SchemaVersion) (*Warning, error) {
	c := Classify(declared, KnownVersion.Major, KnownVersion.Minor)
	switch c.Status {
	case Unsupported:
		return nil, &UnsupportedVersionError{Declared: declared, Known: KnownVersion}
	case SupportedWithWarning:
		return &Warning{Declared: declared, Known: KnownVersion, Reason: c.Reason}, nil
	}
	return nil, nil
}
