package simple

import (
	"fmt"
	"strings"
)

// Media types defined by PEP 691.
const (
	MediaTypeJSONLatest = "application/vnd.pypi.simple.latest+json"
	MediaTypeJSONV1     = "application/vnd.pypi.simple.v1+json"
	MediaTypeHTMLV1     = "application/vnd.pypi.simple.v1+html"
	MediaTypeHTML       = "text/html"
)

// Canonical Accept header values. They are stable byte for byte.
const (
	// AcceptJSONLatestHeader requests the newest JSON revision the index has.
	AcceptJSONLatestHeader = MediaTypeJSONLatest

	// AcceptJSONV1Header pins the JSON v1 schema.
	AcceptJSONV1Header = MediaTypeJSONV1

	// AcceptHTMLHeader requests HTML, including indexes that only know text/html.
	AcceptHTMLHeader = MediaTypeHTMLV1 + ", " + MediaTypeHTML + ";q=0.01"

	// AcceptSupportedHeader prefers JSON and falls back to HTML.
	AcceptSupportedHeader = MediaTypeJSONLatest + ", " +
		MediaTypeJSONV1 + ";q=0.9, " +
		MediaTypeHTMLV1 + ";q=0.1, " +
		MediaTypeHTML + ";q=0.01"
)

// AcceptPolicy selects which representations a request negotiates for.
type AcceptPolicy int

const (
	// AcceptSupported accepts every representation this package decodes,
	// JSON first. It is the zero value.
	AcceptSupported AcceptPolicy = iota
	// AcceptJSONLatest accepts only the latest JSON revision.
	AcceptJSONLatest
	// AcceptJSONV1 accepts only JSON schema v1.
	AcceptJSONV1
	// AcceptHTML accepts only HTML.
	AcceptHTML
)

var acceptPolicyNames = map[AcceptPolicy]string{
	AcceptSupported:  "supported",
	AcceptJSONLatest: "json-latest",
	AcceptJSONV1:     "json-v1",
	AcceptHTML:       "html",
}

// String returns the policy name as accepted by [ParseAcceptPolicy].
func (p AcceptPolicy) String() string {
	if s, ok := acceptPolicyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("AcceptPolicy(%d)", int(p))
}

// ParseAcceptPolicy parses a policy name ("supported", "json-latest",
// "json-v1" or "html"). Matching is case-insensitive.
func ParseAcceptPolicy(s string) (AcceptPolicy, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for p, name := range acceptPolicyNames {
		if name == want {
			return p, nil
		}
	}
	return AcceptSupported, fmt.Errorf("unknown accept policy %q", s)
}

// AcceptHeader returns the Accept header value for policy.
// Unknown policies fall back to [AcceptSupportedHeader].
func AcceptHeader(policy AcceptPolicy) string {
	switch policy {
	case AcceptJSONLatest:
		return AcceptJSONLatestHeader
	case AcceptJSONV1:
		return AcceptJSONV1Header
	case AcceptHTML:
		return AcceptHTMLHeader
	default:
		return AcceptSupportedHeader
	}
}

// ProjectURL returns the project details URL for name under indexBase.
//
// The name is normalized first, so "Django" and "django" produce the same
// URL. The result always ends in "/" as PEP 503 requires. An empty indexBase
// yields a relative "name/" reference.
func ProjectURL(indexBase, name string) (string, error) {
	n, err := Normalize(name)
	if err != nil {
		return "", err
	}
	return joinProject(indexBase, n), nil
}

func joinProject(indexBase string, n ProjectName) string {
	if indexBase != "" && !strings.HasSuffix(indexBase, "/") {
		indexBase += "/"
	}
	return indexBase + string(n) + "/"
}
