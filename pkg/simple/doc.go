// Package simple decodes and encodes the Python Simple Repository API.
//
// # Overview
//
// A Python package index (https://pypi.org/simple/, a devpi mirror, a
// piwheels or PyTorch wheel index, ...) exposes two resources per the Simple
// Repository API:
//
//   - The project index: one link per project hosted by the repository
//   - Project details: one link per downloadable file of a single project
//
// Each resource is served either as the PEP 503 HTML micro-format or as the
// PEP 691 JSON document (schema versions 1.0 and 1.1). This package turns
// those raw responses into [ProjectIndex] and [ProjectDetails] values and
// builds the request URL and Accept header needed to fetch them.
//
// The package performs no I/O. Callers fetch bytes however they like (see
// package pypi for a client) and hand them to a decoder:
//
//	url, _ := simple.ProjectURL("https://pypi.org/simple/", "Django")
//	req.Header.Set("Accept", simple.AcceptHeader(simple.AcceptSupported))
//	// ... perform the request ...
//	details, warn, err := simple.DecodeDetailsJSON(body)
//	if warn != nil {
//	    log.Warn("index uses a newer API revision", "reason", warn)
//	}
//
// Choosing a decoder from the response Content-Type is left to the caller.
//
// # Versioning
//
// Both decoders consult the same policy ([Classify]) against [KnownVersion].
// A different major version is rejected with [UnsupportedVersionError]; a
// newer minor version decodes normally and returns a [Warning] next to the
// result. HTML documents default to 1.0 unless they carry a
// pypi:repository-version meta tag (PEP 629).
//
// # Optional fields
//
// Several file attributes distinguish "not provided" from an explicit false
// or empty value. Those are represented by [Yanked] and [MetadataInfo], and by
// nil pointers and nil maps for the remaining optional fields.
//
// # Concurrency
//
// All functions are pure and safe for concurrent use. Decoded values are
// freshly allocated on every call.
package simple
