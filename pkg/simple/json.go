package simple

import (
	"bytes"
	"encoding/json"
	"time"
)

// object is a JSON object decoded one level deep.
type object map[string]json.RawMessage

// has reports whether key is present with a non-null value.
func (o object) has(key string) bool {
	raw, ok := o[key]
	return ok && !isNull(raw)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// parseDocument decodes the top level of a JSON response and applies the
// version policy. Structural decoding is left to the caller and must not
// start when an error is returned.
func parseDocument(body []byte) (object, Meta, *Warning, error) {
	var doc object
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, Meta{}, nil, &MalformedDocumentError{Reason: "invalid JSON document", Err: err}
	}
	if doc == nil {
		return nil, Meta{}, nil, &MalformedDocumentError{Reason: "document is not a JSON object"}
	}

	version := DefaultVersion
	if doc.has("meta") {
		var meta object
		if err := json.Unmarshal(doc["meta"], &meta); err != nil {
			return nil, Meta{}, nil, &MalformedDocumentError{Reason: `"meta" is not an object`, Err: err}
		}
		if meta.has("api-version") {
			var s string
			if err := json.Unmarshal(meta["api-version"], &s); err != nil {
				return nil, Meta{}, nil, &MalformedDocumentError{Reason: `"meta.api-version" is not a string`, Err: err}
			}
			v, err := ParseSchemaVersion(s)
			if err != nil {
				return nil, Meta{}, nil, &MalformedDocumentError{Reason: `invalid "meta.api-version"`, Err: err}
			}
			version = v
		}
	}

	warn, err := checkVersion(version)
	if err != nil {
		return nil, Meta{}, nil, err
	}
	return doc, Meta{APIVersion: version}, warn, nil
}

// entries decodes the array stored under key into raw objects.
func (o object) entries(key string) ([]object, error) {
	if !o.has(key) {
		return nil, &MissingFieldError{Field: key, Index: -1}
	}
	var list []json.RawMessage
	if err := json.Unmarshal(o[key], &list); err != nil {
		return nil, &MalformedDocumentError{Reason: `"` + key + `" is not an array`, Err: err}
	}
	out := make([]object, len(list))
	for i, raw := range list {
		if err := json.Unmarshal(raw, &out[i]); err != nil || out[i] == nil {
			return nil, &MalformedDocumentError{Reason: `"` + key + `" contains a non-object entry`, Err: err}
		}
	}
	return out, nil
}

// requiredString reads a required string key of entry i.
func (o object) requiredString(key string, i int) (string, error) {
	if !o.has(key) {
		return "", &MissingFieldError{Field: key, Index: i}
	}
	var s string
	if err := json.Unmarshal(o[key], &s); err != nil {
		return "", &MalformedDocumentError{Reason: `"` + key + `" is not a string`, Err: err}
	}
	return s, nil
}

// optional decodes key into v and reports whether it succeeded. Absent,
// null and ill-typed values all report false; optional metadata never fails
// a document.
func (o object) optional(key string, v any) bool {
	if !o.has(key) {
		return false
	}
	return json.Unmarshal(o[key], v) == nil
}

// DecodeIndexJSON decodes a PEP 691 project index document.
//
// meta.api-version defaults to 1.0 when absent. A different major version
// fails with [*UnsupportedVersionError] before the projects are read; a newer
// minor version succeeds with a [Warning]. Every entry of "projects" must have
// a "name" ([*MissingFieldError] otherwise). JSON entries carry no URL; use
// [ProjectIndex.Resolve] to derive one.
func DecodeIndexJSON(body []byte) (*ProjectIndex, *Warning, error) {
	doc, meta, warn, err := parseDocument(body)
	if err != nil {
		return nil, nil, err
	}
	entries, err := doc.entries("projects")
	if err != nil {
		return nil, nil, err
	}

	idx := &ProjectIndex{Meta: meta, Projects: make([]ProjectEntry, 0, len(entries))}
	for i, e := range entries {
		name, err := e.requiredString("name", i)
		if err != nil {
			return nil, nil, err
		}
		idx.Projects = append(idx.Projects, ProjectEntry{
			Name:        canonicalize(name),
			DisplayName: name,
		})
	}
	return idx, warn, nil
}

// DecodeDetailsJSON decodes a PEP 691 project details document.
//
// Version handling matches [DecodeIndexJSON]. Every entry of "files" must
// have "filename" and "url"; the first entry missing one fails the whole
// document with [*MissingFieldError]. Hash algorithm names are lowercased.
// Optional fields with an unexpected type are treated as absent. Files keep
// their document order.
func DecodeDetailsJSON(body []byte) (*ProjectDetails, *Warning, error) {
	doc, meta, warn, err := parseDocument(body)
	if err != nil {
		return nil, nil, err
	}
	name, err := doc.requiredString("name", -1)
	if err != nil {
		return nil, nil, err
	}
	entries, err := doc.entries("files")
	if err != nil {
		return nil, nil, err
	}

	details := &ProjectDetails{
		Meta:  meta,
		Name:  canonicalize(name),
		Files: make([]ProjectFile, 0, len(entries)),
	}
	for i, e := range entries {
		f, err := decodeFile(e, i)
		if err != nil {
			return nil, nil, err
		}
		details.Files = append(details.Files, f)
	}

	var list []string
	if doc.optional("versions", &list) {
		details.Versions = nonNil(list)
	}
	list = nil
	if doc.optional("alternate-locations", &list) {
		details.AlternateLocations = nonNil(list)
	}
	list = nil
	if doc.optional("tracks", &list) {
		details.Tracks = nonNil(list)
	}
	return details, warn, nil
}

func decodeFile(e object, i int) (ProjectFile, error) {
	filename, err := e.requiredString("filename", i)
	if err != nil {
		return ProjectFile{}, err
	}
	u, err := e.requiredString("url", i)
	if err != nil {
		return ProjectFile{}, err
	}
	f := ProjectFile{Filename: filename, URL: u}

	var hashes map[string]string
	if e.optional("hashes", &hashes) {
		f.Hashes = lowerHashes(hashes)
	}
	var s string
	if e.optional("requires-python", &s) {
		f.RequiresPython = &s
	}
	var y Yanked
	if e.optional("yanked", &y) {
		f.Yanked = y
	}
	var m MetadataInfo
	if e.optional("core-metadata", &m) {
		f.CoreMetadata = m
	}
	m = MetadataInfo{}
	if e.optional("dist-info-metadata", &m) {
		f.DistInfoMetadata = m
	}
	var b bool
	if e.optional("gpg-sig", &b) {
		f.GPGSig = &b
	}
	var size int64
	if e.optional("size", &size) && size >= 0 {
		f.Size = &size
	}
	var uploaded string
	if e.optional("upload-time", &uploaded) {
		if t, err := time.Parse(time.RFC3339Nano, uploaded); err == nil {
			f.UploadTime = &t
		}
	}
	var provenance string
	if e.optional("provenance", &provenance) {
		f.Provenance = &provenance
	}
	return f, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
