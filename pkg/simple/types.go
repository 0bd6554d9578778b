package simple

import (
	"encoding/json"
	"maps"
	"net/url"
	"slices"
	"sort"
	"strings"
	"time"
)

// Meta carries document-level metadata.
type Meta struct {
	APIVersion SchemaVersion // declared version, DefaultVersion when absent
}

// ProjectEntry is one project listed by the repository index.
type ProjectEntry struct {
	Name        ProjectName // normalized name
	DisplayName string      // name exactly as the index served it
	URL         string      // project details URL; empty for JSON entries until resolved
}

// ProjectIndex lists the projects of a repository in document order.
type ProjectIndex struct {
	Meta     Meta
	Projects []ProjectEntry
}

// Resolve returns a copy of idx in which every entry without a URL points at
// its details page under indexBase (see [ProjectURL]). Entries that already
// carry a URL are left unchanged.
func (idx *ProjectIndex) Resolve(indexBase string) *ProjectIndex {
	out := &ProjectIndex{Meta: idx.Meta, Projects: slices.Clone(idx.Projects)}
	for i := range out.Projects {
		if out.Projects[i].URL == "" {
			out.Projects[i].URL = joinProject(indexBase, out.Projects[i].Name)
		}
	}
	return out
}

// Find returns the entry whose normalized name matches name.
func (idx *ProjectIndex) Find(name string) (ProjectEntry, bool) {
	want := canonicalize(name)
	for _, p := range idx.Projects {
		if p.Name == want {
			return p, true
		}
	}
	return ProjectEntry{}, false
}

// Hashes maps a lowercase hash algorithm name to a hex digest.
// A nil Hashes means the index provided none; an empty, non-nil Hashes means
// it explicitly provided an empty mapping.
type Hashes map[string]string

// Get returns the digest for algo, ignoring case.
func (h Hashes) Get(algo string) (string, bool) {
	d, ok := h[strings.ToLower(algo)]
	return d, ok
}

// Algorithms returns the algorithm names in sorted order.
func (h Hashes) Algorithms() []string {
	algos := make([]string, 0, len(h))
	for a := range h {
		algos = append(algos, a)
	}
	sort.Strings(algos)
	return algos
}

// preferred returns sha256 when present, otherwise the first algorithm in
// sorted order.
func (h Hashes) preferred() (algo, digest string, ok bool) {
	if d, ok := h["sha256"]; ok {
		return "sha256", d, true
	}
	algos := h.Algorithms()
	if len(algos) == 0 {
		return "", "", false
	}
	return algos[0], h[algos[0]], true
}

func lowerHashes(m map[string]string) Hashes {
	h := make(Hashes, len(m))
	for k, v := range m {
		h[strings.ToLower(k)] = v
	}
	return h
}

type triState uint8

const (
	stateAbsent triState = iota
	stateFalse
	stateTrue
)

// Yanked records the PEP 592 yank status of a file: absent, explicitly not
// yanked, yanked, or yanked with a reason. The zero value is absent.
type Yanked struct {
	state  triState
	reason string
}

// NotYanked returns an explicit "yanked: false".
func NotYanked() Yanked { return Yanked{state: stateFalse} }

// YankedBecause marks a file as yanked. An empty reason means yanked without
// an explanation.
func YankedBecause(reason string) Yanked { return Yanked{state: stateTrue, reason: reason} }

// Present reports whether the index stated a yank status at all.
func (y Yanked) Present() bool { return y.state != stateAbsent }

// IsYanked reports whether the file is yanked.
func (y Yanked) IsYanked() bool { return y.state == stateTrue }

// Reason returns the yank reason, if any.
func (y Yanked) Reason() string { return y.reason }

// MarshalJSON encodes the status as PEP 691 does: a reason string when one
// exists, a boolean otherwise, and null when absent.
func (y Yanked) MarshalJSON() ([]byte, error) {
	switch {
	case y.state == stateAbsent:
		return []byte("null"), nil
	case y.state == stateTrue && y.reason != "":
		return json.Marshal(y.reason)
	}
	return json.Marshal(y.state == stateTrue)
}

// UnmarshalJSON accepts a boolean, a string or null. An empty string counts
// as yanked without a reason.
func (y *Yanked) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*y = Yanked{}
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if b {
			*y = YankedBecause("")
		} else {
			*y = NotYanked()
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*y = YankedBecause(s)
	return nil
}

// MetadataInfo describes whether a file's core metadata (PEP 658) can be
// fetched separately: absent, false, true, or true with hashes of the
// metadata file. The zero value is absent.
type MetadataInfo struct {
	state  triState
	hashes Hashes
}

// MetadataAvailable returns an explicit boolean indicator.
func MetadataAvailable(available bool) MetadataInfo {
	if available {
		return MetadataInfo{state: stateTrue}
	}
	return MetadataInfo{state: stateFalse}
}

// MetadataWithHashes marks metadata as available with the given digests.
// A nil map is equivalent to MetadataAvailable(true).
func MetadataWithHashes(h Hashes) MetadataInfo {
	if h == nil {
		return MetadataInfo{state: stateTrue}
	}
	return MetadataInfo{state: stateTrue, hashes: lowerHashes(h)}
}

// Present reports whether the index stated anything about metadata.
func (m MetadataInfo) Present() bool { return m.state != stateAbsent }

// Available reports whether the metadata file can be fetched.
func (m MetadataInfo) Available() bool { return m.state == stateTrue }

// Hashes returns the metadata file digests; nil unless provided.
func (m MetadataInfo) Hashes() Hashes { return maps.Clone(m.hashes) }

// MarshalJSON encodes the indicator as a hash object, a boolean or null.
func (m MetadataInfo) MarshalJSON() ([]byte, error) {
	switch {
	case m.state == stateAbsent:
		return []byte("null"), nil
	case m.hashes != nil:
		return json.Marshal(map[string]string(m.hashes))
	}
	return json.Marshal(m.state == stateTrue)
}

// UnmarshalJSON accepts a boolean, a hash object or null.
func (m *MetadataInfo) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = MetadataInfo{}
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*m = MetadataAvailable(b)
		return nil
	}
	var h map[string]string
	if err := json.Unmarshal(data, &h); err != nil {
		return err
	}
	if h == nil {
		h = map[string]string{}
	}
	*m = MetadataWithHashes(h)
	return nil
}

// ProjectFile is one downloadable distribution file.
//
// Filename and URL are always set. Every other field is optional; nil
// pointers and maps and zero [Yanked]/[MetadataInfo] values mean the index
// did not provide the field.
type ProjectFile struct {
	Filename         string
	URL              string
	Hashes           Hashes
	RequiresPython   *string
	Yanked           Yanked
	CoreMetadata     MetadataInfo
	DistInfoMetadata MetadataInfo
	GPGSig           *bool
	Size             *int64     // API 1.1+
	UploadTime       *time.Time // API 1.1+, always UTC once decoded
	Provenance       *string
}

// Metadata returns the core metadata indicator, preferring the PEP 714
// core-metadata key over the older dist-info-metadata key.
func (f *ProjectFile) Metadata() MetadataInfo {
	if f.CoreMetadata.Present() {
		return f.CoreMetadata
	}
	return f.DistInfoMetadata
}

// MetadataURL returns the URL of the separately served METADATA file
// (PEP 658), or "" when the index does not advertise one.
func (f *ProjectFile) MetadataURL() string {
	if !f.Metadata().Available() {
		return ""
	}
	return f.URL + ".metadata"
}

// IsWheel reports whether the file is a wheel.
func (f *ProjectFile) IsWheel() bool {
	return strings.HasSuffix(strings.ToLower(f.Filename), ".whl")
}

// ProjectDetails lists the files of one project in document order.
type ProjectDetails struct {
	Meta  Meta
	Name  ProjectName
	Files []ProjectFile

	// Optional index-wide data; nil when not provided.
	Versions           []string // API 1.1+
	AlternateLocations []string
	Tracks             []string
}

// Resolve returns a copy of d whose relative file URLs are resolved against
// base, the URL the document was fetched from.
func (d *ProjectDetails) Resolve(base string) (*ProjectDetails, error) {
	b, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	out := *d
	out.Files = slices.Clone(d.Files)
	if base == "" {
		return &out, nil
	}
	for i := range out.Files {
		ref, err := url.Parse(out.Files[i].URL)
		if err != nil || ref.IsAbs() {
			continue
		}
		out.Files[i].URL = b.ResolveReference(ref).String()
	}
	return &out, nil
}
