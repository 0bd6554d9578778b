package simple

import (
	"encoding/hex"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// repositoryVersionMeta is the PEP 629 meta tag name.
const repositoryVersionMeta = "pypi:repository-version"

// anchor is a raw <a> element collected from a page.
type anchor struct {
	attrs map[string]string // lowercase keys; presence matters even when empty
	text  strings.Builder
}

func (a *anchor) attr(key string) (string, bool) {
	v, ok := a.attrs[key]
	return v, ok
}

// page is the result of scanning an HTML document.
type page struct {
	version    SchemaVersion
	versionErr error
	base       string // <base href>, if any
	anchors    []*anchor
}

// scanHTML tokenizes body and collects anchors, the repository version meta
// tag and the document base. The tokenizer never fails on malformed markup;
// unclosed anchors end at the next anchor or at end of input.
func scanHTML(body string) *page {
	p := &page{version: DefaultVersion}
	z := html.NewTokenizer(strings.NewReader(body))

	var cur *anchor
	closeAnchor := func() {
		if cur != nil {
			p.anchors = append(p.anchors, cur)
			cur = nil
		}
	}

	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a read error; both end the document.
			closeAnchor()
			return p
		case html.TextToken:
			if cur != nil {
				cur.text.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.A:
				closeAnchor()
				cur = &anchor{attrs: attrMap(tok.Attr)}
			case atom.Meta:
				attrs := attrMap(tok.Attr)
				if strings.EqualFold(attrs["name"], repositoryVersionMeta) {
					p.version, p.versionErr = ParseSchemaVersion(attrs["content"])
				}
			case atom.Base:
				if href, ok := attrMap(tok.Attr)["href"]; ok && p.base == "" {
					p.base = href
				}
			}
		case html.EndTagToken:
			if tok := z.Token(); tok.DataAtom == atom.A {
				closeAnchor()
			}
		}
	}
}

func attrMap(attrs []html.Attribute) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		key := strings.ToLower(a.Key)
		if _, dup := m[key]; !dup {
			m[key] = a.Val
		}
	}
	return m
}

// checkVersion runs the shared version policy on a scanned page.
func (p *page) checkVersion() (Meta, *Warning, error) {
	if p.versionErr != nil {
		return Meta{}, nil, &MalformedDocumentError{Reason: "invalid repository-version meta tag", Err: p.versionErr}
	}
	warn, err := checkVersion(p.version)
	if err != nil {
		return Meta{}, nil, err
	}
	return Meta{APIVersion: p.version}, warn, nil
}

// resolver resolves hrefs against the page URL and an optional <base href>.
type resolver struct {
	base *url.URL // nil when the page URL is empty
}

func newResolver(pageURL, baseHref string) (*resolver, error) {
	var base *url.URL
	if pageURL != "" {
		u, err := url.Parse(pageURL)
		if err != nil {
			return nil, err
		}
		base = u
	}
	if baseHref != "" {
		ref, err := url.Parse(baseHref)
		if err == nil {
			if base == nil {
				base = ref
			} else {
				base = base.ResolveReference(ref)
			}
		}
	}
	return &resolver{base: base}, nil
}

func (r *resolver) resolve(href string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil, err
	}
	if r.base == nil {
		return ref, nil
	}
	return r.base.ResolveReference(ref), nil
}

// DecodeIndexHTML decodes a PEP 503 project index page.
//
// Each anchor becomes one entry: its whitespace-normalized text is the
// project name and its href, resolved against baseURL, the details URL.
// The last path segment of the URL is normalized and given a trailing slash,
// so "/simple/Django" becomes "/simple/django/". Anchors without href or
// without text are skipped. A page without any
// anchor is a valid, empty index.
//
// baseURL is the URL the page was fetched from. It may be absolute,
// relative, or empty (hrefs are then kept as written).
func DecodeIndexHTML(body, baseURL string) (*ProjectIndex, *Warning, error) {
	p := scanHTML(body)
	meta, warn, err := p.checkVersion()
	if err != nil {
		return nil, nil, err
	}
	r, err := newResolver(baseURL, p.base)
	if err != nil {
		return nil, nil, &MalformedDocumentError{Reason: "invalid base URL", Err: err}
	}

	idx := &ProjectIndex{Meta: meta, Projects: make([]ProjectEntry, 0, len(p.anchors))}
	for _, a := range p.anchors {
		href, ok := a.attr("href")
		if !ok {
			continue
		}
		name := collapseSpace(a.text.String())
		if name == "" {
			continue
		}
		u, err := r.resolve(href)
		if err != nil {
			continue
		}
		normalizeProjectPath(u)
		idx.Projects = append(idx.Projects, ProjectEntry{
			Name:        canonicalize(name),
			DisplayName: name,
			URL:         u.String(),
		})
	}
	return idx, warn, nil
}

// DecodeDetailsHTML decodes a PEP 503 project details page.
//
// Each anchor with an href becomes one [ProjectFile]. The link text is the
// filename; when it is empty the last path segment of the URL is used. A
// "#algo=digest" fragment fills Hashes and is removed from the URL; only the
// first fragment is considered and an unparseable one leaves Hashes nil.
// The data-requires-python, data-yanked, data-core-metadata,
// data-dist-info-metadata and data-gpg-sig attributes fill the matching
// fields; other attributes are ignored.
//
// The project name is taken from the last path segment of baseURL. A page
// without any usable file link fails with [*MalformedDocumentError].
func DecodeDetailsHTML(body, baseURL string) (*ProjectDetails, *Warning, error) {
	p := scanHTML(body)
	meta, warn, err := p.checkVersion()
	if err != nil {
		return nil, nil, err
	}
	r, err := newResolver(baseURL, p.base)
	if err != nil {
		return nil, nil, &MalformedDocumentError{Reason: "invalid base URL", Err: err}
	}

	details := &ProjectDetails{
		Meta:  meta,
		Name:  projectNameFromURL(baseURL),
		Files: make([]ProjectFile, 0, len(p.anchors)),
	}
	for _, a := range p.anchors {
		f, ok := fileFromAnchor(a, r)
		if ok {
			details.Files = append(details.Files, f)
		}
	}
	if len(details.Files) == 0 {
		return nil, nil, &MalformedDocumentError{Reason: "project page contains no file links"}
	}
	return details, warn, nil
}

func fileFromAnchor(a *anchor, r *resolver) (ProjectFile, bool) {
	href, ok := a.attr("href")
	if !ok {
		return ProjectFile{}, false
	}
	u, err := r.resolve(href)
	if err != nil {
		return ProjectFile{}, false
	}

	var f ProjectFile
	if u.Fragment != "" {
		f.Hashes = parseHashFragment(u.Fragment)
		u.Fragment = ""
		u.RawFragment = ""
	}
	f.URL = u.String()

	f.Filename = collapseSpace(a.text.String())
	if f.Filename == "" {
		f.Filename = path.Base(u.Path)
	}
	if f.Filename == "" || f.Filename == "." || f.Filename == "/" {
		return ProjectFile{}, false
	}

	if v, ok := a.attr("data-requires-python"); ok {
		f.RequiresPython = &v
	}
	if v, ok := a.attr("data-yanked"); ok {
		f.Yanked = YankedBecause(v)
	}
	if v, ok := a.attr("data-gpg-sig"); ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			f.GPGSig = boolPtr(true)
		case "false":
			f.GPGSig = boolPtr(false)
		}
	}

	// PEP 714 renamed data-dist-info-metadata to data-core-metadata; either
	// spelling fills both fields.
	raw, ok := a.attr("data-core-metadata")
	if !ok {
		raw, ok = a.attr("data-dist-info-metadata")
	}
	if ok {
		if m, valid := parseMetadataAttr(raw); valid {
			f.CoreMetadata = m
			f.DistInfoMetadata = m
		}
	}
	return f, true
}

// parseHashFragment reads "algo=hexdigest". Anything after a second "#" is
// ignored.
func parseHashFragment(fragment string) Hashes {
	fragment, _, _ = strings.Cut(fragment, "#")
	algo, digest, ok := strings.Cut(fragment, "=")
	if !ok || !validAlgorithm(algo) || !isHex(digest) {
		return nil
	}
	return Hashes{strings.ToLower(algo): digest}
}

// parseMetadataAttr reads a data-core-metadata value: empty or "true" means
// available, "false" means not available, "algo=hexdigest" means available
// with a hash.
func parseMetadataAttr(v string) (MetadataInfo, bool) {
	v = strings.TrimSpace(v)
	switch strings.ToLower(v) {
	case "", "true":
		return MetadataAvailable(true), true
	case "false":
		return MetadataAvailable(false), true
	}
	if h := parseHashFragment(v); h != nil {
		return MetadataWithHashes(h), true
	}
	return MetadataInfo{}, false
}

func validAlgorithm(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	if len(s)%2 == 0 {
		_, err := hex.DecodeString(s)
		return err == nil
	}
	_, err := hex.DecodeString("0" + s)
	return err == nil
}

// normalizeProjectPath rewrites the last path segment of u to its
// normalized form followed by "/". A path without segments is left alone.
func normalizeProjectPath(u *url.URL) {
	dir, segment := path.Split(strings.TrimRight(u.Path, "/"))
	if segment == "" {
		return
	}
	u.Path = joinProject(dir, canonicalize(segment))
	u.RawPath = ""
}

// projectNameFromURL returns the normalized last non-empty path segment of
// raw, or "" when there is none.
func projectNameFromURL(raw string) ProjectName {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	segment := path.Base(strings.TrimRight(u.Path, "/"))
	if segment == "." || segment == "/" || segment == "" {
		return ""
	}
	return canonicalize(segment)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func boolPtr(b bool) *bool { return &b }
