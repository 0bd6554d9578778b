package simple

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"
)

type metaWire struct {
	APIVersion string `json:"api-version"`
}

type indexWire struct {
	Meta     metaWire      `json:"meta"`
	Projects []projectWire `json:"projects"`
}

type projectWire struct {
	Name string `json:"name"`
}

type detailsWire struct {
	Meta               metaWire   `json:"meta"`
	Name               string     `json:"name"`
	Files              []fileWire `json:"files"`
	Versions           *[]string  `json:"versions,omitempty"`
	AlternateLocations *[]string  `json:"alternate-locations,omitempty"`
	Tracks             *[]string  `json:"tracks,omitempty"`
}

// fileWire uses pointers so that absent and empty stay distinct.
type fileWire struct {
	Filename         string        `json:"filename"`
	URL              string        `json:"url"`
	Hashes           *Hashes       `json:"hashes,omitempty"`
	RequiresPython   *string       `json:"requires-python,omitempty"`
	Yanked           *Yanked       `json:"yanked,omitempty"`
	CoreMetadata     *MetadataInfo `json:"core-metadata,omitempty"`
	DistInfoMetadata *MetadataInfo `json:"dist-info-metadata,omitempty"`
	GPGSig           *bool         `json:"gpg-sig,omitempty"`
	Size             *int64        `json:"size,omitempty"`
	UploadTime       *string       `json:"upload-time,omitempty"`
	Provenance       *string       `json:"provenance,omitempty"`
}

func encodeMeta(m Meta) metaWire {
	v := m.APIVersion
	if v == (SchemaVersion{}) {
		v = KnownVersion
	}
	return metaWire{APIVersion: v.String()}
}

// EncodeIndexJSON encodes idx as a PEP 691 index document. The declared
// version is idx.Meta.APIVersion, or [KnownVersion] when unset. Entries are
// written under their display name when one is known.
func EncodeIndexJSON(idx *ProjectIndex) ([]byte, error) {
	w := indexWire{Meta: encodeMeta(idx.Meta), Projects: make([]projectWire, 0, len(idx.Projects))}
	for _, p := range idx.Projects {
		w.Projects = append(w.Projects, projectWire{Name: p.displayName()})
	}
	return json.Marshal(w)
}

// EncodeDetailsJSON encodes d as a PEP 691 project details document.
// Optional fields are written only when present, so decoding the result
// yields a value equal to d.
func EncodeDetailsJSON(d *ProjectDetails) ([]byte, error) {
	w := detailsWire{
		Meta:               encodeMeta(d.Meta),
		Name:               string(d.Name),
		Files:              make([]fileWire, 0, len(d.Files)),
		Versions:           optionalList(d.Versions),
		AlternateLocations: optionalList(d.AlternateLocations),
		Tracks:             optionalList(d.Tracks),
	}
	for i := range d.Files {
		w.Files = append(w.Files, encodeFile(&d.Files[i]))
	}
	return json.Marshal(w)
}

func encodeFile(f *ProjectFile) fileWire {
	w := fileWire{
		Filename:       f.Filename,
		URL:            f.URL,
		RequiresPython: f.RequiresPython,
		GPGSig:         f.GPGSig,
		Size:           f.Size,
		Provenance:     f.Provenance,
	}
	if f.Hashes != nil {
		h := f.Hashes
		w.Hashes = &h
	}
	if f.Yanked.Present() {
		y := f.Yanked
		w.Yanked = &y
	}
	if f.CoreMetadata.Present() {
		m := f.CoreMetadata
		w.CoreMetadata = &m
	}
	if f.DistInfoMetadata.Present() {
		m := f.DistInfoMetadata
		w.DistInfoMetadata = &m
	}
	if f.UploadTime != nil {
		s := f.UploadTime.UTC().Format(time.RFC3339Nano)
		w.UploadTime = &s
	}
	return w
}

func optionalList(s []string) *[]string {
	if s == nil {
		return nil
	}
	return &s
}

func (p ProjectEntry) displayName() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return string(p.Name)
}

const htmlHeader = `<!DOCTYPE html>
<html>
  <head>
    <meta name="` + repositoryVersionMeta + `" content="%s">
    <title>%s</title>
  </head>
  <body>
`

const htmlFooter = `  </body>
</html>
`

// RenderIndexHTML renders idx as a PEP 503 index page. Entries without a URL
// link to the relative "<name>/" details page.
func RenderIndexHTML(idx *ProjectIndex) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, htmlHeader, encodeMeta(idx.Meta).APIVersion, "Simple index")
	for _, p := range idx.Projects {
		href := p.URL
		if href == "" {
			href = joinProject("", p.Name)
		}
		fmt.Fprintf(&b, "    <a href=\"%s\">%s</a><br>\n", html.EscapeString(href), html.EscapeString(p.displayName()))
	}
	b.WriteString(htmlFooter)
	return []byte(b.String())
}

// RenderDetailsHTML renders d as a PEP 503 project page. The preferred hash
// (sha256 when available) is written as the URL fragment and metadata
// indicators are written under both the current and the legacy attribute
// name.
func RenderDetailsHTML(d *ProjectDetails) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, htmlHeader, encodeMeta(d.Meta).APIVersion, html.EscapeString("Links for "+string(d.Name)))
	fmt.Fprintf(&b, "    <h1>%s</h1>\n", html.EscapeString("Links for "+string(d.Name)))
	for i := range d.Files {
		f := &d.Files[i]
		href := f.URL
		if algo, digest, ok := f.Hashes.preferred(); ok {
			href += "#" + algo + "=" + digest
		}
		b.WriteString(`    <a href="` + html.EscapeString(href) + `"`)
		if f.RequiresPython != nil {
			writeAttr(&b, "data-requires-python", *f.RequiresPython)
		}
		if f.Yanked.IsYanked() {
			writeAttr(&b, "data-yanked", f.Yanked.Reason())
		}
		if m := f.Metadata(); m.Present() {
			v := metadataAttr(m)
			writeAttr(&b, "data-core-metadata", v)
			writeAttr(&b, "data-dist-info-metadata", v)
		}
		if f.GPGSig != nil {
			writeAttr(&b, "data-gpg-sig", fmt.Sprint(*f.GPGSig))
		}
		b.WriteString(">" + html.EscapeString(f.Filename) + "</a><br>\n")
	}
	b.WriteString(htmlFooter)
	return []byte(b.String())
}

func writeAttr(b *strings.Builder, key, val string) {
	b.WriteString(" " + key + `="` + html.EscapeString(val) + `"`)
}

func metadataAttr(m MetadataInfo) string {
	if !m.Available() {
		return "false"
	}
	if algo, digest, ok := m.hashes.preferred(); ok {
		return algo + "=" + digest
	}
	return "true"
}
