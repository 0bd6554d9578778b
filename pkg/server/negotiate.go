package server

import (
	"mime"
	"strconv"
	"strings"

	"github.com/matzehuels/simpleindex/pkg/simple"
)

// representation is a response format the proxy can produce.
type representation int

const (
	reprNone representation = iota
	reprJSON
	reprHTMLV1
	reprHTML
)

// contentType returns the Content-Type header for r.
func (r representation) contentType() string {
	switch r {
	case reprJSON:
		return simple.MediaTypeJSONV1
	case reprHTMLV1:
		return simple.MediaTypeHTMLV1
	}
	return simple.MediaTypeHTML + "; charset=utf-8"
}

// offers lists what the proxy produces, in tie-break order.
var offers = []struct {
	mediaType string
	repr      representation
}{
	{simple.MediaTypeJSONV1, reprJSON},
	{simple.MediaTypeJSONLatest, reprJSON},
	{simple.MediaTypeHTMLV1, reprHTMLV1},
	{simple.MediaTypeHTML, reprHTML},
}

type acceptRange struct {
	typ, subtype string
	q            float64
}

func parseAccept(header string) []acceptRange {
	var ranges []acceptRange
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		mt, params, err := mime.ParseMediaType(part)
		if err != nil {
			continue
		}
		typ, subtype, ok := strings.Cut(mt, "/")
		if !ok {
			continue
		}
		q := 1.0
		if v, ok := params["q"]; ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
				q = f
			}
		}
		ranges = append(ranges, acceptRange{typ: typ, subtype: subtype, q: q})
	}
	return ranges
}

// match returns the quality and specificity of the most specific range that
// covers mediaType. Specificity is 2 for an exact match, 1 for "type/*" and
// 0 for "*/*"; ok is false when nothing matches.
func match(ranges []acceptRange, mediaType string) (q float64, specificity int, ok bool) {
	typ, subtype, _ := strings.Cut(mediaType, "/")
	specificity = -1
	for _, r := range ranges {
		s := -1
		switch {
		case r.typ == typ && r.subtype == subtype:
			s = 2
		case r.typ == typ && r.subtype == "*":
			s = 1
		case r.typ == "*" && r.subtype == "*":
			s = 0
		}
		if s > specificity {
			specificity, q = s, r.q
		}
	}
	return q, specificity, specificity >= 0
}

// negotiate picks a representation for an Accept header. The format query
// parameter ("json" or "html"), when set, overrides the header. A missing
// header or a bare wildcard yields HTML. reprNone means nothing acceptable
// is offered.
func negotiate(accept, format string) representation {
	switch strings.ToLower(format) {
	case "json":
		return reprJSON
	case "html":
		return reprHTML
	}
	if strings.TrimSpace(accept) == "" {
		return reprHTML
	}

	ranges := parseAccept(accept)
	best, bestQ, bestSpec := reprNone, 0.0, -1
	for _, o := range offers {
		q, spec, ok := match(ranges, o.mediaType)
		if !ok || q == 0 {
			continue
		}
		if q > bestQ || (q == bestQ && spec > bestSpec) {
			best, bestQ, bestSpec = o.repr, q, spec
		}
	}
	if bestSpec == 0 {
		if q, _, ok := match(ranges, simple.MediaTypeHTML); ok && q == bestQ {
			return reprHTML
		}
	}
	return best
}
