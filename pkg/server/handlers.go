package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/simpleindex/pkg/errors"
	"github.com/matzehuels/simpleindex/pkg/simple"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	repr := negotiate(r.Header.Get("Accept"), r.URL.Query().Get("format"))
	if repr == reprNone {
		notAcceptable(w)
		return
	}

	idx, err := s.upstream.FetchIndex(r.Context(), noCache(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := s.publicIndex(idx)

	var body []byte
	if repr == reprJSON {
		if body, err = simple.EncodeIndexJSON(out); err != nil {
			s.fail(w, r, err)
			return
		}
	} else {
		body = simple.RenderIndexHTML(out)
	}
	write(w, repr, body)
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "project")
	name, err := simple.Normalize(raw)
	if err != nil {
		http.Error(w, errors.UserMessage(err), http.StatusNotFound)
		return
	}
	if string(name) != raw || !strings.HasSuffix(r.URL.Path, "/") {
		redirect(w, r, "/simple/"+string(name)+"/")
		return
	}

	repr := negotiate(r.Header.Get("Accept"), r.URL.Query().Get("format"))
	if repr == reprNone {
		notAcceptable(w)
		return
	}

	details, err := s.upstream.FetchProject(r.Context(), string(name), noCache(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := publicDetails(details, name)

	var body []byte
	if repr == reprJSON {
		if body, err = simple.EncodeDetailsJSON(out); err != nil {
			s.fail(w, r, err)
			return
		}
	} else {
		body = simple.RenderDetailsHTML(out)
	}
	write(w, repr, body)
}

// publicIndex rewrites entry links to point at this proxy.
func (s *Server) publicIndex(idx *simple.ProjectIndex) *simple.ProjectIndex {
	out := &simple.ProjectIndex{
		Meta:     servedMeta(idx.Meta),
		Projects: make([]simple.ProjectEntry, len(idx.Projects)),
	}
	for i, p := range idx.Projects {
		p.URL = ""
		out.Projects[i] = p
	}
	if s.baseURL != "" {
		return out.Resolve(s.baseURL)
	}
	return out
}

// publicDetails prepares upstream details for re-encoding. JSON requires a
// hashes object on every file, so files without hashes get an empty one.
func publicDetails(d *simple.ProjectDetails, name simple.ProjectName) *simple.ProjectDetails {
	out := *d
	out.Meta = servedMeta(d.Meta)
	if out.Name == "" {
		out.Name = name
	}
	out.Files = make([]simple.ProjectFile, len(d.Files))
	for i, f := range d.Files {
		if f.Hashes == nil {
			f.Hashes = simple.Hashes{}
		}
		out.Files[i] = f
	}
	return &out
}

// servedMeta caps the declared version at the one this proxy can encode.
func servedMeta(m simple.Meta) simple.Meta {
	if simple.KnownVersion.Less(m.APIVersion) {
		m.APIVersion = simple.KnownVersion
	}
	return m
}

// noCache reports whether the client asked to bypass caches.
func noCache(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Cache-Control")), "no-cache")
}

func write(w http.ResponseWriter, repr representation, body []byte) {
	w.Header().Set("Content-Type", repr.contentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Add("Vary", "Accept")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	if r.URL.RawQuery != "" {
		path += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, path, http.StatusMovedPermanently)
}

func notAcceptable(w http.ResponseWriter) {
	http.Error(w, "none of the requested representations is available; supported: "+
		simple.MediaTypeJSONV1+", "+simple.MediaTypeHTMLV1+", "+simple.MediaTypeHTML,
		http.StatusNotAcceptable)
}

// fail maps an upstream or decoding error to a status code.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("upstream request failed", "path", r.URL.Path, "id", RequestID(r.Context()), "err", err)
	}
	var rl *errors.RateLimitedError
	if stderrors.As(err, &rl) && rl.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter))
	}
	http.Error(w, errors.UserMessage(err), status)
}

func statusFor(err error) int {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodeProjectNotFound, errors.ErrCodeInvalidName:
		return http.StatusNotFound
	case errors.ErrCodeRateLimited:
		return http.StatusServiceUnavailable
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeMalformedDocument, errors.ErrCodeMissingField,
		errors.ErrCodeUnsupportedVersion, errors.ErrCodeUnsupportedMediaType,
		errors.ErrCodeNetwork:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
