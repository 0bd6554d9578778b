package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	"github.com/matzehuels/simpleindex/pkg/errors"
	"github.com/matzehuels/simpleindex/pkg/simple"
)

type fakeUpstream struct {
	index     *simple.ProjectIndex
	projects  map[simple.ProjectName]*simple.ProjectDetails
	err       error
	refreshes atomic.Int32
}

func (f *fakeUpstream) FetchIndex(_ context.Context, refresh bool) (*simple.ProjectIndex, error) {
	if refresh {
		f.refreshes.Add(1)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.index, nil
}

func (f *fakeUpstream) FetchProject(_ context.Context, name string, refresh bool) (*simple.ProjectDetails, error) {
	if refresh {
		f.refreshes.Add(1)
	}
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.projects[simple.MustNormalize(name)]
	if !ok {
		return nil, errors.New(errors.ErrCodeProjectNotFound, "project %s not found", name)
	}
	return d, nil
}

func newUpstream() *fakeUpstream {
	size := int64(1234)
	return &fakeUpstream{
		index: &simple.ProjectIndex{
			Meta: simple.Meta{APIVersion: simple.DefaultVersion},
			Projects: []simple.ProjectEntry{
				{Name: "requests", DisplayName: "requests", URL: "https://upstream.example.com/simple/requests/"},
				{Name: "zope-interface", DisplayName: "zope.interface", URL: "https://upstream.example.com/simple/zope-interface/"},
			},
		},
		projects: map[simple.ProjectName]*simple.ProjectDetails{
			"requests": {
				Meta: simple.Meta{APIVersion: simple.SchemaVersion{Major: 1, Minor: 4}},
				Name: "requests",
				Files: []simple.ProjectFile{
					{
						Filename:     "requests-2.31.0-py3-none-any.whl",
						URL:          "https://files.example.com/requests-2.31.0-py3-none-any.whl",
						Hashes:       simple.Hashes{"sha256": "abcd"},
						CoreMetadata: simple.MetadataAvailable(true),
						Size:         &size,
					},
					{
						Filename: "requests-2.31.0.tar.gz",
						URL:      "https://files.example.com/requests-2.31.0.tar.gz",
						Yanked:   simple.YankedBecause("broken"),
					},
				},
			},
		},
	}
}

func newTestServer(t *testing.T, up Upstream, opts Options) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(New(up, opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url, accept string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func TestIndexJSON(t *testing.T) {
	ts := newTestServer(t, newUpstream(), Options{})

	resp, body := get(t, ts.URL+"/simple/", simple.MediaTypeJSONV1)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != simple.MediaTypeJSONV1 {
		t.Errorf("Content-Type = %q", ct)
	}
	if v := resp.Header.Get("Vary"); v != "Accept" {
		t.Errorf("Vary = %q", v)
	}

	idx, warn, err := simple.DecodeIndexJSON([]byte(body))
	if err != nil || warn != nil {
		t.Fatalf("decode: warn=%v err=%v", warn, err)
	}
	if len(idx.Projects) != 2 || idx.Projects[1].DisplayName != "zope.interface" {
		t.Errorf("projects = %+v", idx.Projects)
	}
}

func TestIndexHTMLLinksToProxy(t *testing.T) {
	ts := newTestServer(t, newUpstream(), Options{})

	resp, body := get(t, ts.URL+"/simple/", "text/html")
	if ct := resp.Header.Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	idx, _, err := simple.DecodeIndexHTML(body, ts.URL+"/simple/")
	if err != nil {
		t.Fatal(err)
	}
	want := ts.URL + "/simple/zope-interface/"
	if got := idx.Projects[1].URL; got != want {
		t.Errorf("URL = %q, want %q", got, want)
	}
}

func TestIndexHTMLBaseURL(t *testing.T) {
	ts := newTestServer(t, newUpstream(), Options{BaseURL: "https://proxy.example.com/simple/"})

	_, body := get(t, ts.URL+"/simple/", "")
	if !strings.Contains(body, `href="https://proxy.example.com/simple/requests/"`) {
		t.Errorf("links should use the base URL:\n%s", body)
	}
	if strings.Contains(body, "upstream.example.com") {
		t.Errorf("links should not point upstream:\n%s", body)
	}
}

func TestProjectJSON(t *testing.T) {
	ts := newTestServer(t, newUpstream(), Options{})

	resp, body := get(t, ts.URL+"/simple/requests/", simple.AcceptSupportedHeader)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	d, warn, err := simple.DecodeDetailsJSON([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if warn != nil {
		t.Errorf("served version should be capped, got warning %v", warn)
	}
	if d.Meta.APIVersion != simple.KnownVersion {
		t.Errorf("api version = %v, want %v", d.Meta.APIVersion, simple.KnownVersion)
	}
	if len(d.Files) != 2 {
		t.Fatalf("files = %d", len(d.Files))
	}
	if d.Files[1].Hashes == nil || len(d.Files[1].Hashes) != 0 {
		t.Errorf("missing hashes should be served as {}, got %v", d.Files[1].Hashes)
	}
	if !d.Files[1].Yanked.IsYanked() || d.Files[1].Yanked.Reason() != "broken" {
		t.Errorf("yanked = %+v", d.Files[1].Yanked)
	}
	if d.Files[0].Size == nil || *d.Files[0].Size != 1234 {
		t.Errorf("size = %v", d.Files[0].Size)
	}
}

func TestProjectHTML(t *testing.T) {
	ts := newTestServer(t, newUpstream(), Options{})

	resp, body := get(t, ts.URL+"/simple/requests/", simple.MediaTypeHTMLV1)
	if ct := resp.Header.Get("Content-Type"); ct != simple.MediaTypeHTMLV1 {
		t.Errorf("Content-Type = %q", ct)
	}
	d, _, err := simple.DecodeDetailsHTML(body, ts.URL+"/simple/requests/")
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "requests" || len(d.Files) != 2 {
		t.Fatalf("details = %+v", d)
	}
	if h, _ := d.Files[0].Hashes.Get("sha256"); h != "abcd" {
		t.Errorf("sha256 = %q", h)
	}
	if !d.Files[0].CoreMetadata.Available() {
		t.Error("core metadata should be advertised")
	}
}

func TestProjectRedirects(t *testing.T) {
	ts := newTestServer(t, newUpstream(), Options{})

	tests := []struct {
		path, location string
	}{
		{"/simple/Requests/", "/simple/requests/"},
		{"/simple/zope.interface/", "/simple/zope-interface/"},
		{"/simple/requests", "/simple/requests/"},
		{"/simple/Requests?format=json", "/simple/requests/?format=json"},
		{"/simple", "/simple/"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, _ := get(t, ts.URL+tt.path, "")
			if resp.StatusCode != http.StatusMovedPermanently {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if loc := resp.Header.Get("Location"); loc != tt.location {
				t.Errorf("Location = %q, want %q", loc, tt.location)
			}
		})
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		path string
		want int
	}{
		{"unknown project", nil, "/simple/nope/", http.StatusNotFound},
		{"invalid name", nil, "/simple/a%20b/", http.StatusNotFound},
		{"malformed upstream", &simple.MalformedDocumentError{Reason: "bad"}, "/simple/", http.StatusBadGateway},
		{"unsupported upstream", fmt.Errorf("decode: %w", &simple.UnsupportedVersionError{}), "/simple/requests/", http.StatusBadGateway},
		{"rate limited", &errors.RateLimitedError{RetryAfter: 30}, "/simple/", http.StatusServiceUnavailable},
		{"deadline", context.DeadlineExceeded, "/simple/", http.StatusGatewayTimeout},
		{"unexpected", fmt.Errorf("boom"), "/simple/", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := newUpstream()
			up.err = tt.err
			ts := newTestServer(t, up, Options{})
			resp, body := get(t, ts.URL+tt.path, "")
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.want, body)
			}
		})
	}
}

func TestRetryAfterForwarded(t *testing.T) {
	up := newUpstream()
	up.err = &errors.RateLimitedError{RetryAfter: 30}
	ts := newTestServer(t, up, Options{})

	resp, _ := get(t, ts.URL+"/simple/", "")
	if got := resp.Header.Get("Retry-After"); got != "30" {
		t.Errorf("Retry-After = %q", got)
	}
}

func TestNotAcceptable(t *testing.T) {
	ts := newTestServer(t, newUpstream(), Options{})
	resp, _ := get(t, ts.URL+"/simple/", "application/xml")
	if resp.StatusCode != http.StatusNotAcceptable {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestNoCacheRefreshes(t *testing.T) {
	up := newUpstream()
	ts := newTestServer(t, up, Options{})

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/simple/requests/", nil)
	req.Header.Set("Cache-Control", "no-cache")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if up.refreshes.Load() != 1 {
		t.Errorf("refreshes = %d, want 1", up.refreshes.Load())
	}
}

func TestRequestID(t *testing.T) {
	ts := newTestServer(t, newUpstream(), Options{})

	resp, _ := get(t, ts.URL+"/healthz", "")
	if _, err := uuid.Parse(resp.Header.Get(RequestIDHeader)); err != nil {
		t.Errorf("generated request id %q is not a UUID", resp.Header.Get(RequestIDHeader))
	}

	id := uuid.NewString()
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != id {
		t.Errorf("request id = %q, want %q", got, id)
	}

	req.Header.Set(RequestIDHeader, "not-a-uuid")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got == "not-a-uuid" {
		t.Error("invalid request ids should be replaced")
	}
}
