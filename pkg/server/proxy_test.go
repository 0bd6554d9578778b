package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matzehuels/simpleindex/pkg/integrations/pypi"
	"github.com/matzehuels/simpleindex/pkg/simple"
)

var _ Upstream = (*pypi.Client)(nil)

// An HTML-only upstream is served as JSON.
func TestProxyTranslatesHTMLToJSON(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/simple/demo/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html><html><body>
<a href="/files/demo-1.0.tar.gz#sha256=0123abcd" data-requires-python="&gt;=3.8">demo-1.0.tar.gz</a>
</body></html>`))
	})
	upstream := httptest.NewServer(mux)
	defer upstream.Close()

	client, err := pypi.NewClient(pypi.Options{IndexURL: upstream.URL + "/simple/", Accept: simple.AcceptHTML})
	if err != nil {
		t.Fatal(err)
	}
	ts := newTestServer(t, client, Options{})

	resp, body := get(t, ts.URL+"/simple/demo/", simple.MediaTypeJSONV1)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	d, _, err := simple.DecodeDetailsJSON([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "demo" || len(d.Files) != 1 {
		t.Fatalf("details = %+v", d)
	}
	f := d.Files[0]
	if f.URL != upstream.URL+"/files/demo-1.0.tar.gz" {
		t.Errorf("URL = %q", f.URL)
	}
	if h, _ := f.Hashes.Get("sha256"); h != "0123abcd" {
		t.Errorf("sha256 = %q", h)
	}
	if f.RequiresPython == nil || *f.RequiresPython != ">=3.8" {
		t.Errorf("requires-python = %v", f.RequiresPython)
	}
}
