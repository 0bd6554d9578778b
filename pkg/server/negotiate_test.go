package server

import (
	"testing"

	"github.com/matzehuels/simpleindex/pkg/simple"
)

func TestNegotiate(t *testing.T) {
	tests := []struct {
		name   string
		accept string
		format string
		want   representation
	}{
		{"empty", "", "", reprHTML},
		{"wildcard", "*/*", "", reprHTML},
		{"json v1", simple.MediaTypeJSONV1, "", reprJSON},
		{"json latest", simple.MediaTypeJSONLatest, "", reprJSON},
		{"html v1", simple.MediaTypeHTMLV1, "", reprHTMLV1},
		{"text html", "text/html", "", reprHTML},
		{"pip default", simple.AcceptSupportedHeader, "", reprJSON},
		{"html policy", simple.AcceptHTMLHeader, "", reprHTMLV1},
		{"q ordering", "text/html, application/vnd.pypi.simple.v1+json;q=0.5", "", reprHTML},
		{"exact beats wildcard", "*/*, application/vnd.pypi.simple.v1+json", "", reprJSON},
		{"type wildcard", "application/*", "", reprJSON},
		{"html refused", "*/*, text/html;q=0", "", reprJSON},
		{"unsupported", "application/xml", "", reprNone},
		{"all refused", "*/*;q=0", "", reprNone},
		{"garbage ranges skipped", ";;;, text/html", "", reprHTML},
		{"format json", "text/html", "json", reprJSON},
		{"format html", simple.MediaTypeJSONV1, "HTML", reprHTML},
		{"unknown format ignored", simple.MediaTypeJSONV1, "xml", reprJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := negotiate(tt.accept, tt.format); got != tt.want {
				t.Errorf("negotiate(%q, %q) = %v, want %v", tt.accept, tt.format, got, tt.want)
			}
		})
	}
}

func TestContentType(t *testing.T) {
	tests := map[representation]string{
		reprJSON:   simple.MediaTypeJSONV1,
		reprHTMLV1: simple.MediaTypeHTMLV1,
		reprHTML:   "text/html; charset=utf-8",
	}
	for repr, want := range tests {
		if got := repr.contentType(); got != want {
			t.Errorf("contentType(%v) = %q, want %q", repr, got, want)
		}
	}
}
