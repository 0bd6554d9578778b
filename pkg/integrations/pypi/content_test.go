package pypi

import (
	"testing"

	"github.com/matzehuels/simpleindex/pkg/errors"
)

func TestBaseContentType(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"text/html", "text/html"},
		{"text/html; charset=utf-8", "text/html"},
		{"Application/Vnd.PyPI.Simple.V1+JSON", "application/vnd.pypi.simple.v1+json"},
		{"text/html;;broken", "text/html"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := BaseContentType(tt.in); got != tt.want {
			t.Errorf("BaseContentType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		contentType string
		want        Format
		wantErr     bool
	}{
		{"application/vnd.pypi.simple.v1+json", FormatJSON, false},
		{"application/vnd.pypi.simple.latest+json", FormatJSON, false},
		{"application/vnd.pypi.simple.v1+html", FormatHTML, false},
		{"text/html; charset=UTF-8", FormatHTML, false},
		{"application/json", 0, true},
		{"text/plain", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			got, err := DetectFormat(tt.contentType)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DetectFormat(%q) error = %v, wantErr %v", tt.contentType, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeUnsupportedMediaType) {
					t.Errorf("error code = %q", errors.GetCode(err))
				}
				return
			}
			if got != tt.want {
				t.Errorf("DetectFormat(%q) = %v, want %v", tt.contentType, got, tt.want)
			}
		})
	}
}

func TestHTMLTextCharset(t *testing.T) {
	// "café" in ISO-8859-1
	body := []byte{'c', 'a', 'f', 0xe9}
	got, err := htmlText(body, "text/html; charset=iso-8859-1")
	if err != nil {
		t.Fatalf("htmlText error: %v", err)
	}
	if got != "café" {
		t.Errorf("htmlText = %q, want café", got)
	}

	got, err = htmlText([]byte("plain"), "text/html")
	if err != nil || got != "plain" {
		t.Errorf("htmlText(utf-8) = %q, %v", got, err)
	}
}

func TestHTMLTextUnknownCharset(t *testing.T) {
	if _, err := htmlText([]byte("x"), "text/html; charset=klingon"); err == nil {
		t.Error("unknown charset should fail")
	}
}
