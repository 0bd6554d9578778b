package simple

import (
	"testing"
)

func TestAcceptHeader(t *testing.T) {
	tests := []struct {
		policy AcceptPolicy
		want   string
	}{
		{AcceptJSONLatest, "application/vnd.pypi.simple.latest+json"},
		{AcceptJSONV1, "application/vnd.pypi.simple.v1+json"},
		{AcceptHTML, "application/vnd.pypi.simple.v1+html, text/html;q=0.01"},
		{AcceptSupported, "application/vnd.pypi.simple.latest+json, application/vnd.pypi.simple.v1+json;q=0.9, application/vnd.pypi.simple.v1+html;q=0.1, text/html;q=0.01"},
		{AcceptPolicy(99), AcceptSupportedHeader},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			if got := AcceptHeader(tt.policy); got != tt.want {
				t.Errorf("AcceptHeader(%v) = %q, want %q", tt.policy, got, tt.want)
			}
		})
	}
}

func TestParseAcceptPolicy(t *testing.T) {
	for _, p := range []AcceptPolicy{AcceptSupported, AcceptJSONLatest, AcceptJSONV1, AcceptHTML} {
		got, err := ParseAcceptPolicy(p.String())
		if err != nil {
			t.Fatalf("ParseAcceptPolicy(%q) error: %v", p, err)
		}
		if got != p {
			t.Errorf("ParseAcceptPolicy(%q) = %v", p, got)
		}
	}
	if got, err := ParseAcceptPolicy(" HTML "); err != nil || got != AcceptHTML {
		t.Errorf("ParseAcceptPolicy should ignore case and spaces, got %v, %v", got, err)
	}
	if _, err := ParseAcceptPolicy("xml"); err == nil {
		t.Error("ParseAcceptPolicy(xml) should fail")
	}
}

func TestProjectURL(t *testing.T) {
	tests := []struct {
		base, name, want string
	}{
		{"https://pypi.org/simple/", "requests", "https://pypi.org/simple/requests/"},
		{"https://pypi.org/simple", "requests", "https://pypi.org/simple/requests/"},
		{"https://pypi.org/simple/", "Foo.Bar", "https://pypi.org/simple/foo-bar/"},
		{"/simple/", "Django", "/simple/django/"},
		{"", "numpy", "numpy/"},
	}
	for _, tt := range tests {
		got, err := ProjectURL(tt.base, tt.name)
		if err != nil {
			t.Fatalf("ProjectURL(%q, %q) error: %v", tt.base, tt.name, err)
		}
		if got != tt.want {
			t.Errorf("ProjectURL(%q, %q) = %q, want %q", tt.base, tt.name, got, tt.want)
		}
	}
}

func TestProjectURLSameForEquivalentNames(t *testing.T) {
	a, _ := ProjectURL("https://pypi.org/simple/", "Django")
	b, _ := ProjectURL("https://pypi.org/simple/", "django")
	if a != b {
		t.Errorf("equivalent names produced %q and %q", a, b)
	}
}

func TestProjectURLInvalidName(t *testing.T) {
	if _, err := ProjectURL("https://pypi.org/simple/", "bad name"); err == nil {
		t.Error("expected error for invalid name")
	}
}
