package utils_test

import (
	"testing"

	"github.com/nodepress/designer/internal/utils"
)

func TestNewURLTools_Normalizes(t *testing.T) {
	cases := []struct {
		in       string
		wantHost string
		wantPath string
	}{
		{"HTTPS://Example.COM:443/About/", "example.com", "/About"},
		{"http://example.com:80/", "example.com", ""},
		{"https://example.com:8443/shop", "example.com:8443", "/shop"},
		{"https://bücher.example/x", "xn--bcher-kva.example", "/x"},
	}
	for _, c := range cases {
		u, err := utils.NewURLTools(c.in)
		if err != nil {
			t.Fatalf("NewURLTools(%q): %v", c.in, err)
		}
		if u.URL.Host != c.wantHost {
			t.Fatalf("%q host = %q, want %q", c.in, u.URL.Host, c.wantHost)
		}
		if u.GetPath() != c.wantPath {
			t.Fatalf("%q path = %q, want %q", c.in, u.GetPath(), c.wantPath)
		}
	}
}

func TestDomainIsSame(t *testing.T) {
	a, err := utils.NewURLTools("https://example.com/a")
	if err != nil {
		t.Fatal(err)
	}
	same, err := a.DomainIsSameString("http://EXAMPLE.com/other")
	if err != nil || !same {
		t.Fatalf("expected same domain, got %v %v", same, err)
	}
	same, err = a.DomainIsSameString("https://other.com")
	if err != nil || same {
		t.Fatalf("expected different domain, got %v %v", same, err)
	}
}

func TestResolveFullURLString(t *testing.T) {
	base, err := utils.NewURLTools("https://example.com/app/page")
	if err != nil {
		t.Fatal(err)
	}
	abs, err := base.ResolveFullURLString("/static/logo.png")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if abs != "https://example.com/static/logo.png" {
		t.Fatalf("resolved = %q", abs)
	}
	abs, err = base.ResolveFullURLString("https://cdn.example.com/x.css")
	if err != nil || abs != "https://cdn.example.com/x.css" {
		t.Fatalf("absolute url changed: %q %v", abs, err)
	}
}
