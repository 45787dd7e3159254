package utils

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// URLTools wraps a parsed, normalized URL.
type URLTools struct {
	URL *url.URL
}

func NewURLTools(raw string) (*URLTools, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse url %s: %w", raw, err)
	}

	urlTools := &URLTools{URL: u}
	urlTools.normalize()

	return urlTools, nil
}

func (u *URLTools) normalize() {
	u.URL.Fragment = ""
	u.URL.Scheme = strings.ToLower(u.URL.Scheme)
	u.URL.Host = strings.ToLower(u.URL.Host)

	// Internationalized hostnames compare in punycode form.
	if host := u.URL.Hostname(); host != "" {
		if ascii, err := idna.Lookup.ToASCII(host); err == nil && ascii != host {
			port := u.URL.Port()
			if port != "" {
				u.URL.Host = ascii + ":" + port
			} else {
				u.URL.Host = ascii
			}
		}
	}

	if (u.URL.Scheme == "http" && strings.HasSuffix(u.URL.Host, ":80")) ||
		(u.URL.Scheme == "https" && strings.HasSuffix(u.URL.Host, ":443")) {
		u.URL.Host, _, _ = strings.Cut(u.URL.Host, ":")
	}

	u.URL.Path = strings.TrimRight(u.URL.Path, "/")
}

// DomainIsSame reports whether both URLs share a hostname.
func (u *URLTools) DomainIsSame(target *URLTools) bool {
	return u.URL.Hostname() == target.URL.Hostname()
}

func (u *URLTools) DomainIsSameString(targetURL string) (bool, error) {
	parsed, err := NewURLTools(targetURL)
	if err != nil {
		return false, err
	}
	return u.URL.Hostname() == parsed.URL.Hostname(), nil
}

// ResolveFullURLString resolves targetURL against u.URL and returns an
// absolute URL.
func (u *URLTools) ResolveFullURLString(targetURL string) (string, error) {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return "", fmt.Errorf("couldn't parse url %s: %w", targetURL, err)
	}
	return u.URL.ResolveReference(parsed).String(), nil
}

// GetPath returns the URL path without a trailing slash (empty for root).
func (u *URLTools) GetPath() string {
	return strings.TrimRight(u.URL.Path, "/")
}
