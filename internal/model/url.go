package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNotAbsolute is returned when a URL lacks a scheme or host after
// resolution.
var ErrNotAbsolute = errors.New("url is not absolute")

// NormalizeURL returns the canonical form of an absolute URL used as a
// discovery tree key: scheme and host lowercased, fragment dropped, query
// preserved, trailing slash trimmed except on the root path. The same page
// always normalizes to the same key regardless of how it was linked.
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", raw, err)
	}
	return normalizeURL(u)
}

// ResolveURL resolves href against base and normalizes the result.
// base must be an absolute URL.
func ResolveURL(base *url.URL, href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("parse href %q: %w", href, err)
	}
	return normalizeURL(base.ResolveReference(ref))
}

func normalizeURL(u *url.URL) (string, error) {
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrNotAbsolute, u.String())
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	// Empty path and "/" are the same resource; non-root paths never keep
	// a trailing slash.
	if u.Path == "" {
		u.Path = "/"
	}
	if len(u.Path) > 1 {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String(), nil
}

// SameHost reports whether two URLs share a host, ignoring case.
// Malformed URLs never match.
func SameHost(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return ua.Host != "" && strings.EqualFold(ua.Host, ub.Host)
}
