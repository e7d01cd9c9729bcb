// Package urlutil provides URL validation and normalization helpers used
// for scan input handling and cache keying.
package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidURL is returned when the input cannot be parsed as an absolute
// HTTP or HTTPS URL.
var ErrInvalidURL = errors.New("invalid URL")

var schemeRe = regexp.MustCompile(`(?i)^https?://`)

// EnsureScheme prefixes https:// when the input has no HTTP scheme.
func EnsureScheme(raw string) string {
	if schemeRe.MatchString(raw) {
		return raw
	}
	return "https://" + raw
}

// Validate parses the input as an absolute http(s) URL, defaulting the
// scheme to https. Returns the cleaned absolute URL.
func Validate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidURL)
	}

	raw = EnsureScheme(raw)

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, parsed.Scheme)
	}
	if parsed.Hostname() == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	return parsed.String(), nil
}

// Normalize produces the canonical cache key for a URL: scheme folded to
// https, lowercased host, www. stripped, trailing slash removed (unless the
// path is just "/", which is dropped entirely). Query and fragment are
// discarded, so http://Example.com/ and https://www.example.com share a key.
func Normalize(raw string) string {
	parsed, err := url.Parse(EnsureScheme(raw))
	if err != nil || parsed.Hostname() == "" {
		return strings.TrimRight(strings.ToLower(raw), "/")
	}

	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")

	path := parsed.EscapedPath()
	if path == "/" {
		path = ""
	} else {
		path = strings.TrimSuffix(path, "/")
	}

	return "https://" + host + path
}

// Domain returns the hostname with any leading www. stripped.
func Domain(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Hostname() == "" {
		return raw
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}

// Origin returns scheme://host[:port] for the URL, or the input unchanged
// when it cannot be parsed.
func Origin(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return raw
	}
	return parsed.Scheme + "://" + parsed.Host
}

// Resolve resolves a possibly-relative href against a base URL.
func Resolve(base, href string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	rel, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(rel).String(), nil
}
