package utils

import (
	"net/url"
	"strings"
)

// IsWebURL reports whether rawURL is an absolute http(s) address with a host.
func IsWebURL(rawURL string) bool {
	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// Hostname returns the host part of rawURL, or "unknown" if it cannot be parsed.
// It is used as a low-cardinality metrics label.
func Hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return u.Hostname()
}
