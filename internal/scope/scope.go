package scope

import (
	"net/url"
	"strings"
)

// archiveHost is the public web-archive service. Pages replayed through it
// are fetched from a third-party host but represent target content, so any
// host under it is always considered in scope.
const archiveHost = "web.archive.org"

// Classifier decides whether a URL belongs to the crawl's target scope.
//
// The decision uses the allowed domain when one is set (live crawls), and
// falls back to exact-host comparison against the crawl's own seed host
// otherwise (archived crawls, where the allowed domain is intentionally
// left empty because historical URLs may span redirected domains).
type Classifier struct {
	// allowedDomain, when non-empty, makes a host internal iff it equals
	// the domain or is a subdomain of it.
	allowedDomain string

	// seedHost is the host of the first seed URL, used when no allowed
	// domain is configured.
	seedHost string
}

// NewClassifier creates a Classifier. allowedDomain may be empty, in which
// case only hosts equal to the seed URL's host are internal (besides the
// archive exception).
func NewClassifier(allowedDomain, seedURL string) *Classifier {
	c := &Classifier{allowedDomain: strings.ToLower(allowedDomain)}
	if u, err := url.Parse(seedURL); err == nil {
		c.seedHost = strings.ToLower(u.Host)
	}
	return c
}

// IsInternal reports whether rawURL's host is part of the target scope.
//
// The host is lowercased and stripped of any port before comparison. Hosts
// under the web archive are always internal, overriding the domain check.
func (c *Classifier) IsInternal(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	host := strings.ToLower(u.Host)
	if host == "" {
		return false
	}
	host = stripPort(host)

	if host == archiveHost || strings.HasSuffix(host, "."+archiveHost) {
		return true
	}

	if c.allowedDomain != "" {
		return host == c.allowedDomain || strings.HasSuffix(host, "."+c.allowedDomain)
	}

	return host == stripPort(c.seedHost)
}

// ValidDomain normalizes a raw domain value and reports whether it is a
// plausible DNS domain. It strips a trailing port and trailing dot,
// lowercases, and rejects values with path separators, "@", or
// whitespace. A single-label value is rejected unless it is "localhost"
// (kept valid for test targets).
//
// Returns the normalized domain and true, or "" and false.
func ValidDomain(raw string) (string, bool) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return "", false
	}

	value = stripPort(value)
	value = strings.TrimSuffix(value, ".")

	if strings.ContainsAny(value, "/\\@ \t\n") {
		return "", false
	}

	if !strings.Contains(value, ".") && value != "localhost" {
		return "", false
	}

	return value, true
}

// stripPort removes a trailing :port from a host, if present.
func stripPort(host string) string {
	if i := strings.Index(host, ":"); i >= 0 {
		return host[:i]
	}
	return host
}
