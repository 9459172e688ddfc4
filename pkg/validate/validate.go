// Package validate implements the domain/URL/parameter validation and
// canonicalization rules every request must pass through before it reaches
// rate limiting, caching, or fetching.
package validate

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/prayag001/NewsNexus/pkg/domain"
)

const (
	maxDomainLen   = 253
	minDomainLen   = 3
	maxURLLen      = 2000
	maxTopicLen    = 100
	maxLocationLen = 100

	MinCount     = 1
	MaxCount     = 100
	MinLastNDays = 1
	MaxLastNDays = 365

	// DefaultRecentDaysCap is applied when the caller asked for "recent"
	// articles without specifying lastNDays explicitly.
	DefaultRecentDaysCap = 15
)

var sanitizer = bluemonday.StrictPolicy()

// Domain validates and normalizes a caller-supplied domain token, stripping
// a leading "www." per the canonical form used throughout the engine.
func Domain(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "www.")

	if len(s) < minDomainLen || len(s) > maxDomainLen {
		return "", domain.NewError(domain.BadInput, "domain length out of range")
	}
	if strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") {
		return "", domain.NewError(domain.BadInput, "domain has leading or trailing dot")
	}
	if !strings.Contains(s, ".") {
		return "", domain.NewError(domain.BadInput, "domain must contain at least one dot")
	}
	if net.ParseIP(s) != nil {
		return "", domain.NewError(domain.BadInput, "domain must not be an IP literal")
	}
	for _, r := range s {
		if !isDomainRune(r) {
			return "", domain.NewError(domain.BadInput, "domain contains invalid characters")
		}
	}
	return s, nil
}

func isDomainRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '.' || r == '-':
		return true
	default:
		return false
	}
}

// URL validates an absolute http(s) URL, rejecting scheme-smuggling,
// loopback/private-IP literals, and oversized inputs.
func URL(s string) (*url.URL, error) {
	if len(s) == 0 || len(s) > maxURLLen {
		return nil, domain.NewError(domain.BadInput, "url length out of range")
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, domain.Wrap(domain.BadInput, "url does not parse", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, domain.NewError(domain.BadInput, "url scheme must be http or https")
	}
	if u.Host == "" {
		return nil, domain.NewError(domain.BadInput, "url has no host")
	}
	host := u.Hostname()
	if ip := net.ParseIP(host); ip != nil && (ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified()) {
		return nil, domain.NewError(domain.BadInput, "url host must not be a private or loopback IP literal")
	}
	return u, nil
}

// CanonicalURL lower-cases scheme and host, strips a single trailing slash,
// drops the fragment, and removes utm_* query parameters, per the
// canonicalization rule shared by the cache key and the deduplicator.
func CanonicalURL(s string) (string, error) {
	u, err := URL(s)
	if err != nil {
		return "", err
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	if u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			if strings.HasPrefix(strings.ToLower(key), "utm_") {
				q.Del(key)
			}
		}
		u.RawQuery = q.Encode()
	}

	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String(), nil
}

// Count checks that a caller-supplied result count lies in [MinCount, MaxCount],
// returning BadInput for out-of-range or unset (zero) values.
func Count(n int) (int, error) {
	if n < MinCount || n > MaxCount {
		return 0, domain.NewError(domain.BadInput, "count must be in [1,100]")
	}
	return n, nil
}

// LastNDays clamps the lookback window. When explicit is false (the caller
// did not specify a value), n is kept if it lies in [1, DefaultRecentDaysCap]
// and DefaultRecentDaysCap is returned otherwise.
func LastNDays(n int, explicit bool) (int, error) {
	if !explicit {
		if n <= 0 || n > DefaultRecentDaysCap {
			return DefaultRecentDaysCap, nil
		}
		return n, nil
	}
	if n < MinLastNDays || n > MaxLastNDays {
		return 0, domain.NewError(domain.BadInput, "lastNDays must be in [1,365]")
	}
	return n, nil
}

// TextParam strips, lower-cases and HTML-sanitizes a topic or location
// parameter, then length-checks it. Returns BadInput if the sanitized length
// exceeds maxLen.
func TextParam(s string, maxLen int) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = sanitizer.Sanitize(s)
	if len(s) > maxLen {
		return "", domain.NewError(domain.BadInput, "parameter exceeds maximum length")
	}
	return s, nil
}

// Topic validates and normalizes a topic parameter.
func Topic(s string) (string, error) { return TextParam(s, maxTopicLen) }

// Location validates and normalizes a location parameter.
func Location(s string) (string, error) { return TextParam(s, maxLocationLen) }

// Title sanitizes and bounds an article title to 500 characters, per the
// data model's title invariant.
func Title(s string) string {
	s = sanitizer.Sanitize(strings.TrimSpace(s))
	return truncate(s, 500)
}

// Summary sanitizes and bounds an article summary to maxLen characters
// (the configured summary length).
func Summary(s string, maxLen int) string {
	s = sanitizer.Sanitize(strings.TrimSpace(s))
	return truncate(s, maxLen)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen])
}

// ParseIntParam is a small helper for transports that carry numeric
// parameters as strings (e.g. query strings); the JSON tool surface itself
// takes typed integers and does not need it, but a CLI or stdio harness
// forwarding raw text does.
func ParseIntParam(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
