package domain

import (
	"errors"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// ErrEmptyHost is returned when a URL carries no host component.
var ErrEmptyHost = errors.New("url has no host")

// Normalize returns the registrable domain of a hostname, cookie domain or URL.
//
// Scheme, userinfo, port, path, query and fragment are stripped, a leading
// dot (as used in cookie Domain attributes) and a trailing root dot are
// removed, and the remaining host is lowercased and converted to its ASCII
// (punycode) form before the public suffix lookup.
//
// IP addresses are returned unchanged. When the public suffix list cannot
// derive a registrable domain (single-label hosts such as "localhost", or
// inputs that are themselves a public suffix) the last two labels of the
// host are returned instead.
//
// Normalize is deterministic and has no side effects.
func Normalize(hostOrDomain string) string {
	host := extractHost(hostOrDomain)
	if host == "" {
		return ""
	}

	if ip := net.ParseIP(host); ip != nil {
		return ip.String()
	}

	if ascii, err := idna.ToASCII(host); err == nil && ascii != "" {
		host = ascii
	}

	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return lastLabels(host, 2)
	}
	return registrable
}

// Equal reports whether a and b share a registrable domain.
// Two empty inputs are never equal.
func Equal(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	return na != "" && na == nb
}

// extractHost strips everything but the host from s and lowercases it.
func extractHost(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return ""
	}

	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil {
			s = u.Host
		} else {
			_, s, _ = strings.Cut(s, "://")
		}
	}

	// Drop path, query and fragment of scheme-less input such as "example.com/path"
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}

	// Drop userinfo
	if i := strings.LastIndex(s, "@"); i >= 0 {
		s = s[i+1:]
	}

	s = stripPort(s)
	s = strings.TrimLeft(s, ".")
	s = strings.TrimSuffix(s, ".")

	return s
}

// stripPort removes a trailing ":port" while leaving bare IPv6 addresses intact.
func stripPort(s string) string {
	if strings.HasPrefix(s, "[") {
		if end := strings.Index(s, "]"); end > 0 {
			return s[1:end]
		}
		return strings.Trim(s, "[]")
	}

	// More than one colon without brackets is a bare IPv6 address
	if strings.Count(s, ":") != 1 {
		return s
	}

	host, _, err := net.SplitHostPort(s)
	if err != nil {
		return s
	}
	return host
}

// lastLabels returns the last n dot-separated labels of host.
func lastLabels(host string, n int) string {
	labels := strings.Split(host, ".")
	nonEmpty := labels[:0]
	for _, l := range labels {
		if l != "" {
			nonEmpty = append(nonEmpty, l)
		}
	}
	if len(nonEmpty) <= n {
		return strings.Join(nonEmpty, ".")
	}
	return strings.Join(nonEmpty[len(nonEmpty)-n:], ".")
}

// HostFromURL returns the hostname of rawURL, followed by ":port" when the
// URL carries an explicit port. This is the visited domain that cookie
// domains are compared against.
func HostFromURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}

	host := u.Hostname()
	if host == "" {
		return "", ErrEmptyHost
	}

	if port := u.Port(); port != "" {
		return host + ":" + port, nil
	}
	return host, nil
}

// EnsureScheme prefixes rawURL with "https://" unless it already starts
// with "http://" or "https://".
func EnsureScheme(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	lower := strings.ToLower(rawURL)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return rawURL
	}
	return "https://" + rawURL
}
