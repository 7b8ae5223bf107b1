// Package dedup merges results from multiple providers into a unique
// set keyed by normalized URL and a coarse content fingerprint.
package dedup

import (
	"net/url"
	"sort"
	"strings"
)

// trackingParams are query parameters stripped during normalization.
// utm_* parameters are matched by prefix.
var trackingParams = map[string]struct{}{
	"fbclid": {},
	"gclid":  {},
	"ref":    {},
	"source": {},
	"mc_eid": {},
	"mc_cid": {},
}

// NormalizeURL canonicalizes a URL so that trivially different links
// to the same resource produce the same string:
//
//   - fragment dropped
//   - known tracking parameters removed, the rest sorted
//   - hostname lowercased, leading "www." stripped
//   - single trailing slash stripped (unless the path is "/")
//
// Scheme-less URLs are treated as https. Malformed URLs fall back to
// the lowercased raw string; normalization never fails.
func NormalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err == nil && u.Scheme == "" {
		u, err = url.Parse("https://" + strings.TrimSpace(raw))
	}
	if err != nil || u.Host == "" || u.Scheme == "" {
		return strings.ToLower(raw)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	path := u.Path
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}

	query := cleanQuery(u.Query())

	var b strings.Builder
	b.WriteString(strings.ToLower(u.Scheme))
	b.WriteString("://")
	b.WriteString(host)
	b.WriteString(path)
	if query != "" {
		b.WriteString("?")
		b.WriteString(query)
	}
	return b.String()
}

// cleanQuery drops tracking parameters and re-encodes the remainder
// with keys sorted lexicographically.
func cleanQuery(values url.Values) string {
	kept := url.Values{}
	for key, vals := range values {
		lower := strings.ToLower(key)
		if _, tracked := trackingParams[lower]; tracked {
			continue
		}
		if strings.HasPrefix(lower, "utm_") {
			continue
		}
		kept[key] = vals
	}
	// url.Values.Encode sorts by key.
	return kept.Encode()
}

// Domain returns the normalized hostname of a URL, or "unknown" when
// it cannot be parsed.
func Domain(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err == nil && u.Scheme == "" {
		u, err = url.Parse("https://" + strings.TrimSpace(raw))
	}
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// SecondLevelDomain returns the registrable label of a URL's hostname
// with the TLD stripped ("docs.python.org" -> "python"). Used by the
// markdown backlink section.
func SecondLevelDomain(raw string) string {
	host := Domain(raw)
	if host == "unknown" {
		return host
	}
	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return host
	}
	return parts[len(parts)-2]
}

// sortedKeys returns map keys in sorted order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
