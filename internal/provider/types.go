// Package provider defines the uniform search-provider contract and the
// concrete backends (Brave, DuckDuckGo, SerpAPI, RSS) that implement it.
//
// Providers are collaborators at the edge of the result pipeline: each
// exposes Search and HealthCheck, and failures are always surfaced as
// provider-tagged errors so the fetcher can isolate them.
package provider

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// Result is a single search result as produced by a provider.
// It is immutable once created, except for metadata merges performed
// by the deduplicator.
type Result struct {
	// URL is the result link. Expected to be an absolute URL; malformed
	// URLs are tolerated downstream with fallback behavior.
	URL string `json:"url"`

	// Title is the result title.
	Title string `json:"title"`

	// Snippet is the result summary or description.
	Snippet string `json:"snippet"`

	// Source is the provider tag that produced this result.
	Source string `json:"source"`

	// Timestamp is the publication time if known, retrieval time otherwise.
	Timestamp time.Time `json:"timestamp"`

	// Metadata is an open key-value bag. The deduplicator merges
	// duplicate results' metadata here, including a "sources" list of
	// every provider that returned the same logical resource.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// DateRange restricts results to a publication window.
// Zero From or To means unbounded on that side.
type DateRange struct {
	From time.Time `json:"from,omitempty"`
	To   time.Time `json:"to,omitempty"`
}

// Contains reports whether t falls within the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// Options configures a single provider search call.
type Options struct {
	// Limit is the maximum number of results to return.
	Limit int

	// Timeout bounds the provider call. Zero means the provider default.
	Timeout time.Duration

	// Domains restricts results to these domains (suffix match).
	Domains []string

	// ExcludeDomains drops results from these domains (suffix match).
	ExcludeDomains []string

	// DateRange restricts results by publication date.
	DateRange *DateRange

	// Locale is an optional locale hint (e.g., "en-US").
	Locale string
}

// Provider is the uniform capability every search backend implements.
type Provider interface {
	// Name returns the provider tag (e.g., "brave", "rss").
	Name() string

	// Search executes a query and returns results. Failures are
	// provider-tagged errors; zero results is not an error.
	Search(ctx context.Context, query string, opts Options) ([]Result, error)

	// HealthCheck reports whether the backend is reachable and usable.
	HealthCheck(ctx context.Context) bool
}

// FilterOptions applies client-side domain and date filtering plus the
// result limit. Backends without native support for these options call
// it on their raw results so the Options contract holds uniformly.
func FilterOptions(results []Result, opts Options) []Result {
	filtered := make([]Result, 0, len(results))
	for _, r := range results {
		host := hostOf(r.URL)
		if len(opts.Domains) > 0 && !matchesAny(host, opts.Domains) {
			continue
		}
		if matchesAny(host, opts.ExcludeDomains) {
			continue
		}
		if opts.DateRange != nil && !r.Timestamp.IsZero() && !opts.DateRange.Contains(r.Timestamp) {
			continue
		}
		filtered = append(filtered, r)
	}
	if opts.Limit > 0 && len(filtered) > opts.Limit {
		filtered = filtered[:opts.Limit]
	}
	return filtered
}

// hostOf extracts the lowercased hostname without a leading "www.".
// Returns "" for malformed URLs.
func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// matchesAny reports whether host equals or is a subdomain of any entry.
func matchesAny(host string, domains []string) bool {
	for _, d := range domains {
		d = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(d)), "www.")
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
