package dedup

import (
	"strings"

	"github.com/omnisearch-dev/omnisearch/internal/provider"
)

// keyDelimiter joins the URL and fingerprint components of a dedup key.
const keyDelimiter = "::"

// Config selects which signals participate in the dedup key.
type Config struct {
	// UseURL includes the normalized URL in the key.
	UseURL bool

	// UseFingerprint includes the title+snippet fingerprint in the key.
	UseFingerprint bool
}

// DefaultConfig enables both signals.
func DefaultConfig() Config {
	return Config{UseURL: true, UseFingerprint: true}
}

// Deduplicator merges results into a unique set. The key is a pure
// function of (normalized URL, content fingerprint): equal keys mean
// the same logical resource.
type Deduplicator struct {
	cfg Config
}

// New creates a deduplicator with the given config. Disabling both
// signals would make every result unique, so that config degrades to
// the default.
func New(cfg Config) *Deduplicator {
	if !cfg.UseURL && !cfg.UseFingerprint {
		cfg = DefaultConfig()
	}
	return &Deduplicator{cfg: cfg}
}

// Key returns the dedup key for a result.
func (d *Deduplicator) Key(r provider.Result) string {
	var parts []string
	if d.cfg.UseURL {
		parts = append(parts, NormalizeURL(r.URL))
	}
	if d.cfg.UseFingerprint {
		parts = append(parts, Fingerprint(r.Title+" "+r.Snippet))
	}
	return strings.Join(parts, keyDelimiter)
}

// Deduplicate collapses duplicates, keeping the first-seen result for
// each key. A duplicate contributes only a metadata merge: its keys
// are added where the survivor lacks them, and its provider tag is
// accumulated in the survivor's metadata "sources" list. Input order
// is preserved for survivors.
func (d *Deduplicator) Deduplicate(results []provider.Result) []provider.Result {
	unique := make([]provider.Result, 0, len(results))
	index := make(map[string]int, len(results))

	for _, r := range results {
		key := d.Key(r)
		if at, seen := index[key]; seen {
			mergeMetadata(&unique[at], r)
			continue
		}
		index[key] = len(unique)
		unique = append(unique, withOwnSources(r))
	}

	return unique
}

// withOwnSources clones the result's metadata and seeds the "sources"
// list with its own provider tag. Cloning keeps the caller's map
// untouched when duplicates merge into the survivor later.
func withOwnSources(r provider.Result) provider.Result {
	meta := make(map[string]any, len(r.Metadata)+1)
	for k, v := range r.Metadata {
		meta[k] = v
	}
	meta["sources"] = appendSource(meta["sources"], r.Source)
	r.Metadata = meta
	return r
}

// mergeMetadata folds a duplicate into its survivor. New keys are
// added; the survivor's own keys are preserved.
func mergeMetadata(survivor *provider.Result, dup provider.Result) {
	for k, v := range dup.Metadata {
		if k == "sources" {
			continue
		}
		if _, exists := survivor.Metadata[k]; !exists {
			survivor.Metadata[k] = v
		}
	}
	survivor.Metadata["sources"] = appendSource(survivor.Metadata["sources"], dup.Source)
	if sources, ok := dup.Metadata["sources"]; ok {
		for _, s := range toStrings(sources) {
			survivor.Metadata["sources"] = appendSource(survivor.Metadata["sources"], s)
		}
	}
}

// appendSource adds tag to a sources value if not already present.
func appendSource(value any, tag string) []string {
	sources := toStrings(value)
	if tag == "" {
		return sources
	}
	for _, s := range sources {
		if s == tag {
			return sources
		}
	}
	return append(sources, tag)
}

// toStrings coerces a metadata value into a string slice. JSON
// round-trips turn []string into []any, so both shapes are accepted.
func toStrings(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
