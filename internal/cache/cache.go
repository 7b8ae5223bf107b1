// Package cache provides best-effort caching of provider responses.
//
// Entries are keyed by a hash of (provider, query, normalized options)
// and stored in two layers: an in-memory expirable LRU for repeated
// lookups within a session, and JSON files on disk that survive across
// invocations. Every entry carries its write timestamp; the TTL is
// evaluated at read time.
//
// The cache is strictly best-effort: any read or write error is logged
// and the caller proceeds as if the entry were absent. Concurrent
// writes to the same key are not coordinated; keys are
// (provider, query, options)-specific, so a session rarely repeats the
// identical key concurrently.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/omnisearch-dev/omnisearch/internal/provider"
)

// DefaultTTL is the cache entry lifetime when none is configured.
const DefaultTTL = 15 * time.Minute

// entry is the on-disk representation of a cached provider response.
type entry struct {
	WrittenAt time.Time         `json:"written_at"`
	Results   []provider.Result `json:"results"`
}

// Cache is a two-layer (memory + file) TTL cache for provider results.
type Cache struct {
	mem    *expirable.LRU[string, []provider.Result]
	dir    string
	ttl    time.Duration
	logger *slog.Logger
}

// New creates a cache rooted at dir. maxEntries bounds the in-memory
// layer only; the file layer is pruned lazily on expired reads.
func New(dir string, ttl time.Duration, maxEntries int, logger *slog.Logger) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &Cache{
		mem:    expirable.NewLRU[string, []provider.Result](maxEntries, nil, ttl),
		dir:    dir,
		ttl:    ttl,
		logger: logger,
	}, nil
}

// Key derives the cache key for a provider call. Domain lists are
// sorted and the date range serialized so logically equal option sets
// produce equal keys.
func Key(providerName, query string, opts provider.Options) string {
	domains := append([]string(nil), opts.Domains...)
	sort.Strings(domains)
	excludes := append([]string(nil), opts.ExcludeDomains...)
	sort.Strings(excludes)

	var dateRange string
	if opts.DateRange != nil {
		dateRange = opts.DateRange.From.UTC().Format(time.RFC3339) + ".." +
			opts.DateRange.To.UTC().Format(time.RFC3339)
	}

	canonical := strings.Join([]string{
		providerName,
		query,
		fmt.Sprintf("limit=%d", opts.Limit),
		"domains=" + strings.Join(domains, ","),
		"exclude=" + strings.Join(excludes, ","),
		"range=" + dateRange,
		"locale=" + opts.Locale,
	}, "|")

	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached results for key, or (nil, false) on miss,
// expiry, or any read error. Result timestamps are reconstructed as
// time values by the JSON decoder.
func (c *Cache) Get(key string) ([]provider.Result, bool) {
	if results, ok := c.mem.Get(key); ok {
		return results, true
	}

	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Debug("cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.Debug("cache entry corrupt", slog.String("key", key), slog.String("error", err.Error()))
		_ = os.Remove(c.path(key))
		return nil, false
	}

	if time.Since(e.WrittenAt) > c.ttl {
		_ = os.Remove(c.path(key))
		return nil, false
	}

	c.mem.Add(key, e.Results)
	return e.Results, true
}

// Set stores results under key in both layers. Write failures are
// logged and swallowed; the cache must never fail a search.
func (c *Cache) Set(key string, results []provider.Result) {
	c.mem.Add(key, results)

	data, err := json.Marshal(entry{WrittenAt: time.Now(), Results: results})
	if err != nil {
		c.logger.Debug("cache marshal failed", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
		c.logger.Debug("cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// Purge removes every entry from both layers.
func (c *Cache) Purge() error {
	c.mem.Purge()

	matches, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			return err
		}
	}
	return nil
}

// path returns the file path for a key.
func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}
