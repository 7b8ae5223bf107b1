package provider

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	oserrors "github.com/omnisearch-dev/omnisearch/internal/errors"
)

// RSS treats a set of RSS/Atom feeds as a search backend. Feeds are
// fetched on every call and items are matched against the query
// client-side, since feeds have no native search.
type RSS struct {
	name   string
	feeds  []string
	parser *gofeed.Parser
}

// NewRSS creates an RSS provider from config.
func NewRSS(cfg Config) (Provider, error) {
	if len(cfg.Feeds) == 0 {
		return nil, oserrors.ConfigError("rss: at least one feed URL is required", nil)
	}
	name := cfg.Name
	if name == "" {
		name = "rss"
	}
	parser := gofeed.NewParser()
	parser.Client = newHTTPClient(cfg.Timeout)
	return &RSS{
		name:   name,
		feeds:  cfg.Feeds,
		parser: parser,
	}, nil
}

// Name returns the provider tag.
func (r *RSS) Name() string { return r.name }

// Search fetches all configured feeds and returns items matching the
// query. Feeds are fetched concurrently; a single unreachable feed
// degrades the result set but only fails the call when every feed
// fails.
func (r *RSS) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	terms := queryTerms(query)

	var (
		mu      sync.Mutex
		results []Result
		lastErr error
		failed  int
	)

	var wg sync.WaitGroup
	for _, feedURL := range r.feeds {
		wg.Add(1)
		go func(feedURL string) {
			defer wg.Done()

			feed, err := r.parser.ParseURLWithContext(feedURL, ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				lastErr = err
				return
			}
			for _, item := range feed.Items {
				if !itemMatches(item, terms) {
					continue
				}
				results = append(results, itemToResult(item, feed, r.name))
			}
		}(feedURL)
	}
	wg.Wait()

	if failed == len(r.feeds) {
		return nil, oserrors.NewProviderError(r.name, "all feeds failed: "+lastErr.Error(), 0, lastErr)
	}

	return FilterOptions(results, opts), nil
}

// HealthCheck verifies that at least one configured feed parses.
func (r *RSS) HealthCheck(ctx context.Context) bool {
	for _, feedURL := range r.feeds {
		if _, err := r.parser.ParseURLWithContext(feedURL, ctx); err == nil {
			return true
		}
	}
	return false
}

// queryTerms lowercases the query and keeps terms longer than 2 chars.
// An empty term list matches every item.
func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > 2 {
			terms = append(terms, f)
		}
	}
	return terms
}

// itemMatches reports whether any query term occurs in the item's
// title or description.
func itemMatches(item *gofeed.Item, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	haystack := strings.ToLower(item.Title + " " + item.Description)
	for _, t := range terms {
		if strings.Contains(haystack, t) {
			return true
		}
	}
	return false
}

// itemToResult maps a feed item onto the uniform result shape.
func itemToResult(item *gofeed.Item, feed *gofeed.Feed, source string) Result {
	ts := time.Now()
	if item.PublishedParsed != nil {
		ts = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		ts = *item.UpdatedParsed
	}

	return Result{
		URL:       item.Link,
		Title:     item.Title,
		Snippet:   item.Description,
		Source:    source,
		Timestamp: ts,
		Metadata: map[string]any{
			"feed": feed.Title,
		},
	}
}
