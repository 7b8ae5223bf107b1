package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oserrors "github.com/omnisearch-dev/omnisearch/internal/errors"
	"github.com/omnisearch-dev/omnisearch/internal/fetch"
	"github.com/omnisearch-dev/omnisearch/internal/provider"
)

// retryOnce keeps the failing-provider test fast: a single attempt,
// no backoff waits.
func retryOnce() oserrors.RetryConfig {
	return oserrors.RetryConfig{
		MaxRetries:   0,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
		Multiplier:   1,
	}
}

type stubProvider struct {
	name    string
	results []provider.Result
	err     error
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Search(_ context.Context, _ string, _ provider.Options) ([]provider.Result, error) {
	return s.results, s.err
}

func (s *stubProvider) HealthCheck(_ context.Context) bool { return true }

func TestRun_EndToEndDeduplicatesScoresAndCategorizes(t *testing.T) {
	now := time.Now()

	// Two providers share one logical URL, one copy carrying tracking
	// params; the union is 3 raw results, 2 unique.
	shared := "https://github.com/golang/go"
	sharedTracked := "https://github.com/golang/go?utm_source=newsletter"

	brave := &stubProvider{name: "brave", results: []provider.Result{
		{URL: shared, Title: "The Go Programming Language", Snippet: "Go source repository", Source: "brave", Timestamp: now},
		{URL: "https://go.dev/doc/tutorial", Title: "Go Tutorial", Snippet: "Getting started with Go", Source: "brave", Timestamp: now},
	}}
	serp := &stubProvider{name: "serpapi", results: []provider.Result{
		{URL: sharedTracked, Title: "The Go Programming Language", Snippet: "Go source repository", Source: "serpapi", Timestamp: now},
	}}

	fetcher, err := fetch.New([]provider.Provider{brave, serp})
	require.NoError(t, err)

	p := New(fetcher)
	report, err := p.Run(context.Background(), "go programming", provider.Options{Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, "go programming", report.Query)
	assert.Equal(t, 2, report.TotalResults)
	require.Len(t, report.Results, 2)
	assert.Empty(t, report.Errors)
	assert.ElementsMatch(t, []string{"brave", "serpapi"}, report.Providers)

	// Sorted by descending score, every result scored and labeled.
	assert.GreaterOrEqual(t, report.Results[0].Score, report.Results[1].Score)
	for _, r := range report.Results {
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
		assert.NotEmpty(t, r.Categories)
	}

	// The surviving shared result accumulated both provider tags.
	// Settle order is unordered, so the survivor may carry either
	// URL variant; match on title.
	var sharedResult *ReportResult
	for i := range report.Results {
		if report.Results[i].Title == "The Go Programming Language" {
			sharedResult = &report.Results[i]
		}
	}
	require.NotNil(t, sharedResult)
	sources, ok := sharedResult.Metadata["sources"].([]string)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"brave", "serpapi"}, sources)
	assert.Contains(t, sharedResult.Categories, "Code")
}

func TestRun_ProviderFailureIsAdvisory(t *testing.T) {
	ok := &stubProvider{name: "brave", results: []provider.Result{
		{URL: "https://example.com/a", Title: "A", Source: "brave", Timestamp: time.Now()},
	}}
	bad := &stubProvider{name: "rss", err: assert.AnError}

	fetcher, err := fetch.New([]provider.Provider{ok, bad},
		fetch.WithRetry(retryOnce()))
	require.NoError(t, err)

	p := New(fetcher)
	report, err := p.Run(context.Background(), "anything", provider.Options{Limit: 5})
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalResults)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "rss", report.Errors[0].Provider)
	assert.Equal(t, []string{"brave"}, report.Providers)
}

func TestRescore_UsesGivenQuery(t *testing.T) {
	fetcher, err := fetch.New([]provider.Provider{&stubProvider{name: "brave"}})
	require.NoError(t, err)
	p := New(fetcher)

	results := []provider.Result{
		{URL: "https://example.com/rust", Title: "Rust async book", Snippet: "tokio", Timestamp: time.Now()},
		{URL: "https://example.com/cook", Title: "Pasta recipes", Snippet: "boil", Timestamp: time.Now()},
	}

	report := p.Rescore("rust async", results, []string{"brave"}, nil)
	require.Len(t, report.Results, 2)
	assert.Equal(t, "https://example.com/rust", report.Results[0].URL)
	assert.Equal(t, "rust async", report.Query)
}
