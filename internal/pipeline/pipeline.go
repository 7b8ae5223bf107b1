// Package pipeline composes the batch search flow: concurrent fetch,
// deduplication, scoring, and categorization, producing a Report the
// renderers consume.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/omnisearch-dev/omnisearch/internal/categorize"
	"github.com/omnisearch-dev/omnisearch/internal/dedup"
	oserrors "github.com/omnisearch-dev/omnisearch/internal/errors"
	"github.com/omnisearch-dev/omnisearch/internal/fetch"
	"github.com/omnisearch-dev/omnisearch/internal/provider"
	"github.com/omnisearch-dev/omnisearch/internal/rank"
)

// ReportResult is one fully processed result: scored and labeled.
type ReportResult struct {
	provider.Result

	Score      float64  `json:"score"`
	Categories []string `json:"categories"`
}

// Report is the pipeline's terminal artifact: the deduplicated,
// scored, categorized result set for one query plus per-provider
// error advisories.
type Report struct {
	Query        string                    `json:"query"`
	Timestamp    time.Time                 `json:"timestamp"`
	Providers    []string                  `json:"providers"`
	TotalResults int                       `json:"total_results"`
	Results      []ReportResult            `json:"results"`
	Errors       []*oserrors.ProviderError `json:"errors,omitempty"`
}

// Ranker scores a result batch against a query. Both the heuristic
// scorer and the hybrid BM25 scorer satisfy it.
type Ranker interface {
	ScoreAll(query string, results []provider.Result) []rank.Scored
}

// Pipeline wires the processing stages together.
type Pipeline struct {
	fetcher     *fetch.Fetcher
	deduper     *dedup.Deduplicator
	ranker      Ranker
	categorizer *categorize.Categorizer
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDeduplicator overrides the default deduplicator.
func WithDeduplicator(d *dedup.Deduplicator) Option {
	return func(p *Pipeline) { p.deduper = d }
}

// WithRanker overrides the default heuristic ranker.
func WithRanker(r Ranker) Option {
	return func(p *Pipeline) { p.ranker = r }
}

// WithCategorizer overrides the default categorizer.
func WithCategorizer(c *categorize.Categorizer) Option {
	return func(p *Pipeline) { p.categorizer = c }
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// New creates a Pipeline over the given fetcher with default stage
// implementations.
func New(fetcher *fetch.Fetcher, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher:     fetcher,
		deduper:     dedup.New(dedup.DefaultConfig()),
		ranker:      rank.NewScorer(),
		categorizer: categorize.New(nil),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the full flow for one query. Provider failures are
// advisory; Run only fails on context cancellation.
func (p *Pipeline) Run(ctx context.Context, query string, opts provider.Options) (*Report, error) {
	agg := p.fetcher.Fetch(ctx, query, opts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.Process(agg), nil
}

// Process runs the in-memory stages over an already-fetched
// aggregate. The interactive session uses it to rescore accumulated
// result sets without refetching.
func (p *Pipeline) Process(agg *fetch.Aggregated) *Report {
	unique := p.deduper.Deduplicate(agg.Results)
	p.logger.Debug("deduplicated results",
		"query", agg.Query,
		"fetched", len(agg.Results),
		"unique", len(unique))

	return &Report{
		Query:        agg.Query,
		Timestamp:    agg.Timestamp,
		Providers:    agg.Providers,
		TotalResults: len(unique),
		Results:      p.scoreAndLabel(agg.Query, unique),
		Errors:       agg.Errors,
	}
}

// Rescore rebuilds a Report from an arbitrary result set against a
// query, deduplicating first. The session's final assembly rescores
// the accumulated set against the original query this way.
func (p *Pipeline) Rescore(query string, results []provider.Result, providers []string, errs []*oserrors.ProviderError) *Report {
	unique := p.deduper.Deduplicate(results)
	return &Report{
		Query:        query,
		Timestamp:    time.Now(),
		Providers:    providers,
		TotalResults: len(unique),
		Results:      p.scoreAndLabel(query, unique),
		Errors:       errs,
	}
}

// Deduplicate exposes the pipeline's deduplicator for session-side
// accumulation.
func (p *Pipeline) Deduplicate(results []provider.Result) []provider.Result {
	return p.deduper.Deduplicate(results)
}

// Fetch exposes the underlying fetcher.
func (p *Pipeline) Fetch(ctx context.Context, query string, opts provider.Options) *fetch.Aggregated {
	return p.fetcher.Fetch(ctx, query, opts)
}

func (p *Pipeline) scoreAndLabel(query string, results []provider.Result) []ReportResult {
	scored := p.ranker.ScoreAll(query, results)
	out := make([]ReportResult, len(scored))
	for i, s := range scored {
		out[i] = ReportResult{
			Result:     s.Result,
			Score:      s.Score,
			Categories: p.categorizer.Categorize(s.Result),
		}
	}
	return out
}
