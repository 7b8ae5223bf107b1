// Package fetch orchestrates concurrent search calls across providers.
//
// Each provider call runs in its own goroutine under a bounded
// concurrency pool. A provider's failure, after retries, is captured
// as a ProviderError in the aggregate; it never aborts the other
// providers or the overall fetch. The fetch completes only after every
// provider task has settled.
package fetch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/omnisearch-dev/omnisearch/internal/cache"
	oserrors "github.com/omnisearch-dev/omnisearch/internal/errors"
	"github.com/omnisearch-dev/omnisearch/internal/provider"
	"github.com/omnisearch-dev/omnisearch/internal/ratelimit"
)

// DefaultConcurrency is the number of simultaneous provider calls.
const DefaultConcurrency = 3

// DefaultCallTimeout bounds a single provider call attempt.
const DefaultCallTimeout = 30 * time.Second

// Aggregated is the union of all providers' responses for one query.
// It is the terminal artifact handed downstream to deduplication,
// scoring, and rendering.
type Aggregated struct {
	// Query is the executed query.
	Query string `json:"query"`

	// Timestamp is when the fetch completed.
	Timestamp time.Time `json:"timestamp"`

	// Providers lists the providers that succeeded, in settle order.
	Providers []string `json:"providers"`

	// TotalResults is len(Results).
	TotalResults int `json:"total_results"`

	// Results is the unordered union of all successful providers'
	// results. Provider order is not guaranteed.
	Results []provider.Result `json:"results"`

	// Errors records each failed provider. Empty when all succeeded.
	Errors []*oserrors.ProviderError `json:"errors,omitempty"`
}

// Fetcher runs queries across a fixed set of providers.
type Fetcher struct {
	providers   []provider.Provider
	limiters    map[string]*ratelimit.Limiter
	cache       *cache.Cache
	concurrency int
	retry       oserrors.RetryConfig
	callTimeout time.Duration
	logger      *slog.Logger
}

// Option configures the fetcher.
type Option func(*Fetcher)

// WithLimiters sets the per-provider rate limiter map. The map is
// shared by reference with its owner; the fetcher never mutates it.
func WithLimiters(limiters map[string]*ratelimit.Limiter) Option {
	return func(f *Fetcher) { f.limiters = limiters }
}

// WithCache enables provider-response caching.
func WithCache(c *cache.Cache) Option {
	return func(f *Fetcher) { f.cache = c }
}

// WithConcurrency bounds the number of simultaneous provider calls.
func WithConcurrency(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithRetry overrides the per-provider retry configuration.
func WithRetry(cfg oserrors.RetryConfig) Option {
	return func(f *Fetcher) { f.retry = cfg }
}

// WithCallTimeout bounds each provider call attempt.
func WithCallTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.callTimeout = d
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = logger }
}

// New creates a fetcher over the given providers.
// Returns a fatal config error when no providers are enabled; this is
// the only hard error the fetch path raises.
func New(providers []provider.Provider, opts ...Option) (*Fetcher, error) {
	if len(providers) == 0 {
		return nil, oserrors.New(oserrors.ErrCodeNoProviders, "no search providers enabled", nil)
	}

	f := &Fetcher{
		providers:   providers,
		concurrency: DefaultConcurrency,
		retry:       oserrors.DefaultRetryConfig(),
		callTimeout: DefaultCallTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Fetch runs the query against every provider concurrently and returns
// the aggregate. It never returns an error: per-provider failures are
// collected in Aggregated.Errors.
func (f *Fetcher) Fetch(ctx context.Context, query string, opts provider.Options) *Aggregated {
	agg := &Aggregated{Query: query}

	var mu sync.Mutex
	sem := semaphore.NewWeighted(int64(f.concurrency))
	var g errgroup.Group

	for _, p := range f.providers {
		p := p
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				f.record(agg, &mu, p.Name(), nil, err)
				return nil
			}
			defer sem.Release(1)

			results, err := f.fetchOne(ctx, p, query, opts)
			f.record(agg, &mu, p.Name(), results, err)
			return nil
		})
	}

	// Tasks never return errors; Wait is pure fan-in.
	_ = g.Wait()

	agg.Timestamp = time.Now()
	agg.TotalResults = len(agg.Results)
	return agg
}

// fetchOne executes one provider's call path: cache lookup, rate
// limit, retried search, cache fill. Cache hits never spend a rate
// limiter token.
func (f *Fetcher) fetchOne(ctx context.Context, p provider.Provider, query string, opts provider.Options) ([]provider.Result, error) {
	var key string
	if f.cache != nil {
		key = cache.Key(p.Name(), query, opts)
		if cached, ok := f.cache.Get(key); ok {
			f.logger.Debug("cache hit",
				slog.String("provider", p.Name()),
				slog.String("query", query),
				slog.Int("results", len(cached)))
			return cached, nil
		}
	}

	if limiter, ok := f.limiters[p.Name()]; ok && limiter != nil {
		if err := limiter.Acquire(ctx); err != nil {
			return nil, err
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = f.callTimeout
	}

	results, err := oserrors.RetryWithResult(ctx, f.retry, func() ([]provider.Result, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return p.Search(callCtx, query, opts)
	})
	if err != nil {
		return nil, err
	}

	if f.cache != nil && len(results) > 0 {
		f.cache.Set(key, results)
	}
	return results, nil
}

// record merges one settled provider task into the aggregate.
func (f *Fetcher) record(agg *Aggregated, mu *sync.Mutex, name string, results []provider.Result, err error) {
	mu.Lock()
	defer mu.Unlock()

	if err != nil {
		pe := oserrors.AsProviderError(name, err)
		agg.Errors = append(agg.Errors, pe)
		f.logger.Warn("provider failed",
			slog.String("provider", name),
			slog.String("error", pe.Error()))
		return
	}

	agg.Providers = append(agg.Providers, name)
	agg.Results = append(agg.Results, results...)
	f.logger.Debug("provider succeeded",
		slog.String("provider", name),
		slog.Int("results", len(results)))
}
