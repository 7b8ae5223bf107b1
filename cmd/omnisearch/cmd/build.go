package cmd

import (
	"log/slog"
	"time"

	"github.com/omnisearch-dev/omnisearch/internal/cache"
	"github.com/omnisearch-dev/omnisearch/internal/config"
	oserrors "github.com/omnisearch-dev/omnisearch/internal/errors"
	"github.com/omnisearch-dev/omnisearch/internal/fetch"
	"github.com/omnisearch-dev/omnisearch/internal/pipeline"
	"github.com/omnisearch-dev/omnisearch/internal/provider"
	"github.com/omnisearch-dev/omnisearch/internal/rank"
	"github.com/omnisearch-dev/omnisearch/internal/ratelimit"
)

// buildProviders constructs the enabled provider instances and their
// per-provider rate limiters. The registry and limiter map are owned
// here and passed down; nothing is package-global.
func buildProviders(cfg *config.Config) ([]provider.Provider, map[string]*ratelimit.Limiter, error) {
	registry := provider.NewRegistry()

	var providers []provider.Provider
	rates := make(map[string]float64)
	for _, pc := range cfg.Enabled() {
		p, err := registry.Create(pc.ToProvider())
		if err != nil {
			return nil, nil, oserrors.ConfigError("failed to construct provider "+pc.Name, err)
		}
		providers = append(providers, p)
		rates[p.Name()] = pc.RequestsPerSecond
	}
	return providers, ratelimit.PerProvider(rates), nil
}

// buildPipeline assembles the full batch pipeline from config.
func buildPipeline(cfg *config.Config, logger *slog.Logger) (*pipeline.Pipeline, error) {
	providers, limiters, err := buildProviders(cfg)
	if err != nil {
		return nil, err
	}

	retryCfg := oserrors.DefaultRetryConfig()
	retryCfg.MaxRetries = cfg.Search.Retries

	opts := []fetch.Option{
		fetch.WithLimiters(limiters),
		fetch.WithConcurrency(cfg.Search.Concurrency),
		fetch.WithCallTimeout(time.Duration(cfg.Search.CallTimeoutSeconds) * time.Second),
		fetch.WithRetry(retryCfg),
		fetch.WithLogger(logger),
	}

	if cfg.Cache.IsEnabled() {
		ttl := time.Duration(cfg.Cache.TTLMinutes) * time.Minute
		store, err := cache.New(cfg.Cache.Dir, ttl, 512, logger)
		if err != nil {
			// Cache is best-effort: log and search uncached.
			logger.Warn("cache unavailable", "dir", cfg.Cache.Dir, "error", err)
		} else {
			opts = append(opts, fetch.WithCache(store))
		}
	}

	fetcher, err := fetch.New(providers, opts...)
	if err != nil {
		return nil, err
	}

	return pipeline.New(fetcher,
		pipeline.WithRanker(buildRanker(cfg)),
		pipeline.WithLogger(logger),
	), nil
}

func buildRanker(cfg *config.Config) pipeline.Ranker {
	scorerOpts := []rank.ScorerOption{rank.WithWeights(cfg.Search.Weights)}
	if len(cfg.Search.TrustedDomains) > 0 {
		scorerOpts = append(scorerOpts, rank.WithTrustedDomains(cfg.Search.TrustedDomains))
	}
	scorer := rank.NewScorer(scorerOpts...)

	if cfg.Search.Scorer == "hybrid" {
		return rank.NewHybridScorer(rank.WithHeuristicScorer(scorer))
	}
	return scorer
}

// searchOptions converts config defaults plus command flags to
// provider options.
func searchOptions(cfg *config.Config, limit int, domains, excludes []string) provider.Options {
	if limit <= 0 {
		limit = cfg.Search.Limit
	}
	return provider.Options{
		Limit:          limit,
		Domains:        domains,
		ExcludeDomains: excludes,
	}
}
