package rank

import (
	"sort"
	"strings"
	"time"

	"github.com/omnisearch-dev/omnisearch/internal/dedup"
	"github.com/omnisearch-dev/omnisearch/internal/provider"
)

// Scored pairs a result with its relevance score in [0, 1].
type Scored struct {
	provider.Result

	// Score is the combined relevance score, clamped to [0, 1].
	Score float64 `json:"score"`
}

// Weights configures the heuristic scorer's signal blend. Weights are
// not renormalized: if they sum above 1 the raw combined score can
// exceed 1. ScoreAll clamps; callers of Score needing a strict bound
// must clamp themselves.
type Weights struct {
	Recency   float64 `yaml:"recency" json:"recency"`
	Domain    float64 `yaml:"domain" json:"domain"`
	Relevance float64 `yaml:"relevance" json:"relevance"`
}

// DefaultWeights returns the default signal blend.
func DefaultWeights() Weights {
	return Weights{Recency: 0.2, Domain: 0.3, Relevance: 0.5}
}

// qualityDomains is the built-in allowlist scoring 0.8: well-known
// sites that aren't in the user's trusted list.
var qualityDomains = []string{
	"stackoverflow.com",
	"wikipedia.org",
	"developer.mozilla.org",
	"arxiv.org",
	"nature.com",
	"acm.org",
}

// defaultTrustedDomains seed the configurable trusted list (1.0).
var defaultTrustedDomains = []string{
	"github.com",
	"golang.org",
	"go.dev",
}

// Scorer is the heuristic weighted scorer.
type Scorer struct {
	weights Weights
	trusted []string
	now     func() time.Time
}

// ScorerOption configures the scorer.
type ScorerOption func(*Scorer)

// WithWeights overrides the default signal weights.
func WithWeights(w Weights) ScorerOption {
	return func(s *Scorer) { s.weights = w }
}

// WithTrustedDomains replaces the trusted-domain list.
func WithTrustedDomains(domains []string) ScorerOption {
	return func(s *Scorer) { s.trusted = domains }
}

// WithClock overrides the time source (used in tests).
func WithClock(now func() time.Time) ScorerOption {
	return func(s *Scorer) { s.now = now }
}

// NewScorer creates a heuristic scorer.
func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{
		weights: DefaultWeights(),
		trusted: defaultTrustedDomains,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes the raw weighted score for a result. With weight sums
// above 1 the value can exceed 1; see Weights.
func (s *Scorer) Score(query string, r provider.Result) float64 {
	return s.weights.Recency*s.RecencyScore(r.Timestamp) +
		s.weights.Domain*s.DomainScore(r.URL) +
		s.weights.Relevance*s.RelevanceScore(query, r)
}

// ScoreAll scores every result against the query, clamps to [0, 1],
// and sorts descending by score. Equal scores keep input order.
func (s *Scorer) ScoreAll(query string, results []provider.Result) []Scored {
	scored := make([]Scored, len(results))
	for i, r := range results {
		scored[i] = Scored{Result: r, Score: clamp01(s.Score(query, r))}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// RecencyScore decays linearly with age: 1.0 now, floored at 0.1 from
// one year out. Never negative.
func (s *Scorer) RecencyScore(ts time.Time) float64 {
	if ts.IsZero() {
		return 0.1
	}
	days := s.now().Sub(ts).Hours() / 24
	score := 1 - days/365
	if score < 0.1 {
		return 0.1
	}
	if score > 1 {
		return 1
	}
	return score
}

// DomainScore rates a result's host: trusted list 1.0, .gov/.edu 0.9,
// built-in quality list 0.8, anything else 0.5, unparseable 0.3.
func (s *Scorer) DomainScore(rawURL string) float64 {
	host := dedup.Domain(rawURL)
	if host == "unknown" {
		return 0.3
	}

	for _, d := range s.trusted {
		if domainMatches(host, d) {
			return 1.0
		}
	}
	if strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".edu") {
		return 0.9
	}
	for _, d := range qualityDomains {
		if domainMatches(host, d) {
			return 0.8
		}
	}
	return 0.5
}

// RelevanceScore measures query-term overlap with title and snippet:
// 0.6 x title coverage + 0.4 x snippet coverage, with a +0.2 bonus
// when the literal query appears in the title, capped at 1.0.
// An empty query scores a neutral 0.5.
func (s *Scorer) RelevanceScore(query string, r provider.Result) float64 {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return 0.5
	}

	titleSet := tokenSet(tokenize(r.Title))
	snippetSet := tokenSet(tokenize(r.Snippet))

	titleHits, snippetHits := 0, 0
	for _, q := range queryTokens {
		if _, ok := titleSet[q]; ok {
			titleHits++
		}
		if _, ok := snippetSet[q]; ok {
			snippetHits++
		}
	}

	n := float64(len(queryTokens))
	combined := 0.6*(float64(titleHits)/n) + 0.4*(float64(snippetHits)/n)

	if strings.Contains(strings.ToLower(r.Title), strings.ToLower(strings.TrimSpace(query))) {
		combined += 0.2
	}
	return clamp01(combined)
}

// domainMatches reports whether host equals or is a subdomain of domain.
func domainMatches(host, domain string) bool {
	domain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "www.")
	return host == domain || strings.HasSuffix(host, "."+domain)
}
