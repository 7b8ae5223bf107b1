package rank

import (
	"sort"

	"github.com/omnisearch-dev/omnisearch/internal/provider"
)

// HybridWeights blends normalized BM25 with recency and domain
// authority.
type HybridWeights struct {
	BM25    float64 `yaml:"bm25" json:"bm25"`
	Recency float64 `yaml:"recency" json:"recency"`
	Domain  float64 `yaml:"domain" json:"domain"`
}

// DefaultHybridWeights returns the default 0.6/0.2/0.2 blend.
func DefaultHybridWeights() HybridWeights {
	return HybridWeights{BM25: 0.6, Recency: 0.2, Domain: 0.2}
}

// HybridScorer combines BM25 text relevance with the heuristic
// scorer's recency and domain signals. BM25 scores are normalized by
// the batch maximum before blending, and the final score is clamped
// to [0, 1].
type HybridScorer struct {
	bm25    *BM25
	scorer  *Scorer
	weights HybridWeights
}

// HybridOption configures a HybridScorer.
type HybridOption func(*HybridScorer)

// WithHybridWeights overrides the default blend.
func WithHybridWeights(w HybridWeights) HybridOption {
	return func(h *HybridScorer) { h.weights = w }
}

// WithBM25 supplies a preconfigured BM25 ranker.
func WithBM25(b *BM25) HybridOption {
	return func(h *HybridScorer) { h.bm25 = b }
}

// WithHeuristicScorer supplies the scorer used for recency and domain
// signals.
func WithHeuristicScorer(s *Scorer) HybridOption {
	return func(h *HybridScorer) { h.scorer = s }
}

// NewHybridScorer creates a hybrid scorer with default components.
func NewHybridScorer(opts ...HybridOption) *HybridScorer {
	h := &HybridScorer{
		bm25:    NewBM25(),
		scorer:  NewScorer(),
		weights: DefaultHybridWeights(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ScoreAll blends the signals for every result, clamps to [0, 1], and
// sorts descending.
func (h *HybridScorer) ScoreAll(query string, results []provider.Result) []Scored {
	raw := h.bm25.Scores(query, results)
	maxRaw := 0.0
	for _, s := range raw {
		if s > maxRaw {
			maxRaw = s
		}
	}

	scored := make([]Scored, len(results))
	for i, r := range results {
		text := 0.0
		if maxRaw > 0 {
			text = raw[i] / maxRaw
		}
		blended := h.weights.BM25*text +
			h.weights.Recency*h.scorer.RecencyScore(r.Timestamp) +
			h.weights.Domain*h.scorer.DomainScore(r.URL)
		scored[i] = Scored{Result: r, Score: clamp01(blended)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}
