package rank

import (
	"math"
	"sort"

	"github.com/omnisearch-dev/omnisearch/internal/provider"
)

// BM25 default parameters.
const (
	DefaultK1    = 1.5
	DefaultB     = 0.75
	DefaultDelta = 0.0
)

// bm25Doc holds the term frequencies for one indexed result. The
// indexed text is the title counted twice plus the snippet, so title
// terms weigh double.
type bm25Doc struct {
	tf     map[string]int
	length int
}

// BM25 ranks a result set against a query using Okapi BM25 with an
// RSJ-smoothed IDF. The index is built over the result set itself on
// first use and rebuilt whenever the result count changes; a batch of
// different results with the same count reuses the stale index, so a
// BM25 instance should not be shared across unrelated queries.
type BM25 struct {
	k1    float64
	b     float64
	delta float64

	docs   []bm25Doc
	df     map[string]int
	avgLen float64
}

// BM25Option configures a BM25 ranker.
type BM25Option func(*BM25)

// WithK1 overrides the term-frequency saturation parameter.
func WithK1(k1 float64) BM25Option {
	return func(b *BM25) { b.k1 = k1 }
}

// WithB overrides the length-normalization parameter.
func WithB(bParam float64) BM25Option {
	return func(b *BM25) { b.b = bParam }
}

// WithDelta overrides the additive BM25+ constant.
func WithDelta(delta float64) BM25Option {
	return func(b *BM25) { b.delta = delta }
}

// NewBM25 creates a ranker with k1=1.5, b=0.75, delta=0 by default.
func NewBM25(opts ...BM25Option) *BM25 {
	b := &BM25{k1: DefaultK1, b: DefaultB, delta: DefaultDelta}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Scores returns raw BM25 scores parallel to results. Raw scores are
// unbounded above; use HybridScorer for a [0, 1] surface.
func (b *BM25) Scores(query string, results []provider.Result) []float64 {
	b.ensureIndex(results)

	queryTokens := tokenize(query)
	scores := make([]float64, len(results))
	if len(queryTokens) == 0 || len(b.docs) == 0 {
		return scores
	}

	n := float64(len(b.docs))
	for i := range b.docs {
		if i >= len(scores) {
			break
		}
		var score float64
		dl := float64(b.docs[i].length)
		for _, term := range queryTokens {
			tf := float64(b.docs[i].tf[term])
			if tf == 0 && b.delta == 0 {
				continue
			}
			df := float64(b.df[term])
			idf := math.Log(1 + (n-df+0.5)/(df+0.5))
			norm := tf + b.k1*(1-b.b+b.b*dl/b.avgLen)
			score += idf * (tf*(b.k1+1)/norm + b.delta)
		}
		scores[i] = score
	}
	return scores
}

// RankAll scores and sorts results descending by raw BM25 score.
func (b *BM25) RankAll(query string, results []provider.Result) []Scored {
	scores := b.Scores(query, results)
	scored := make([]Scored, len(results))
	for i, r := range results {
		scored[i] = Scored{Result: r, Score: scores[i]}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// ensureIndex builds the in-memory index, keyed on result count for
// staleness.
func (b *BM25) ensureIndex(results []provider.Result) {
	if len(b.docs) == len(results) && b.df != nil {
		return
	}

	b.docs = make([]bm25Doc, len(results))
	b.df = make(map[string]int)
	total := 0
	for i, r := range results {
		tokens := tokenize(r.Title + " " + r.Title + " " + r.Snippet)
		tf := make(map[string]int, len(tokens))
		for _, t := range tokens {
			tf[t]++
		}
		for term := range tf {
			b.df[term]++
		}
		b.docs[i] = bm25Doc{tf: tf, length: len(tokens)}
		total += len(tokens)
	}
	if len(results) > 0 {
		b.avgLen = float64(total) / float64(len(results))
	}
	if b.avgLen == 0 {
		b.avgLen = 1
	}
}
