// Package refine mines refinement terms from a result set and builds
// follow-up queries from user-selected terms. Terms are weighted by
// where they occur (title, snippet, domain segments), filtered
// against stop words and the original query, and scored by frequency,
// source spread, and length.
package refine

import (
	"regexp"
	"sort"
	"strings"

	"github.com/omnisearch-dev/omnisearch/internal/dedup"
	"github.com/omnisearch-dev/omnisearch/internal/provider"
)

// DefaultMaxSuggestions caps the suggestion list.
const DefaultMaxSuggestions = 10

// DefaultMinTermLength rejects shorter candidate terms.
const DefaultMinTermLength = 3

// Occurrence weights per source kind.
const (
	titleWeight   = 2.0
	snippetWeight = 1.0
	domainWeight  = 0.5
)

// Suggestion is a mined refinement term with its score and the source
// kinds it was seen in.
type Suggestion struct {
	Term      string   `json:"term"`
	Score     float64  `json:"score"`
	Frequency float64  `json:"frequency"`
	Sources   []string `json:"sources"`
}

// Refiner mines refinement suggestions.
type Refiner struct {
	maxSuggestions    int
	minTermLength     int
	excludeQueryTerms bool
}

// Option configures a Refiner.
type Option func(*Refiner)

// WithMaxSuggestions overrides the suggestion cap.
func WithMaxSuggestions(n int) Option {
	return func(r *Refiner) { r.maxSuggestions = n }
}

// WithMinTermLength overrides the minimum candidate length.
func WithMinTermLength(n int) Option {
	return func(r *Refiner) { r.minTermLength = n }
}

// WithQueryTermsAllowed keeps terms from the original query in the
// suggestion list instead of excluding them.
func WithQueryTermsAllowed() Option {
	return func(r *Refiner) { r.excludeQueryTerms = false }
}

// New creates a Refiner with the default cap of 10 and query-term
// exclusion enabled.
func New(opts ...Option) *Refiner {
	r := &Refiner{
		maxSuggestions:    DefaultMaxSuggestions,
		minTermLength:     DefaultMinTermLength,
		excludeQueryTerms: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// termStats accumulates per-term evidence during mining.
type termStats struct {
	frequency float64
	sources   map[string]struct{}
}

var numericTerm = regexp.MustCompile(`^[0-9]+$`)

// Suggest mines weighted candidate terms and bigrams from results,
// scores them, and returns the top suggestions sorted descending by
// score, capped at maxSuggestions.
func (r *Refiner) Suggest(query string, results []provider.Result) []Suggestion {
	if len(results) == 0 {
		return nil
	}

	queryTerms := map[string]struct{}{}
	for _, t := range tokenize(query) {
		queryTerms[t] = struct{}{}
	}

	terms := make(map[string]*termStats)
	bigrams := make(map[string]int)
	bigramInTitle := make(map[string]bool)

	record := func(term, source string, weight float64) {
		st, ok := terms[term]
		if !ok {
			st = &termStats{sources: make(map[string]struct{})}
			terms[term] = st
		}
		st.frequency += weight
		st.sources[source] = struct{}{}
	}

	for _, res := range results {
		titleTokens := tokenize(res.Title)
		snippetTokens := tokenize(res.Snippet)

		for _, t := range titleTokens {
			if r.accepts(t, queryTerms) {
				record(t, "title", titleWeight)
			}
		}
		for _, t := range snippetTokens {
			if r.accepts(t, queryTerms) {
				record(t, "snippet", snippetWeight)
			}
		}
		for _, seg := range domainSegments(res.URL) {
			if r.accepts(seg, queryTerms) {
				record(seg, "domain", domainWeight)
			}
		}

		r.collectBigrams(titleTokens, queryTerms, bigrams, bigramInTitle, true)
		r.collectBigrams(snippetTokens, queryTerms, bigrams, bigramInTitle, false)
	}

	n := float64(len(results))
	suggestions := make([]Suggestion, 0, len(terms)+len(bigrams))
	for term, st := range terms {
		_, inTitle := st.sources["title"]
		suggestions = append(suggestions, Suggestion{
			Term:      term,
			Score:     r.score(st.frequency, n, len(st.sources), inTitle, term),
			Frequency: st.frequency,
			Sources:   sortedSources(st.sources),
		})
	}
	for bigram, count := range bigrams {
		if count < 2 {
			continue
		}
		score := r.score(float64(count), n, 1, bigramInTitle[bigram], bigram) * 1.2
		if score > 1 {
			score = 1
		}
		suggestions = append(suggestions, Suggestion{
			Term:      bigram,
			Score:     score,
			Frequency: float64(count),
			Sources:   []string{"combined"},
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	if len(suggestions) > r.maxSuggestions {
		suggestions = suggestions[:r.maxSuggestions]
	}
	return suggestions
}

// score applies the suggestion formula: frequency share plus bonuses
// for source spread, title presence, and near-8-char length, capped
// at 1.
func (r *Refiner) score(frequency, total float64, sources int, inTitle bool, term string) float64 {
	freqScore := frequency / total
	if freqScore > 1 {
		freqScore = 1
	}
	sourceBonus := 0.1 * float64(sources-1)
	titleBonus := 0.0
	if inTitle {
		titleBonus = 0.2
	}
	lengthScore := 1 - abs(float64(len(term))-8)/20

	score := freqScore + sourceBonus + titleBonus + lengthScore*0.1
	if score > 1 {
		return 1
	}
	return score
}

// accepts applies the inclusion filters to a candidate term.
func (r *Refiner) accepts(term string, queryTerms map[string]struct{}) bool {
	if len(term) < r.minTermLength {
		return false
	}
	if isStopWord(term) {
		return false
	}
	if numericTerm.MatchString(term) {
		return false
	}
	if r.excludeQueryTerms {
		if _, ok := queryTerms[term]; ok {
			return false
		}
	}
	return true
}

func (r *Refiner) collectBigrams(tokens []string, queryTerms map[string]struct{}, bigrams map[string]int, inTitle map[string]bool, title bool) {
	for i := 0; i+1 < len(tokens); i++ {
		a, b := tokens[i], tokens[i+1]
		if !r.accepts(a, queryTerms) || !r.accepts(b, queryTerms) {
			continue
		}
		bigram := a + " " + b
		bigrams[bigram]++
		if title {
			inTitle[bigram] = true
		}
	}
}

var nonWord = regexp.MustCompile(`[^a-z0-9\s]+`)

// tokenize lowercases, strips punctuation, and splits on whitespace.
// Length filtering happens in accepts, not here, so bigram adjacency
// survives short words being rejected individually.
func tokenize(text string) []string {
	return strings.Fields(nonWord.ReplaceAllString(strings.ToLower(text), " "))
}

// domainSegments splits a URL's hostname labels on "-" and returns
// the pieces ("kubernetes-tutorials.example.com" -> kubernetes,
// tutorials, example, com; stop-word and length filters apply later).
func domainSegments(rawURL string) []string {
	host := dedup.Domain(rawURL)
	if host == "unknown" {
		return nil
	}
	var segments []string
	for _, label := range strings.Split(host, ".") {
		for _, seg := range strings.Split(label, "-") {
			if seg != "" {
				segments = append(segments, seg)
			}
		}
	}
	return segments
}

func sortedSources(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
