// Package rank assigns relevance scores to search results. Two
// implementations are provided: a heuristic weighted scorer combining
// recency, domain authority, and term overlap, and a BM25 ranker over
// the result set itself, with a hybrid scorer blending the two
// families of signals.
package rank

import (
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`[^a-z0-9\s]+`)

// tokenize lowercases text, strips non-word characters, and returns
// whitespace-separated tokens longer than 2 chars.
func tokenize(text string) []string {
	clean := nonWord.ReplaceAllString(strings.ToLower(text), " ")
	fields := strings.Fields(clean)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// tokenSet builds a membership set from tokens.
func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// clamp01 bounds a score to [0, 1].
func clamp01(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
