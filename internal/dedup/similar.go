package dedup

import (
	"github.com/omnisearch-dev/omnisearch/internal/provider"
)

// ComputeSimilarity returns the Jaccard similarity of two results'
// title+snippet trigram sets, in [0, 1]. This is a secondary
// near-duplicate signal, independent of the key-based pass.
func ComputeSimilarity(a, b provider.Result) float64 {
	setA := textTrigrams(a.Title + " " + a.Snippet)
	setB := textTrigrams(b.Title + " " + b.Snippet)

	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// FindSimilar compares every result pair and returns an adjacency map
// from result index to the indices of results whose similarity meets
// the threshold. The comparison is O(n^2); callers should bound n for
// large sets.
func FindSimilar(results []provider.Result, threshold float64) map[int][]int {
	adjacency := make(map[int][]int)

	sets := make([]map[string]struct{}, len(results))
	for i, r := range results {
		sets[i] = textTrigrams(r.Title + " " + r.Snippet)
	}

	for i := 0; i < len(results); i++ {
		for j := i + 1; j < len(results); j++ {
			if jaccard(sets[i], sets[j]) >= threshold {
				adjacency[i] = append(adjacency[i], j)
				adjacency[j] = append(adjacency[j], i)
			}
		}
	}
	return adjacency
}

// jaccard computes set similarity over precomputed trigram sets.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for t := range a {
		if _, ok := b[t]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
