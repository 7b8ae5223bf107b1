package dedup

import (
	"regexp"
	"sort"
	"strings"
)

// maxFingerprintTrigrams bounds the fingerprint to the smallest N
// trigrams so near-identical texts of any length compare equal.
const maxFingerprintTrigrams = 10

var nonAlnum = regexp.MustCompile(`[^a-z0-9\s]+`)
var whitespace = regexp.MustCompile(`\s+`)

// Fingerprint derives a coarse near-duplicate key from text. Equal
// fingerprints mean near-identical phrasing; this is intentionally not
// semantic similarity.
//
// The text is lowercased, punctuation collapsed to spaces, and split
// into words longer than 2 chars. Texts with fewer than 3 such words
// fingerprint as the cleaned string itself. Otherwise the fingerprint
// is the 10 lexicographically smallest order-independent word
// trigrams, joined by "|": each trigram's words are alpha-sorted, so
// word order within a window doesn't matter but adjacency does.
func Fingerprint(text string) string {
	clean, words := cleanWords(text)
	if len(words) < 3 {
		return clean
	}

	set := trigramSet(words)
	trigrams := sortedKeys(set)
	if len(trigrams) > maxFingerprintTrigrams {
		trigrams = trigrams[:maxFingerprintTrigrams]
	}
	return strings.Join(trigrams, "|")
}

// cleanWords normalizes text and returns the cleaned string plus its
// words longer than 2 chars.
func cleanWords(text string) (string, []string) {
	clean := strings.ToLower(text)
	clean = nonAlnum.ReplaceAllString(clean, " ")
	clean = whitespace.ReplaceAllString(clean, " ")
	clean = strings.TrimSpace(clean)

	var words []string
	for _, w := range strings.Split(clean, " ") {
		if len(w) > 2 {
			words = append(words, w)
		}
	}
	return clean, words
}

// trigramSet builds the set of order-independent word trigrams.
func trigramSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for i := 0; i+2 < len(words); i++ {
		tri := []string{words[i], words[i+1], words[i+2]}
		sort.Strings(tri)
		set[strings.Join(tri, " ")] = struct{}{}
	}
	return set
}

// textTrigrams returns the full trigram set for similarity comparison.
// Texts too short for trigrams degrade to a singleton set holding the
// cleaned string, so identical short texts still compare equal.
func textTrigrams(text string) map[string]struct{} {
	clean, words := cleanWords(text)
	if len(words) < 3 {
		if clean == "" {
			return map[string]struct{}{}
		}
		return map[string]struct{}{clean: {}}
	}
	return trigramSet(words)
}
