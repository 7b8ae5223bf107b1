package refine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnisearch-dev/omnisearch/internal/provider"
)

func suggestionTerms(suggestions []Suggestion) []string {
	terms := make([]string, len(suggestions))
	for i, s := range suggestions {
		terms[i] = s.Term
	}
	return terms
}

func TestSuggest_ExcludesStopWordsAndQueryTerms(t *testing.T) {
	r := New()

	results := []provider.Result{
		{Title: "The kubernetes operator pattern", Snippet: "What the operator does for kubernetes"},
		{Title: "Kubernetes operators explained", Snippet: "An operator with reconcile loops"},
	}

	terms := suggestionTerms(r.Suggest("kubernetes", results))
	require.NotEmpty(t, terms)

	assert.NotContains(t, terms, "kubernetes")
	assert.NotContains(t, terms, "the")
	assert.NotContains(t, terms, "what")
	assert.Contains(t, terms, "operator")
}

func TestSuggest_QueryTermsAllowedOption(t *testing.T) {
	r := New(WithQueryTermsAllowed())

	results := []provider.Result{
		{Title: "kubernetes basics", Snippet: "kubernetes clusters"},
	}

	terms := suggestionTerms(r.Suggest("kubernetes", results))
	assert.Contains(t, terms, "kubernetes")
}

func TestSuggest_RejectsShortAndNumericTerms(t *testing.T) {
	r := New()

	results := []provider.Result{
		{Title: "go 42 ml release 2024", Snippet: "ai ml 42"},
	}

	terms := suggestionTerms(r.Suggest("unrelated", results))
	assert.NotContains(t, terms, "go")
	assert.NotContains(t, terms, "ml")
	assert.NotContains(t, terms, "42")
	assert.NotContains(t, terms, "2024")
	assert.Contains(t, terms, "release")
}

func TestSuggest_RespectsMaxSuggestionsExactly(t *testing.T) {
	r := New(WithMaxSuggestions(3))

	results := []provider.Result{
		{Title: "alpha bravo charlie delta echo", Snippet: "foxtrot golf hotel india juliett"},
	}

	suggestions := r.Suggest("zulu", results)
	assert.Len(t, suggestions, 3)
}

func TestSuggest_TitleTermsOutscoreSnippetOnly(t *testing.T) {
	r := New()

	// Same length and single occurrence each; the title term carries
	// double weight plus the title bonus. Extra results keep the
	// frequency share below the cap so the bonus is visible.
	results := []provider.Result{
		{Title: "grafana dashboards", Snippet: "loki queries"},
		{Title: "unrelated words", Snippet: "entirely elsewhere"},
		{Title: "another filler", Snippet: "padding content"},
	}

	suggestions := r.Suggest("observability", results)
	byTerm := make(map[string]Suggestion)
	for _, s := range suggestions {
		byTerm[s.Term] = s
	}

	require.Contains(t, byTerm, "grafana")
	require.Contains(t, byTerm, "queries")
	assert.Greater(t, byTerm["grafana"].Score, byTerm["queries"].Score)
}

func TestSuggest_BigramsTaggedCombined(t *testing.T) {
	r := New(WithMaxSuggestions(50))

	results := []provider.Result{
		{Title: "service mesh patterns", Snippet: "service mesh in production"},
		{Title: "adopting a service mesh", Snippet: ""},
	}

	suggestions := r.Suggest("istio", results)
	var bigram *Suggestion
	for i := range suggestions {
		if suggestions[i].Term == "service mesh" {
			bigram = &suggestions[i]
			break
		}
	}

	require.NotNil(t, bigram, "bigram appearing 3 times should be suggested")
	assert.Equal(t, []string{"combined"}, bigram.Sources)
}

func TestSuggest_SingleOccurrenceBigramDropped(t *testing.T) {
	r := New(WithMaxSuggestions(50))

	results := []provider.Result{
		{Title: "event sourcing", Snippet: "different words entirely"},
	}

	terms := suggestionTerms(r.Suggest("cqrs", results))
	assert.NotContains(t, terms, "event sourcing")
}

func TestSuggest_DomainSegmentsAreMined(t *testing.T) {
	r := New(WithMaxSuggestions(50))

	results := []provider.Result{
		{URL: "https://distributed-systems.example.net/post", Title: "Reading list", Snippet: "papers"},
	}

	suggestions := r.Suggest("consensus", results)
	byTerm := make(map[string]Suggestion)
	for _, s := range suggestions {
		byTerm[s.Term] = s
	}

	require.Contains(t, byTerm, "distributed")
	assert.Equal(t, []string{"domain"}, byTerm["distributed"].Sources)
}

func TestSuggest_EmptyResultsYieldNil(t *testing.T) {
	r := New()

	assert.Nil(t, r.Suggest("anything", nil))
}

func TestSuggest_ScoreNeverExceedsOne(t *testing.T) {
	r := New()

	// Heavy repetition pushes raw frequency far past the result
	// count; the cap holds.
	results := []provider.Result{
		{Title: "terraform terraform terraform", Snippet: "terraform terraform"},
	}

	for _, s := range r.Suggest("infra", results) {
		assert.LessOrEqual(t, s.Score, 1.0)
	}
}
