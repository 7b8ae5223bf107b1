package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnisearch-dev/omnisearch/internal/provider"
)

func sample(url, title, snippet, source string) provider.Result {
	return provider.Result{
		URL:       url,
		Title:     title,
		Snippet:   snippet,
		Source:    source,
		Timestamp: time.Now(),
	}
}

func TestDeduplicate_CollapsesTrackedURLVariants(t *testing.T) {
	d := New(DefaultConfig())

	a := sample("https://example.com/post", "A deep dive into goroutine scheduling", "How the Go runtime schedules goroutines.", "brave")
	dup := sample("https://www.example.com/post/?utm_source=news", "A deep dive into goroutine scheduling", "How the Go runtime schedules goroutines.", "serpapi")

	unique := d.Deduplicate([]provider.Result{a, dup})
	require.Len(t, unique, 1)

	// First-seen survives.
	assert.Equal(t, "brave", unique[0].Source)
	assert.Equal(t, "https://example.com/post", unique[0].URL)

	sources := unique[0].Metadata["sources"].([]string)
	assert.ElementsMatch(t, []string{"brave", "serpapi"}, sources)
}

func TestDeduplicate_MergesMetadataWithoutOverwriting(t *testing.T) {
	d := New(DefaultConfig())

	a := sample("https://example.com/post", "Title words here okay", "Snippet words here too", "brave")
	a.Metadata = map[string]any{"rank": 1}
	dup := sample("https://example.com/post", "Title words here okay", "Snippet words here too", "rss")
	dup.Metadata = map[string]any{"rank": 9, "feed": "Engineering Blog"}

	unique := d.Deduplicate([]provider.Result{a, dup})
	require.Len(t, unique, 1)

	assert.Equal(t, 1, unique[0].Metadata["rank"], "survivor's keys are preserved")
	assert.Equal(t, "Engineering Blog", unique[0].Metadata["feed"], "new keys are added")
}

func TestDeduplicate_DoesNotMutateCallerMetadata(t *testing.T) {
	d := New(DefaultConfig())

	a := sample("https://example.com/post", "Some title words here", "and a snippet", "brave")
	a.Metadata = map[string]any{"rank": 1}

	_ = d.Deduplicate([]provider.Result{a})
	_, mutated := a.Metadata["sources"]
	assert.False(t, mutated, "input result's metadata map must not be mutated")
}

func TestDeduplicate_DistinctResultsSurvive(t *testing.T) {
	d := New(DefaultConfig())

	results := []provider.Result{
		sample("https://a.example.com/1", "kubernetes autoscaling guide overview", "scaling clusters automatically", "brave"),
		sample("https://b.example.com/2", "postgres replication internals explained", "streaming replication deep dive", "rss"),
	}

	unique := d.Deduplicate(results)
	assert.Len(t, unique, 2)
	// Input order preserved.
	assert.Equal(t, "https://a.example.com/1", unique[0].URL)
}

func TestDeduplicate_URLOnlyConfig(t *testing.T) {
	d := New(Config{UseURL: true})

	// Same URL, different text: URL-only key still collapses them.
	results := []provider.Result{
		sample("https://example.com/p", "completely different title one", "snippet one", "brave"),
		sample("https://example.com/p", "another unrelated heading text", "snippet two", "serpapi"),
	}

	assert.Len(t, d.Deduplicate(results), 1)
}

func TestKey_IsPureFunctionOfURLAndText(t *testing.T) {
	d := New(DefaultConfig())

	a := sample("https://example.com/p?b=2&a=1", "same title words here", "same snippet words", "brave")
	b := sample("https://www.example.com/p/?a=1&b=2", "same title words here", "same snippet words", "rss")

	assert.Equal(t, d.Key(a), d.Key(b))
}

func TestComputeSimilarity_IdenticalTextIsOne(t *testing.T) {
	a := sample("https://x.com/1", "go runtime scheduler improvements explained", "details about the scheduler", "brave")
	b := sample("https://y.com/2", "go runtime scheduler improvements explained", "details about the scheduler", "rss")

	assert.InDelta(t, 1.0, ComputeSimilarity(a, b), 1e-9)
}

func TestComputeSimilarity_UnrelatedTextNearZero(t *testing.T) {
	a := sample("https://x.com/1", "kubernetes cluster autoscaling production workloads", "scaling clusters", "brave")
	b := sample("https://y.com/2", "favorite pasta recipes northern italian kitchens", "cooking dinner", "rss")

	assert.Less(t, ComputeSimilarity(a, b), 0.1)
}

func TestFindSimilar_AdjacencyIsSymmetric(t *testing.T) {
	results := []provider.Result{
		sample("https://x.com/1", "go runtime scheduler improvements explained today", "scheduler details inside", "brave"),
		sample("https://y.com/2", "go runtime scheduler improvements explained today", "scheduler details inside", "rss"),
		sample("https://z.com/3", "favorite pasta recipes northern italian kitchens", "cooking", "serpapi"),
	}

	adjacency := FindSimilar(results, 0.8)

	require.Contains(t, adjacency, 0)
	require.Contains(t, adjacency, 1)
	assert.Contains(t, adjacency[0], 1)
	assert.Contains(t, adjacency[1], 0)
	assert.NotContains(t, adjacency, 2)
}
