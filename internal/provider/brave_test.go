package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oserrors "github.com/omnisearch-dev/omnisearch/internal/errors"
)

const braveFixture = `{
  "web": {
    "results": [
      {"title": "Go Concurrency Patterns", "url": "https://go.dev/blog/pipelines", "description": "Pipelines and cancellation in Go.", "page_age": "2024-03-01T12:00:00Z"},
      {"title": "Effective Go", "url": "https://go.dev/doc/effective_go", "description": "Tips for writing clear, idiomatic Go code."},
      {"title": "Some Blog", "url": "https://example.com/go-post", "description": "A post about go."}
    ]
  }
}`

func newBraveTestServer(t *testing.T, status int, body string) (*httptest.Server, Provider) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("X-Subscription-Token"))
		assert.Equal(t, "/res/v1/web/search", r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	p, err := NewBrave(Config{APIKey: "test-key", Endpoint: srv.URL})
	require.NoError(t, err)
	return srv, p
}

func TestBrave_Search(t *testing.T) {
	_, p := newBraveTestServer(t, http.StatusOK, braveFixture)

	results, err := p.Search(context.Background(), "go concurrency", Options{Limit: 10})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "https://go.dev/blog/pipelines", results[0].URL)
	assert.Equal(t, "brave", results[0].Source)
	assert.Equal(t, 2024, results[0].Timestamp.Year())
	// Missing page_age falls back to retrieval time.
	assert.WithinDuration(t, time.Now(), results[1].Timestamp, time.Minute)
}

func TestBrave_SearchDomainFilter(t *testing.T) {
	_, p := newBraveTestServer(t, http.StatusOK, braveFixture)

	results, err := p.Search(context.Background(), "go", Options{Domains: []string{"go.dev"}})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Contains(t, r.URL, "go.dev")
	}

	excluded, err := p.Search(context.Background(), "go", Options{ExcludeDomains: []string{"go.dev"}})
	require.NoError(t, err)
	require.Len(t, excluded, 1)
	assert.Contains(t, excluded[0].URL, "example.com")
}

func TestBrave_SearchLimit(t *testing.T) {
	_, p := newBraveTestServer(t, http.StatusOK, braveFixture)

	results, err := p.Search(context.Background(), "go", Options{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestBrave_ServerErrorIsProviderError(t *testing.T) {
	_, p := newBraveTestServer(t, http.StatusInternalServerError, "boom")

	_, err := p.Search(context.Background(), "go", Options{})
	require.Error(t, err)

	var pe *oserrors.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "brave", pe.Provider)
	assert.Equal(t, http.StatusInternalServerError, pe.StatusCode)
}

func TestBrave_MalformedJSONIsProviderError(t *testing.T) {
	_, p := newBraveTestServer(t, http.StatusOK, "{not json")

	_, err := p.Search(context.Background(), "go", Options{})
	var pe *oserrors.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Message, "parse")
}

func TestNewBrave_RequiresAPIKey(t *testing.T) {
	_, err := NewBrave(Config{})
	require.Error(t, err)
	assert.Equal(t, oserrors.ErrCodeMissingCredential, oserrors.GetCode(err))
}

func TestBrave_HealthCheck(t *testing.T) {
	_, p := newBraveTestServer(t, http.StatusOK, braveFixture)
	assert.True(t, p.HealthCheck(context.Background()))

	_, down := newBraveTestServer(t, http.StatusServiceUnavailable, "")
	assert.False(t, down.HealthCheck(context.Background()))
}
