package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	oserrors "github.com/omnisearch-dev/omnisearch/internal/errors"
)

const defaultDuckDuckGoEndpoint = "https://api.duckduckgo.com"

// DuckDuckGo queries the DuckDuckGo Instant Answer API.
// The API needs no key; it returns abstract and related-topic links
// rather than a full web index, so result sets are small.
type DuckDuckGo struct {
	name     string
	endpoint string
	client   *http.Client
}

// NewDuckDuckGo creates a DuckDuckGo provider from config.
func NewDuckDuckGo(cfg Config) (Provider, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultDuckDuckGoEndpoint
	}
	name := cfg.Name
	if name == "" {
		name = "duckduckgo"
	}
	return &DuckDuckGo{
		name:     name,
		endpoint: endpoint,
		client:   newHTTPClient(cfg.Timeout),
	}, nil
}

// Name returns the provider tag.
func (d *DuckDuckGo) Name() string { return d.name }

// ddgTopic is a related topic entry; nested topic groups carry their
// entries under Topics.
type ddgTopic struct {
	FirstURL string     `json:"FirstURL"`
	Text     string     `json:"Text"`
	Topics   []ddgTopic `json:"Topics,omitempty"`
}

// ddgResponse is the subset of the Instant Answer response we consume.
type ddgResponse struct {
	Heading       string     `json:"Heading"`
	Abstract      string     `json:"Abstract"`
	AbstractURL   string     `json:"AbstractURL"`
	RelatedTopics []ddgTopic `json:"RelatedTopics"`
}

// Search executes a query against the Instant Answer API.
func (d *DuckDuckGo) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	searchURL := d.endpoint + "/?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, oserrors.NewProviderError(d.name, err.Error(), 0, err)
	}

	body, status, err := doRequest(d.client, req)
	if err != nil {
		return nil, oserrors.NewProviderError(d.name, err.Error(), status, err)
	}

	var decoded ddgResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, oserrors.NewProviderError(d.name, "failed to parse response: "+err.Error(), 0, err)
	}

	retrievedAt := time.Now()
	var results []Result

	if decoded.AbstractURL != "" {
		results = append(results, Result{
			URL:       decoded.AbstractURL,
			Title:     decoded.Heading,
			Snippet:   decoded.Abstract,
			Source:    d.name,
			Timestamp: retrievedAt,
		})
	}

	for _, topic := range flattenTopics(decoded.RelatedTopics) {
		if topic.FirstURL == "" {
			continue
		}
		results = append(results, Result{
			URL:       topic.FirstURL,
			Title:     topicTitle(topic.Text),
			Snippet:   topic.Text,
			Source:    d.name,
			Timestamp: retrievedAt,
		})
	}

	return FilterOptions(results, opts), nil
}

// HealthCheck issues a minimal search to verify reachability.
func (d *DuckDuckGo) HealthCheck(ctx context.Context) bool {
	_, err := d.Search(ctx, "ping", Options{Limit: 1})
	return err == nil
}

// flattenTopics expands nested topic groups into a flat list.
func flattenTopics(topics []ddgTopic) []ddgTopic {
	var flat []ddgTopic
	for _, t := range topics {
		if len(t.Topics) > 0 {
			flat = append(flat, flattenTopics(t.Topics)...)
			continue
		}
		flat = append(flat, t)
	}
	return flat
}

// topicTitle derives a short title from the topic text, which has the
// form "Title - description".
func topicTitle(text string) string {
	if idx := strings.Index(text, " - "); idx > 0 {
		return text[:idx]
	}
	return text
}
