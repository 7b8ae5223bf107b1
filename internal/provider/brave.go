package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	oserrors "github.com/omnisearch-dev/omnisearch/internal/errors"
)

const defaultBraveEndpoint = "https://api.search.brave.com"

// Brave queries the Brave Web Search API.
type Brave struct {
	name     string
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewBrave creates a Brave provider from config.
func NewBrave(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, oserrors.New(oserrors.ErrCodeMissingCredential, "brave: api key is required", nil)
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultBraveEndpoint
	}
	name := cfg.Name
	if name == "" {
		name = "brave"
	}
	return &Brave{
		name:     name,
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
		client:   newHTTPClient(cfg.Timeout),
	}, nil
}

// Name returns the provider tag.
func (b *Brave) Name() string { return b.name }

// braveResponse is the subset of the Brave API response we consume.
type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
			PageAge     string `json:"page_age"`
		} `json:"results"`
	} `json:"web"`
}

// Search executes a query against the Brave web search endpoint.
func (b *Brave) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	if opts.Limit > 0 {
		params.Set("count", strconv.Itoa(opts.Limit))
	}
	if opts.Locale != "" {
		params.Set("search_lang", opts.Locale)
	}
	if opts.DateRange != nil && !opts.DateRange.From.IsZero() && !opts.DateRange.To.IsZero() {
		params.Set("freshness", fmt.Sprintf("%sto%s",
			opts.DateRange.From.Format("2006-01-02"),
			opts.DateRange.To.Format("2006-01-02")))
	}

	searchURL := b.endpoint + "/res/v1/web/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, oserrors.NewProviderError(b.name, err.Error(), 0, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)

	body, status, err := doRequest(b.client, req)
	if err != nil {
		return nil, oserrors.NewProviderError(b.name, err.Error(), status, err)
	}

	var decoded braveResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, oserrors.NewProviderError(b.name, "failed to parse response: "+err.Error(), 0, err)
	}

	retrievedAt := time.Now()
	results := make([]Result, 0, len(decoded.Web.Results))
	for _, r := range decoded.Web.Results {
		ts := retrievedAt
		if r.PageAge != "" {
			if parsed, err := time.Parse(time.RFC3339, r.PageAge); err == nil {
				ts = parsed
			}
		}
		results = append(results, Result{
			URL:       r.URL,
			Title:     r.Title,
			Snippet:   r.Description,
			Source:    b.name,
			Timestamp: ts,
		})
	}

	return FilterOptions(results, opts), nil
}

// HealthCheck issues a minimal search to verify reachability and auth.
func (b *Brave) HealthCheck(ctx context.Context) bool {
	_, err := b.Search(ctx, "ping", Options{Limit: 1})
	return err == nil
}

// newHTTPClient returns an HTTP client with the given or default timeout.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// doRequest performs an HTTP request and returns the body.
// Non-2xx responses are returned as errors with the status code.
func doRequest(client *http.Client, req *http.Request) ([]byte, int, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return body, resp.StatusCode, nil
}
