package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	oserrors "github.com/omnisearch-dev/omnisearch/internal/errors"
)

const defaultSerpAPIEndpoint = "https://serpapi.com"

// SerpAPI queries Google results through the SerpAPI service.
type SerpAPI struct {
	name     string
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewSerpAPI creates a SerpAPI provider from config.
func NewSerpAPI(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, oserrors.New(oserrors.ErrCodeMissingCredential, "serpapi: api key is required", nil)
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultSerpAPIEndpoint
	}
	name := cfg.Name
	if name == "" {
		name = "serpapi"
	}
	return &SerpAPI{
		name:     name,
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
		client:   newHTTPClient(cfg.Timeout),
	}, nil
}

// Name returns the provider tag.
func (s *SerpAPI) Name() string { return s.name }

// serpResponse is the subset of the SerpAPI response we consume.
type serpResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
		Date    string `json:"date"`
	} `json:"organic_results"`
}

// Search executes a query against SerpAPI's Google engine.
func (s *SerpAPI) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("api_key", s.apiKey)
	if opts.Limit > 0 {
		params.Set("num", strconv.Itoa(opts.Limit))
	}
	if opts.Locale != "" {
		params.Set("hl", opts.Locale)
	}

	searchURL := s.endpoint + "/search.json?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, oserrors.NewProviderError(s.name, err.Error(), 0, err)
	}

	body, status, err := doRequest(s.client, req)
	if err != nil {
		return nil, oserrors.NewProviderError(s.name, err.Error(), status, err)
	}

	var decoded serpResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, oserrors.NewProviderError(s.name, "failed to parse response: "+err.Error(), 0, err)
	}

	retrievedAt := time.Now()
	results := make([]Result, 0, len(decoded.OrganicResults))
	for _, r := range decoded.OrganicResults {
		ts := retrievedAt
		if r.Date != "" {
			// SerpAPI dates look like "Mar 5, 2024".
			if parsed, err := time.Parse("Jan 2, 2006", r.Date); err == nil {
				ts = parsed
			}
		}
		results = append(results, Result{
			URL:       r.Link,
			Title:     r.Title,
			Snippet:   r.Snippet,
			Source:    s.name,
			Timestamp: ts,
		})
	}

	return FilterOptions(results, opts), nil
}

// HealthCheck issues a minimal search to verify reachability and auth.
func (s *SerpAPI) HealthCheck(ctx context.Context) bool {
	_, err := s.Search(ctx, "ping", Options{Limit: 1})
	return err == nil
}
