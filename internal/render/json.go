package render

import (
	"encoding/json"
	"math"
	"time"

	"github.com/omnisearch-dev/omnisearch/internal/dedup"
	oserrors "github.com/omnisearch-dev/omnisearch/internal/errors"
	"github.com/omnisearch-dev/omnisearch/internal/pipeline"
)

// FormatVersion identifies the JSON document schema.
const FormatVersion = "1.0"

type jsonDocument struct {
	Meta    jsonMeta                  `json:"meta"`
	Results []jsonResult              `json:"results"`
	Errors  []*oserrors.ProviderError `json:"errors,omitempty"`
}

type jsonMeta struct {
	Query           string    `json:"query"`
	GeneratedAt     time.Time `json:"generated_at"`
	Providers       []string  `json:"providers"`
	TotalResults    int       `json:"total_results"`
	DistinctDomains int       `json:"distinct_domains"`
	FormatVersion   string    `json:"format_version"`
}

type jsonResult struct {
	URL        string         `json:"url"`
	Title      string         `json:"title"`
	Snippet    string         `json:"snippet"`
	Source     string         `json:"source"`
	Timestamp  string         `json:"timestamp,omitempty"`
	Score      float64        `json:"score"`
	Domain     string         `json:"domain"`
	Categories []string       `json:"categories,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// JSON renders a Report as an indented JSON document.
func JSON(report *pipeline.Report) (string, error) {
	doc := jsonDocument{
		Meta: jsonMeta{
			Query:           report.Query,
			GeneratedAt:     report.Timestamp,
			Providers:       report.Providers,
			TotalResults:    report.TotalResults,
			DistinctDomains: len(distinctDomains(report)),
			FormatVersion:   FormatVersion,
		},
		Results: make([]jsonResult, len(report.Results)),
		Errors:  report.Errors,
	}

	for i, r := range report.Results {
		ts := ""
		if !r.Timestamp.IsZero() {
			ts = r.Timestamp.UTC().Format(time.RFC3339)
		}
		doc.Results[i] = jsonResult{
			URL:        r.URL,
			Title:      r.Title,
			Snippet:    r.Snippet,
			Source:     r.Source,
			Timestamp:  ts,
			Score:      round2(r.Score),
			Domain:     dedup.Domain(r.URL),
			Categories: r.Categories,
			Metadata:   r.Metadata,
		}
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// distinctDomains returns the set of hostnames in the report.
func distinctDomains(report *pipeline.Report) map[string]struct{} {
	domains := make(map[string]struct{})
	for i := range report.Results {
		domains[dedup.Domain(report.Results[i].URL)] = struct{}{}
	}
	return domains
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
