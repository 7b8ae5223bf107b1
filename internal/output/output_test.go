package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/omnisearch-dev/omnisearch/internal/pipeline"
	"github.com/omnisearch-dev/omnisearch/internal/provider"
)

func TestWriter_Status_PrintsIconAndMessage(t *testing.T) {
	// Given: a writer with a buffer
	buf := &bytes.Buffer{}
	w := New(buf)

	// When: printing a status message
	w.Status("🔍", "Querying providers...")

	// Then: output contains icon and message
	output := buf.String()
	assert.Contains(t, output, "🔍")
	assert.Contains(t, output, "Querying providers...")
}

func TestWriter_Success_PrintsCheckmark(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Success("Export complete!")

	output := buf.String()
	assert.Contains(t, output, "✅")
	assert.Contains(t, output, "Export complete!")
}

func TestWriter_ProviderStatus(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.ProviderStatus("brave", true)
	w.ProviderStatus("rss", false)

	output := buf.String()
	assert.Contains(t, output, "✅ brave")
	assert.Contains(t, output, "❌ rss")
	assert.Contains(t, output, "unhealthy")
}

func TestWriter_Results_NumbersAndCaptions(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Results([]pipeline.ReportResult{
		{
			Result: provider.Result{
				URL: "https://example.com/a", Title: "First", Snippet: "About things", Source: "brave",
			},
			Score:      0.9,
			Categories: []string{"General"},
		},
	})

	output := buf.String()
	assert.Contains(t, output, " 1. First")
	assert.Contains(t, output, "https://example.com/a")
	assert.Contains(t, output, "score 0.90 · brave · General")
}

func TestWriter_FetchSummary_IncludesProviderFailures(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	report := &pipeline.Report{
		Query:        "go",
		TotalResults: 2,
		Providers:    []string{"brave"},
	}
	w.FetchSummary(report)

	assert.Contains(t, buf.String(), `2 results from 1 providers for "go"`)
}
