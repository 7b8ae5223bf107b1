package render

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oserrors "github.com/omnisearch-dev/omnisearch/internal/errors"
)

func TestJSON_MetaAndResults(t *testing.T) {
	out, err := JSON(sampleReport())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	meta := doc["meta"].(map[string]any)
	assert.Equal(t, "go generics", meta["query"])
	assert.Equal(t, float64(3), meta["total_results"])
	assert.Equal(t, float64(2), meta["distinct_domains"])
	assert.Equal(t, FormatVersion, meta["format_version"])

	results := doc["results"].([]any)
	require.Len(t, results, 3)

	first := results[0].(map[string]any)
	assert.Equal(t, "https://github.com/golang/go", first["url"])
	assert.Equal(t, "github.com", first["domain"])
	assert.Equal(t, 0.91, first["score"])
	assert.Equal(t, "2026-08-20T10:30:00Z", first["timestamp"])

	_, hasErrors := doc["errors"]
	assert.False(t, hasErrors, "errors omitted when empty")
}

func TestJSON_ScoreRoundedToTwoDecimals(t *testing.T) {
	report := sampleReport()
	report.Results[0].Score = 0.87654

	out, err := JSON(report)
	require.NoError(t, err)
	assert.Contains(t, out, `"score": 0.88`)
}

func TestJSON_IncludesProviderErrors(t *testing.T) {
	report := sampleReport()
	report.Errors = []*oserrors.ProviderError{
		oserrors.NewProviderError("rss", "all feeds failed", 0, nil),
	}

	out, err := JSON(report)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	errs := doc["errors"].([]any)
	require.Len(t, errs, 1)
	assert.Equal(t, "rss", errs[0].(map[string]any)["provider"])
}
