package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oserrors "github.com/omnisearch-dev/omnisearch/internal/errors"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, v := range []string{
		"OMNISEARCH_BRAVE_KEY",
		"OMNISEARCH_SERPAPI_KEY",
		"OMNISEARCH_LOG_LEVEL",
		"OMNISEARCH_CACHE_DIR",
		"OMNISEARCH_LIMIT",
	} {
		t.Setenv(v, "")
	}
}

func TestLoad_DefaultsWithoutAnyFile(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Search.Limit)
	assert.Equal(t, "heuristic", cfg.Search.Scorer)
	assert.Equal(t, 3, cfg.Session.MaxDepth)

	// Only the credential-free provider is enabled by default.
	enabled := cfg.Enabled()
	require.Len(t, enabled, 1)
	assert.Equal(t, "duckduckgo", enabled[0].Type)
}

func TestLoad_ProjectFileOverridesDefaults(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()

	body := []byte(`
search:
  limit: 25
  scorer: hybrid
session:
  max_depth: 5
output:
  format: json
  group: none
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".omnisearch.yaml"), body, 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Search.Limit)
	assert.Equal(t, "hybrid", cfg.Search.Scorer)
	assert.Equal(t, 5, cfg.Session.MaxDepth)
	assert.Equal(t, "json", cfg.Output.Format)
	// Untouched sections keep their defaults.
	assert.Equal(t, 3, cfg.Search.Concurrency)
}

func TestLoad_ExplicitFalseOverridesDefaultTrue(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()

	// Both fields default to true; an explicit false in the file must
	// survive the merge.
	body := []byte(`
cache:
  enabled: false
output:
  frontmatter: false
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".omnisearch.yaml"), body, 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.False(t, cfg.Cache.IsEnabled())
	assert.False(t, cfg.Output.FrontmatterEnabled())
	assert.False(t, cfg.Output.RenderOptions().Frontmatter)
}

func TestLoad_UnsetBoolsKeepDefaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.True(t, cfg.Cache.IsEnabled())
	assert.True(t, cfg.Output.FrontmatterEnabled())
}

func TestLoad_UserConfigThenProjectPrecedence(t *testing.T) {
	isolateEnv(t)
	xdg := os.Getenv("XDG_CONFIG_HOME")
	userDir := filepath.Join(xdg, "omnisearch")
	require.NoError(t, os.MkdirAll(userDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(userDir, "config.yaml"),
		[]byte("search:\n  limit: 50\n  retries: 4\n"), 0o644))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".omnisearch.yaml"),
		[]byte("search:\n  limit: 7\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Search.Limit, "project config wins")
	assert.Equal(t, 4, cfg.Search.Retries, "user config survives where project is silent")
}

func TestLoad_EnvKeyEnablesProvider(t *testing.T) {
	isolateEnv(t)
	t.Setenv("OMNISEARCH_BRAVE_KEY", "test-key")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	var brave *ProviderConfig
	for i := range cfg.Providers {
		if cfg.Providers[i].Type == "brave" {
			brave = &cfg.Providers[i]
		}
	}
	require.NotNil(t, brave)
	assert.True(t, brave.Enabled)
	assert.Equal(t, "test-key", brave.APIKey)
}

func TestValidate_NoProvidersEnabled(t *testing.T) {
	cfg := NewConfig()
	for i := range cfg.Providers {
		cfg.Providers[i].Enabled = false
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, oserrors.ErrCodeNoProviders, oserrors.GetCode(err))
}

func TestValidate_APIProviderWithoutKey(t *testing.T) {
	cfg := NewConfig()
	cfg.Providers = []ProviderConfig{
		{Name: "brave", Type: "brave", Enabled: true},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, oserrors.ErrCodeMissingCredential, oserrors.GetCode(err))
}

func TestValidate_RSSRequiresFeeds(t *testing.T) {
	cfg := NewConfig()
	cfg.Providers = []ProviderConfig{
		{Name: "rss", Type: "rss", Enabled: true},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, oserrors.ErrCodeConfigInvalid, oserrors.GetCode(err))
}

func TestValidate_UnknownScorer(t *testing.T) {
	cfg := NewConfig()
	cfg.Search.Scorer = "neural"

	err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidate_UnknownOutputFormat(t *testing.T) {
	cfg := NewConfig()
	cfg.Output.Format = "xml"

	assert.Error(t, cfg.Validate())
}

func TestLoad_MalformedYAMLSurfacesConfigError(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".omnisearch.yaml"),
		[]byte("search: [not a map"), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Equal(t, oserrors.ErrCodeConfigInvalid, oserrors.GetCode(err))
}

func TestSave_RoundTrips(t *testing.T) {
	isolateEnv(t)
	cfg := NewConfig()
	cfg.Search.Limit = 42

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, cfg.Save(path))

	var loaded Config
	require.NoError(t, unmarshalFile(path, &loaded))
	assert.Equal(t, 42, loaded.Search.Limit)
}
