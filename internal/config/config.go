// Package config loads and validates the omnisearch configuration.
// Values are applied in order of increasing precedence: hardcoded
// defaults, the user config (~/.config/omnisearch/config.yaml), the
// project config (.omnisearch.yaml), and OMNISEARCH_* environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	oserrors "github.com/omnisearch-dev/omnisearch/internal/errors"
	"github.com/omnisearch-dev/omnisearch/internal/provider"
	"github.com/omnisearch-dev/omnisearch/internal/rank"
	"github.com/omnisearch-dev/omnisearch/internal/render"
)

// Config is the complete omnisearch configuration.
type Config struct {
	Version   int              `yaml:"version" json:"version"`
	Providers []ProviderConfig `yaml:"providers" json:"providers"`
	Search    SearchConfig     `yaml:"search" json:"search"`
	Refine    RefineConfig     `yaml:"refine" json:"refine"`
	Session   SessionConfig    `yaml:"session" json:"session"`
	Cache     CacheConfig      `yaml:"cache" json:"cache"`
	Output    OutputConfig     `yaml:"output" json:"output"`
	Logging   LoggingConfig    `yaml:"logging" json:"logging"`
}

// ProviderConfig declares one provider instance.
type ProviderConfig struct {
	Name              string   `yaml:"name" json:"name"`
	Type              string   `yaml:"type" json:"type"`
	Enabled           bool     `yaml:"enabled" json:"enabled"`
	APIKey            string   `yaml:"api_key" json:"api_key"`
	Endpoint          string   `yaml:"endpoint" json:"endpoint"`
	TimeoutSeconds    int      `yaml:"timeout_seconds" json:"timeout_seconds"`
	RequestsPerSecond float64  `yaml:"requests_per_second" json:"requests_per_second"`
	Feeds             []string `yaml:"feeds" json:"feeds"`
}

// ToProvider converts the declaration to construction parameters.
func (p ProviderConfig) ToProvider() provider.Config {
	return provider.Config{
		Name:              p.Name,
		Type:              p.Type,
		APIKey:            p.APIKey,
		Endpoint:          p.Endpoint,
		Timeout:           time.Duration(p.TimeoutSeconds) * time.Second,
		RequestsPerSecond: p.RequestsPerSecond,
		Feeds:             p.Feeds,
	}
}

// SearchConfig tunes the fetch and scoring pipeline.
type SearchConfig struct {
	// Limit is the per-provider result cap.
	Limit int `yaml:"limit" json:"limit"`

	// Concurrency bounds simultaneous provider calls.
	Concurrency int `yaml:"concurrency" json:"concurrency"`

	// CallTimeoutSeconds bounds a single provider call attempt.
	CallTimeoutSeconds int `yaml:"call_timeout_seconds" json:"call_timeout_seconds"`

	// Retries is the per-provider retry count after the first attempt.
	Retries int `yaml:"retries" json:"retries"`

	// Scorer selects "heuristic" or "hybrid" (BM25 blend).
	Scorer string `yaml:"scorer" json:"scorer"`

	// Weights blends the heuristic scorer's signals.
	Weights rank.Weights `yaml:"weights" json:"weights"`

	// TrustedDomains replaces the default trusted-domain list when
	// non-empty.
	TrustedDomains []string `yaml:"trusted_domains" json:"trusted_domains"`
}

// RefineConfig tunes suggestion mining.
type RefineConfig struct {
	MaxSuggestions    int  `yaml:"max_suggestions" json:"max_suggestions"`
	MinTermLength     int  `yaml:"min_term_length" json:"min_term_length"`
	IncludeQueryTerms bool `yaml:"include_query_terms" json:"include_query_terms"`
}

// SessionConfig tunes the interactive loop.
type SessionConfig struct {
	MaxDepth int `yaml:"max_depth" json:"max_depth"`
}

// CacheConfig tunes the result cache. Enabled is a pointer so a file
// can say "enabled: false" and still override the default of true;
// absent means "use the default".
type CacheConfig struct {
	Enabled    *bool  `yaml:"enabled" json:"enabled"`
	Dir        string `yaml:"dir" json:"dir"`
	TTLMinutes int    `yaml:"ttl_minutes" json:"ttl_minutes"`
}

// IsEnabled resolves the tri-state Enabled field; unset means on.
func (c CacheConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// OutputConfig sets rendering defaults. Frontmatter follows the same
// tri-state convention as CacheConfig.Enabled.
type OutputConfig struct {
	Format        string   `yaml:"format" json:"format"`
	Group         string   `yaml:"group" json:"group"`
	Tags          []string `yaml:"tags" json:"tags"`
	Frontmatter   *bool    `yaml:"frontmatter" json:"frontmatter"`
	SnippetLength int      `yaml:"snippet_length" json:"snippet_length"`
}

// FrontmatterEnabled resolves the tri-state Frontmatter field; unset
// means on.
func (o OutputConfig) FrontmatterEnabled() bool {
	return o.Frontmatter == nil || *o.Frontmatter
}

// RenderOptions converts the output section to renderer options.
func (o OutputConfig) RenderOptions() render.Options {
	return render.Options{
		Format:        render.Format(o.Format),
		Group:         render.GroupMode(o.Group),
		Tags:          o.Tags,
		Frontmatter:   o.FrontmatterEnabled(),
		SnippetLength: o.SnippetLength,
	}
}

// LoggingConfig tunes slog output.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	File   string `yaml:"file" json:"file"`
	Stderr bool   `yaml:"stderr" json:"stderr"`
}

// NewConfig returns the hardcoded defaults: DuckDuckGo enabled (it
// needs no credential), everything else opt-in.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Providers: []ProviderConfig{
			{Name: "duckduckgo", Type: "duckduckgo", Enabled: true, RequestsPerSecond: 1},
			{Name: "brave", Type: "brave", RequestsPerSecond: 1},
			{Name: "serpapi", Type: "serpapi", RequestsPerSecond: 1},
			{Name: "rss", Type: "rss", RequestsPerSecond: 2},
		},
		Search: SearchConfig{
			Limit:              10,
			Concurrency:        3,
			CallTimeoutSeconds: 30,
			Retries:            2,
			Scorer:             "heuristic",
			Weights:            rank.DefaultWeights(),
		},
		Refine: RefineConfig{
			MaxSuggestions: 10,
			MinTermLength:  3,
		},
		Session: SessionConfig{MaxDepth: 3},
		Cache: CacheConfig{
			Enabled:    boolPtr(true),
			Dir:        defaultCacheDir(),
			TTLMinutes: 15,
		},
		Output: OutputConfig{
			Format:      "md",
			Group:       "domain",
			Frontmatter: boolPtr(true),
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load builds the effective configuration for a project directory.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, err
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetUserConfigPath follows the XDG base directory convention.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "omnisearch", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "omnisearch", "config.yaml")
	}
	return filepath.Join(home, ".config", "omnisearch", "config.yaml")
}

func boolPtr(v bool) *bool { return &v }

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".omnisearch", "cache")
	}
	return filepath.Join(home, ".omnisearch", "cache")
}

func loadUserConfig() (*Config, error) {
	path := GetUserConfigPath()
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}
	var parsed Config
	if err := unmarshalFile(path, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

// loadFromFile merges .omnisearch.yaml or .omnisearch.yml from dir.
func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{".omnisearch.yaml", ".omnisearch.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		var parsed Config
		if err := unmarshalFile(path, &parsed); err != nil {
			return err
		}
		c.mergeWith(&parsed)
		return nil
	}
	return nil
}

func unmarshalFile(path string, into *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return oserrors.New(oserrors.ErrCodeConfigNotFound,
			fmt.Sprintf("failed to read config file %s", path), err)
	}
	if err := yaml.Unmarshal(data, into); err != nil {
		return oserrors.New(oserrors.ErrCodeConfigInvalid,
			fmt.Sprintf("failed to parse config file %s", path), err)
	}
	return nil
}

// mergeWith merges non-zero values from other into c. A providers
// list replaces the defaults wholesale; per-field patching across
// list entries is not attempted.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	if len(other.Providers) > 0 {
		c.Providers = other.Providers
	}

	if other.Search.Limit != 0 {
		c.Search.Limit = other.Search.Limit
	}
	if other.Search.Concurrency != 0 {
		c.Search.Concurrency = other.Search.Concurrency
	}
	if other.Search.CallTimeoutSeconds != 0 {
		c.Search.CallTimeoutSeconds = other.Search.CallTimeoutSeconds
	}
	if other.Search.Retries != 0 {
		c.Search.Retries = other.Search.Retries
	}
	if other.Search.Scorer != "" {
		c.Search.Scorer = other.Search.Scorer
	}
	if w := other.Search.Weights; w.Recency != 0 || w.Domain != 0 || w.Relevance != 0 {
		c.Search.Weights = w
	}
	if len(other.Search.TrustedDomains) > 0 {
		c.Search.TrustedDomains = other.Search.TrustedDomains
	}

	if other.Refine.MaxSuggestions != 0 {
		c.Refine.MaxSuggestions = other.Refine.MaxSuggestions
	}
	if other.Refine.MinTermLength != 0 {
		c.Refine.MinTermLength = other.Refine.MinTermLength
	}
	if other.Refine.IncludeQueryTerms {
		c.Refine.IncludeQueryTerms = true
	}

	if other.Session.MaxDepth != 0 {
		c.Session.MaxDepth = other.Session.MaxDepth
	}

	if other.Cache.Enabled != nil {
		c.Cache.Enabled = other.Cache.Enabled
	}
	if other.Cache.Dir != "" {
		c.Cache.Dir = other.Cache.Dir
	}
	if other.Cache.TTLMinutes != 0 {
		c.Cache.TTLMinutes = other.Cache.TTLMinutes
	}

	if other.Output.Format != "" {
		c.Output.Format = other.Output.Format
	}
	if other.Output.Group != "" {
		c.Output.Group = other.Output.Group
	}
	if len(other.Output.Tags) > 0 {
		c.Output.Tags = other.Output.Tags
	}
	if other.Output.Frontmatter != nil {
		c.Output.Frontmatter = other.Output.Frontmatter
	}
	if other.Output.SnippetLength != 0 {
		c.Output.SnippetLength = other.Output.SnippetLength
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.File != "" {
		c.Logging.File = other.Logging.File
	}
	if other.Logging.Stderr {
		c.Logging.Stderr = true
	}
}

// applyEnvOverrides applies OMNISEARCH_* environment variables, the
// highest-precedence layer. API keys are matched to providers by
// type.
func (c *Config) applyEnvOverrides() {
	keyVars := map[string]string{
		"brave":   "OMNISEARCH_BRAVE_KEY",
		"serpapi": "OMNISEARCH_SERPAPI_KEY",
	}
	for i := range c.Providers {
		if envVar, ok := keyVars[c.Providers[i].Type]; ok {
			if v := os.Getenv(envVar); v != "" {
				c.Providers[i].APIKey = v
				c.Providers[i].Enabled = true
			}
		}
	}

	if v := os.Getenv("OMNISEARCH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("OMNISEARCH_CACHE_DIR"); v != "" {
		c.Cache.Dir = v
	}
	if v := os.Getenv("OMNISEARCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.Limit = n
		}
	}
}

// Enabled returns the enabled provider declarations.
func (c *Config) Enabled() []ProviderConfig {
	var out []ProviderConfig
	for _, p := range c.Providers {
		if p.Enabled {
			out = append(out, p)
		}
	}
	return out
}

// Validate rejects configurations the pipeline cannot run with.
// "No providers enabled" is a hard error raised before any fetch.
func (c *Config) Validate() error {
	enabled := c.Enabled()
	if len(enabled) == 0 {
		return oserrors.New(oserrors.ErrCodeNoProviders, "no providers enabled", nil)
	}

	known := map[string]bool{"brave": true, "duckduckgo": true, "serpapi": true, "rss": true}
	for _, p := range enabled {
		if !known[p.Type] {
			return oserrors.New(oserrors.ErrCodeConfigInvalid,
				fmt.Sprintf("unknown provider type %q", p.Type), nil)
		}
		switch p.Type {
		case "brave", "serpapi":
			if p.APIKey == "" {
				return oserrors.New(oserrors.ErrCodeMissingCredential,
					fmt.Sprintf("provider %s requires an API key", p.Name), nil)
			}
		case "rss":
			if len(p.Feeds) == 0 {
				return oserrors.New(oserrors.ErrCodeConfigInvalid,
					"rss provider requires at least one feed URL", nil)
			}
		}
		if p.RequestsPerSecond < 0 {
			return oserrors.New(oserrors.ErrCodeConfigInvalid,
				fmt.Sprintf("provider %s has negative rate limit", p.Name), nil)
		}
	}

	if c.Search.Limit <= 0 {
		return oserrors.New(oserrors.ErrCodeConfigInvalid, "search.limit must be positive", nil)
	}
	if c.Search.Scorer != "heuristic" && c.Search.Scorer != "hybrid" {
		return oserrors.New(oserrors.ErrCodeConfigInvalid,
			fmt.Sprintf("unknown scorer %q (want heuristic or hybrid)", c.Search.Scorer), nil)
	}
	w := c.Search.Weights
	if w.Recency < 0 || w.Domain < 0 || w.Relevance < 0 {
		return oserrors.New(oserrors.ErrCodeConfigInvalid, "scoring weights must be non-negative", nil)
	}

	switch render.Format(c.Output.Format) {
	case render.FormatMarkdown, render.FormatJSON:
	default:
		return oserrors.New(oserrors.ErrCodeConfigInvalid,
			fmt.Sprintf("unknown output format %q (want md or json)", c.Output.Format), nil)
	}
	switch render.GroupMode(c.Output.Group) {
	case render.GroupByDomain, render.GroupByCategory, render.GroupNone:
	default:
		return oserrors.New(oserrors.ErrCodeConfigInvalid,
			fmt.Sprintf("unknown group mode %q (want domain, category, or none)", c.Output.Group), nil)
	}
	return nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return oserrors.New(oserrors.ErrCodeConfigInvalid, "failed to serialize config", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return oserrors.ConfigError("failed to create config directory", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return oserrors.ConfigError("failed to write config file", err)
	}
	return nil
}
