// Package categorize assigns labels to search results through an
// ordered rule list. Rules match on domain suffix, keyword presence,
// or URL substring; a result collects every category whose rules
// match and falls back to the General sentinel when none do.
package categorize

import (
	"strings"

	"github.com/omnisearch-dev/omnisearch/internal/dedup"
	"github.com/omnisearch-dev/omnisearch/internal/provider"
)

// General is the fallback category for results no rule matches.
const General = "General"

// RuleKind selects what part of a result a rule inspects.
type RuleKind string

const (
	// KindDomain matches when the result's host equals or is a
	// subdomain of the rule value.
	KindDomain RuleKind = "domain"
	// KindKeyword matches when the rule value appears in the title or
	// snippet, case-insensitively.
	KindKeyword RuleKind = "keyword"
	// KindURLPattern matches when the rule value is a substring of
	// the raw URL, case-insensitively.
	KindURLPattern RuleKind = "urlpattern"
)

// Rule is a single match condition.
type Rule struct {
	Kind  RuleKind `yaml:"kind" json:"kind"`
	Value string   `yaml:"value" json:"value"`
}

// Category names a label and the rules that assign it. A category
// matches when ANY of its rules match.
type Category struct {
	Name  string `yaml:"name" json:"name"`
	Rules []Rule `yaml:"rules" json:"rules"`
}

// Categorized pairs a result with its assigned labels.
type Categorized struct {
	provider.Result

	Categories []string `json:"categories"`
}

// Categorizer evaluates an ordered category list. Order determines
// the order of assigned labels, not precedence: every matching
// category is assigned.
type Categorizer struct {
	categories []Category
}

// DefaultCategories returns the built-in category list.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Documentation", Rules: []Rule{
			{Kind: KindURLPattern, Value: "/docs/"},
			{Kind: KindURLPattern, Value: "/documentation/"},
			{Kind: KindDomain, Value: "docs.python.org"},
			{Kind: KindDomain, Value: "pkg.go.dev"},
			{Kind: KindKeyword, Value: "reference manual"},
		}},
		{Name: "Code", Rules: []Rule{
			{Kind: KindDomain, Value: "github.com"},
			{Kind: KindDomain, Value: "gitlab.com"},
			{Kind: KindDomain, Value: "bitbucket.org"},
		}},
		{Name: "Q&A", Rules: []Rule{
			{Kind: KindDomain, Value: "stackoverflow.com"},
			{Kind: KindDomain, Value: "stackexchange.com"},
			{Kind: KindURLPattern, Value: "/questions/"},
		}},
		{Name: "Academic", Rules: []Rule{
			{Kind: KindDomain, Value: "arxiv.org"},
			{Kind: KindDomain, Value: "acm.org"},
			{Kind: KindKeyword, Value: "abstract"},
			{Kind: KindKeyword, Value: "we propose"},
		}},
		{Name: "News", Rules: []Rule{
			{Kind: KindURLPattern, Value: "/news/"},
			{Kind: KindKeyword, Value: "announced"},
			{Kind: KindKeyword, Value: "released"},
		}},
	}
}

// New creates a categorizer with the given ordered category list. A
// nil list gets the defaults.
func New(categories []Category) *Categorizer {
	if categories == nil {
		categories = DefaultCategories()
	}
	return &Categorizer{categories: categories}
}

// Categories returns a copy of the current category list.
func (c *Categorizer) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Add appends a category, replacing any existing category with the
// same name in place.
func (c *Categorizer) Add(cat Category) {
	for i := range c.categories {
		if c.categories[i].Name == cat.Name {
			c.categories[i] = cat
			return
		}
	}
	c.categories = append(c.categories, cat)
}

// Remove deletes a category by name. Removing an absent name is a
// no-op.
func (c *Categorizer) Remove(name string) {
	for i := range c.categories {
		if c.categories[i].Name == name {
			c.categories = append(c.categories[:i], c.categories[i+1:]...)
			return
		}
	}
}

// Categorize assigns every matching category to the result, or
// General when nothing matches.
func (c *Categorizer) Categorize(r provider.Result) []string {
	var labels []string
	for _, cat := range c.categories {
		if matchesAny(cat.Rules, r) {
			labels = append(labels, cat.Name)
		}
	}
	if len(labels) == 0 {
		return []string{General}
	}
	return labels
}

// CategorizeAll labels every result, preserving input order.
func (c *Categorizer) CategorizeAll(results []provider.Result) []Categorized {
	out := make([]Categorized, len(results))
	for i, r := range results {
		out[i] = Categorized{Result: r, Categories: c.Categorize(r)}
	}
	return out
}

// GroupByCategory buckets results under each assigned label. A result
// with multiple labels appears in multiple buckets.
func (c *Categorizer) GroupByCategory(results []provider.Result) map[string][]provider.Result {
	groups := make(map[string][]provider.Result)
	for _, r := range results {
		for _, label := range c.Categorize(r) {
			groups[label] = append(groups[label], r)
		}
	}
	return groups
}

func matchesAny(rules []Rule, r provider.Result) bool {
	for _, rule := range rules {
		if matches(rule, r) {
			return true
		}
	}
	return false
}

func matches(rule Rule, r provider.Result) bool {
	value := strings.ToLower(strings.TrimSpace(rule.Value))
	if value == "" {
		return false
	}
	switch rule.Kind {
	case KindDomain:
		host := dedup.Domain(r.URL)
		value = strings.TrimPrefix(value, "www.")
		return host == value || strings.HasSuffix(host, "."+value)
	case KindKeyword:
		return strings.Contains(strings.ToLower(r.Title), value) ||
			strings.Contains(strings.ToLower(r.Snippet), value)
	case KindURLPattern:
		return strings.Contains(strings.ToLower(r.URL), value)
	default:
		return false
	}
}
