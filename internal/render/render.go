// Package render serializes a pipeline Report into Markdown or JSON
// documents.
package render

// Format selects the output document type.
type Format string

const (
	// FormatMarkdown renders a Markdown document with frontmatter,
	// summary, grouped body, and a backlink section.
	FormatMarkdown Format = "md"
	// FormatJSON renders a machine-readable JSON document.
	FormatJSON Format = "json"
)

// GroupMode selects how the Markdown body buckets results.
type GroupMode string

const (
	// GroupByDomain sections results per hostname, largest section
	// first.
	GroupByDomain GroupMode = "domain"
	// GroupByCategory sections results by primary category,
	// alphabetically.
	GroupByCategory GroupMode = "category"
	// GroupNone renders a flat sequential list.
	GroupNone GroupMode = "none"
)

// DefaultSnippetLength is the word-boundary truncation limit.
const DefaultSnippetLength = 300

// Options configures rendering.
type Options struct {
	Format      Format    `yaml:"format" json:"format"`
	Group       GroupMode `yaml:"group" json:"group"`
	Tags        []string  `yaml:"tags" json:"tags"`
	Frontmatter bool      `yaml:"frontmatter" json:"frontmatter"`

	// SnippetLength bounds rendered snippets; 0 means the default of
	// 300 characters.
	SnippetLength int `yaml:"snippet_length" json:"snippet_length"`
}

// DefaultOptions renders Markdown grouped by domain with frontmatter.
func DefaultOptions() Options {
	return Options{
		Format:      FormatMarkdown,
		Group:       GroupByDomain,
		Frontmatter: true,
	}
}
