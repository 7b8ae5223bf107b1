package render

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/omnisearch-dev/omnisearch/internal/dedup"
	"github.com/omnisearch-dev/omnisearch/internal/pipeline"
)

// Markdown renders a Report as a Markdown document.
func Markdown(report *pipeline.Report, opts Options) string {
	if opts.SnippetLength <= 0 {
		opts.SnippetLength = DefaultSnippetLength
	}

	var b strings.Builder

	if opts.Frontmatter {
		writeFrontmatter(&b, report, opts)
	}

	fmt.Fprintf(&b, "# Search Results: %s\n\n", report.Query)
	writeSummary(&b, report)

	switch opts.Group {
	case GroupByCategory:
		writeCategoryGroups(&b, report, opts)
	case GroupNone:
		for i := range report.Results {
			writeResult(&b, &report.Results[i], opts)
		}
	default:
		writeDomainGroups(&b, report, opts)
	}

	writeBacklinks(&b, report)
	return b.String()
}

func writeFrontmatter(b *strings.Builder, report *pipeline.Report, opts Options) {
	b.WriteString("---\n")
	fmt.Fprintf(b, "title: %q\n", "Search Results: "+report.Query)
	fmt.Fprintf(b, "date: %s\n", report.Timestamp.Format("2006-01-02"))
	if len(opts.Tags) > 0 {
		fmt.Fprintf(b, "tags: [%s]\n", strings.Join(opts.Tags, ", "))
	}
	if len(report.Providers) > 0 {
		fmt.Fprintf(b, "sources: [%s]\n", strings.Join(report.Providers, ", "))
	}
	fmt.Fprintf(b, "total: %d\n", report.TotalResults)
	b.WriteString("---\n\n")
}

func writeSummary(b *strings.Builder, report *pipeline.Report) {
	fmt.Fprintf(b, "> Query: **%s** — %d results from %d providers across %d domains. Generated %s.\n\n",
		report.Query,
		report.TotalResults,
		len(report.Providers),
		len(distinctDomains(report)),
		report.Timestamp.Format("2006-01-02 15:04"))
}

func writeDomainGroups(b *strings.Builder, report *pipeline.Report, opts Options) {
	groups := make(map[string][]*pipeline.ReportResult)
	var order []string
	for i := range report.Results {
		host := dedup.Domain(report.Results[i].URL)
		if _, seen := groups[host]; !seen {
			order = append(order, host)
		}
		groups[host] = append(groups[host], &report.Results[i])
	}

	// Largest section first; first-seen order breaks ties.
	sort.SliceStable(order, func(i, j int) bool {
		return len(groups[order[i]]) > len(groups[order[j]])
	})

	for _, host := range order {
		fmt.Fprintf(b, "## %s\n\n", host)
		for _, r := range groups[host] {
			writeResult(b, r, opts)
		}
	}
}

func writeCategoryGroups(b *strings.Builder, report *pipeline.Report, opts Options) {
	// Primary category only: a result lands in one section.
	groups := make(map[string][]*pipeline.ReportResult)
	for i := range report.Results {
		primary := "General"
		if len(report.Results[i].Categories) > 0 {
			primary = report.Results[i].Categories[0]
		}
		groups[primary] = append(groups[primary], &report.Results[i])
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(b, "## %s\n\n", name)
		for _, r := range groups[name] {
			writeResult(b, r, opts)
		}
	}
}

func writeResult(b *strings.Builder, r *pipeline.ReportResult, opts Options) {
	fmt.Fprintf(b, "### [%s](%s)\n\n", r.Title, r.URL)

	if snippet := TruncateWords(r.Snippet, opts.SnippetLength); snippet != "" {
		fmt.Fprintf(b, "%s\n\n", snippet)
	}

	caption := fmt.Sprintf("Score: %.2f · Source: %s", r.Score, r.Source)
	if !r.Timestamp.IsZero() {
		caption += " · " + r.Timestamp.Format("2006-01-02")
	}
	fmt.Fprintf(b, "*%s*\n\n", caption)

	if len(r.Categories) > 0 {
		tags := make([]string, len(r.Categories))
		for i, c := range r.Categories {
			tags[i] = "`" + c + "`"
		}
		fmt.Fprintf(b, "%s\n\n", strings.Join(tags, " "))
	}
}

func writeBacklinks(b *strings.Builder, report *pipeline.Report) {
	seen := make(map[string]struct{})
	var names []string
	for i := range report.Results {
		sld := dedup.SecondLevelDomain(report.Results[i].URL)
		if sld == "" || sld == "unknown" {
			continue
		}
		if _, ok := seen[sld]; ok {
			continue
		}
		seen[sld] = struct{}{}
		names = append(names, sld)
	}
	if len(names) == 0 {
		return
	}
	sort.Strings(names)

	b.WriteString("## Related\n\n")
	for _, name := range names {
		fmt.Fprintf(b, "- [[%s]]\n", name)
	}
}

// TruncateWords shortens text to at most limit bytes, cutting at the
// last word boundary and appending an ellipsis. The cut never splits a
// multi-byte rune: without a space to break on, it backs up to the
// nearest rune start.
func TruncateWords(text string, limit int) string {
	text = strings.TrimSpace(text)
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	cut := text[:limit]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " .,;:") + "..."
}
