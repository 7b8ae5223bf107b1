// Package output provides consistent CLI output formatting with
// status icons for the batch commands.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/omnisearch-dev/omnisearch/internal/pipeline"
	"github.com/omnisearch-dev/omnisearch/internal/render"
)

// Writer provides formatted output for CLI.
type Writer struct {
	out io.Writer
}

// New creates a new output Writer.
func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message with checkmark.
func (w *Writer) Success(msg string) {
	w.Status("✅", msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status("⚠️ ", msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status("❌", msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// ProviderStatus prints one line of doctor output for a provider.
func (w *Writer) ProviderStatus(name string, healthy bool) {
	if !healthy {
		w.Statusf("❌", "%-12s unhealthy", name)
		return
	}
	w.Statusf("✅", "%-12s healthy", name)
}

// Results prints a numbered result list, truncating snippets to a
// single caption line.
func (w *Writer) Results(results []pipeline.ReportResult) {
	for i, r := range results {
		_, _ = fmt.Fprintf(w.out, "%2d. %s\n", i+1, r.Title)
		_, _ = fmt.Fprintf(w.out, "    %s\n", r.URL)
		if snippet := render.TruncateWords(r.Snippet, 120); snippet != "" {
			_, _ = fmt.Fprintf(w.out, "    %s\n", snippet)
		}
		caption := fmt.Sprintf("score %.2f · %s", r.Score, r.Source)
		if len(r.Categories) > 0 {
			caption += " · " + strings.Join(r.Categories, ", ")
		}
		_, _ = fmt.Fprintf(w.out, "    %s\n", caption)
	}
}

// FetchSummary prints the one-line outcome of a batch fetch.
func (w *Writer) FetchSummary(report *pipeline.Report) {
	w.Statusf("🔍", "%d results from %d providers for %q",
		report.TotalResults, len(report.Providers), report.Query)
	for _, perr := range report.Errors {
		w.Warningf("provider %s failed: %s", perr.Provider, perr.Message)
	}
}
