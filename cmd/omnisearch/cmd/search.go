package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/omnisearch-dev/omnisearch/internal/output"
	"github.com/omnisearch-dev/omnisearch/internal/render"
)

func newSearchCmd() *cobra.Command {
	var (
		limit      int
		format     string
		group      string
		outputPath string
		tags       []string
		domains    []string
		excludes   []string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a one-shot search across all enabled providers",
		Long: `Search fans the query out to every enabled provider, merges and
deduplicates the responses, scores and categorizes them, and renders
the result set.`,
		Example: `  # Markdown to stdout, grouped by domain
  omnisearch search "go generics tutorial"

  # JSON to a file, restricted to two sites
  omnisearch search --format json --output results.json \
      --domains go.dev,github.com "generics"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "), searchFlags{
				limit:      limit,
				format:     format,
				group:      group,
				outputPath: outputPath,
				tags:       tags,
				domains:    domains,
				excludes:   excludes,
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Per-provider result limit (default from config)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: md or json")
	cmd.Flags().StringVarP(&group, "group", "g", "", "Markdown grouping: domain, category, or none")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the rendered document to a file")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Frontmatter tags")
	cmd.Flags().StringSliceVar(&domains, "domains", nil, "Only include results from these domains")
	cmd.Flags().StringSliceVar(&excludes, "exclude-domains", nil, "Drop results from these domains")

	return cmd
}

type searchFlags struct {
	limit      int
	format     string
	group      string
	outputPath string
	tags       []string
	domains    []string
	excludes   []string
}

func runSearch(cmd *cobra.Command, query string, flags searchFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	pipe, err := buildPipeline(cfg, slog.Default())
	if err != nil {
		return err
	}

	report, err := pipe.Run(cmd.Context(), query,
		searchOptions(cfg, flags.limit, flags.domains, flags.excludes))
	if err != nil {
		return err
	}

	renderOpts := cfg.Output.RenderOptions()
	if flags.format != "" {
		renderOpts.Format = render.Format(flags.format)
	}
	if flags.group != "" {
		renderOpts.Group = render.GroupMode(flags.group)
	}
	if len(flags.tags) > 0 {
		renderOpts.Tags = flags.tags
	}

	var doc string
	switch renderOpts.Format {
	case render.FormatJSON:
		doc, err = render.JSON(report)
		if err != nil {
			return err
		}
	default:
		doc = render.Markdown(report, renderOpts)
	}

	w := output.New(cmd.OutOrStdout())
	if flags.outputPath != "" {
		if err := os.WriteFile(flags.outputPath, []byte(doc), 0o644); err != nil {
			return err
		}
		w.FetchSummary(report)
		w.Successf("wrote %s", flags.outputPath)
		return nil
	}

	if _, err := cmd.OutOrStdout().Write([]byte(doc)); err != nil {
		return err
	}
	for _, perr := range report.Errors {
		w.Warningf("provider %s failed: %s", perr.Provider, perr.Message)
	}
	return nil
}
