package cmd

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/omnisearch-dev/omnisearch/internal/output"
	"github.com/omnisearch-dev/omnisearch/internal/refine"
	"github.com/omnisearch-dev/omnisearch/internal/render"
	"github.com/omnisearch-dev/omnisearch/internal/session"
	"github.com/omnisearch-dev/omnisearch/internal/ui"
)

func newInteractiveCmd() *cobra.Command {
	var (
		limit    int
		format   string
		maxDepth int
	)

	cmd := &cobra.Command{
		Use:     "interactive <query>",
		Aliases: []string{"i"},
		Short:   "Run an iterative refinement session",
		Long: `Interactive mode runs rounds of searching and refinement: each round
shows fresh results and mined refinement terms, and commands or
suggestion selections decide the next query. Accumulated results are
rescored against the original query when the session ends.

Type /help inside the session for the command list.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, strings.Join(args, " "), limit, format, maxDepth)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Per-provider result limit (default from config)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Export format: md or json")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Refinement depth before confirmation (default from config)")

	return cmd
}

func runInteractive(cmd *cobra.Command, query string, limit int, format string, maxDepth int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	pipe, err := buildPipeline(cfg, slog.Default())
	if err != nil {
		return err
	}

	renderOpts := cfg.Output.RenderOptions()
	if format != "" {
		renderOpts.Format = render.Format(format)
	}
	if maxDepth <= 0 {
		maxDepth = cfg.Session.MaxDepth
	}

	refinerOpts := []refine.Option{
		refine.WithMaxSuggestions(cfg.Refine.MaxSuggestions),
		refine.WithMinTermLength(cfg.Refine.MinTermLength),
	}
	if cfg.Refine.IncludeQueryTerms {
		refinerOpts = append(refinerOpts, refine.WithQueryTermsAllowed())
	}

	sess := session.New(pipe,
		session.WithInput(cmd.InOrStdin()),
		session.WithOutput(cmd.OutOrStdout()),
		session.WithStyles(ui.GetStyles(noColor)),
		session.WithMaxDepth(maxDepth),
		session.WithSearchOptions(searchOptions(cfg, limit, nil, nil)),
		session.WithRenderOptions(renderOpts),
		session.WithRefiner(refine.New(refinerOpts...)),
		session.WithLogger(slog.Default()),
		session.WithExportEnding(),
	)

	report, err := sess.Run(cmd.Context(), query)
	if errors.Is(err, session.ErrQuit) {
		return nil
	}
	if err != nil {
		return err
	}

	w := output.New(cmd.OutOrStdout())
	w.Newline()
	w.FetchSummary(report)
	w.Results(report.Results)
	return nil
}
