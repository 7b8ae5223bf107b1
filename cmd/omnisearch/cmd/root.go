// Package cmd provides the CLI commands for omnisearch.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/omnisearch-dev/omnisearch/internal/config"
	"github.com/omnisearch-dev/omnisearch/internal/logging"
	"github.com/omnisearch-dev/omnisearch/pkg/version"
)

var (
	debugMode      bool
	noColor        bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the omnisearch CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "omnisearch",
		Short: "Aggregate web search across multiple providers",
		Long: `Omnisearch fans a query out across configured search providers
(Brave, DuckDuckGo, SerpAPI, RSS feeds), deduplicates and scores the
merged results, and renders them as Markdown or JSON.

Run 'omnisearch search <query>' for a one-shot search, or
'omnisearch interactive <query>' for an iterative refinement session.`,
		Version: version.Version,
	}

	cmd.SetVersionTemplate("omnisearch version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.omnisearch/logs/")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRun = stopLogging

	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newInteractiveCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging wires slog before any command runs. Debug mode mirrors
// the log stream to stderr.
func startLogging(_ *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	if debugMode {
		cfg = logging.DebugConfig()
	}

	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		// Logging must never block a search; fall back to discard.
		fmt.Fprintf(os.Stderr, "warning: file logging unavailable: %v\n", err)
		return nil
	}
	slog.SetDefault(logger)
	loggingCleanup = cleanup
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) {
	if loggingCleanup != nil {
		loggingCleanup()
	}
}

// loadConfig loads the effective configuration for the working
// directory.
func loadConfig() (*config.Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.Load(dir)
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
