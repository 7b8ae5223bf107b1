package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/omnisearch-dev/omnisearch/internal/config"
	"github.com/omnisearch-dev/omnisearch/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigInitCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Show prints the merged configuration: defaults, user config,
project config, and environment overrides, in that precedence order.
API keys are redacted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			for i := range cfg.Providers {
				if cfg.Providers[i].APIKey != "" {
					cfg.Providers[i].APIKey = "<redacted>"
				}
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default .omnisearch.yaml to the current directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			path := filepath.Join(dir, ".omnisearch.yaml")

			w := output.New(cmd.OutOrStdout())
			if _, err := os.Stat(path); err == nil && !force {
				w.Warningf("%s already exists (use --force to overwrite)", path)
				return nil
			}

			if err := config.NewConfig().Save(path); err != nil {
				return err
			}
			w.Successf("wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}
