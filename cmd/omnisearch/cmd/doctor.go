package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	oserrors "github.com/omnisearch-dev/omnisearch/internal/errors"
	"github.com/omnisearch-dev/omnisearch/internal/output"
)

func newDoctorCmd() *cobra.Command {
	var timeoutSeconds int

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the health of all enabled providers",
		Long: `Doctor runs each enabled provider's health check and reports its
status. A provider failing here will also fail during searches; fix
its credentials or connectivity before relying on it.`,
		Example: `  omnisearch doctor
  omnisearch doctor --timeout 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, time.Duration(timeoutSeconds)*time.Second)
		},
	}

	cmd.Flags().IntVar(&timeoutSeconds, "timeout", 10, "Per-provider health check timeout in seconds")

	return cmd
}

func runDoctor(cmd *cobra.Command, timeout time.Duration) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	providers, _, err := buildProviders(cfg)
	if err != nil {
		return err
	}

	w := output.New(cmd.OutOrStdout())
	healthy := 0
	for _, p := range providers {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		ok := p.HealthCheck(ctx)
		cancel()

		w.ProviderStatus(p.Name(), ok)
		if ok {
			healthy++
		}
	}

	w.Newline()
	if healthy == 0 {
		return oserrors.New(oserrors.ErrCodeProviderUnavailable, "no healthy providers", nil)
	}
	w.Successf("%d/%d providers healthy", healthy, len(providers))
	return nil
}
