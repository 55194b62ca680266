// cmd/tools/search-cli/cmd/diagnose.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"people-search/internal/app"
	"people-search/internal/search/diagnostics"
)

func newDiagnoseCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "diagnose",
		Short: "Check every configured provider and backing store",
		Long: `Run one connectivity check per provider. Providers without credentials
are skipped. Exits non-zero when the overall status is CRITICAL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := global.checkFormat(); err != nil {
				return err
			}
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}

			core, err := app.Build(cmd.Context(), cfg, nil, global.logger())
			if err != nil {
				return err
			}
			defer core.Close()

			report := core.Diagnostics().Run(cmd.Context())
			if global.format == formatJSON {
				if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), diagnostics.RenderText(report))
			}

			if report.OverallStatus == diagnostics.OverallCritical {
				return fmt.Errorf("diagnostics: %s", report.OverallStatus)
			}
			return nil
		},
	}
}
