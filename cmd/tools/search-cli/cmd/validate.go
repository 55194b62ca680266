// cmd/tools/search-cli/cmd/validate.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"people-search/internal/search/validator"
)

func newValidateCmd(global *globalOptions) *cobra.Command {
	var q queryFlags

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate and normalize a query without searching",
		Example: `  search-cli validate --type phone --phone "(212) 555-0123"
  search-cli validate --type address --address "123 main st" --city reno --state nv --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := global.checkFormat(); err != nil {
				return err
			}

			query := q.query()
			result := validator.Validate(query)

			if global.format == formatJSON {
				if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), validator.RenderReport(query.Type, result))
			}

			if !result.IsValid {
				return fmt.Errorf("query is invalid: %s", result.Code)
			}
			return nil
		},
	}

	q.register(cmd)
	return cmd
}
