// cmd/tools/search-cli/cmd/registry.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"people-search/internal/common/validation"
	"people-search/pkg/registry"
)

func newRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the activity registry",
	}
	cmd.AddCommand(newRegistryValidateCmd())
	return cmd
}

func newRegistryValidateCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the registry entries and compile their input schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.Load(path)
			if err != nil {
				return err
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			if _, err := validation.NewSchemaValidator(reg); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}

			source := path
			if source == "" {
				source = "embedded registry"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed: %s (%d activities)\n", source, len(reg.Activities))
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Registry file (default: embedded registry)")
	return cmd
}
