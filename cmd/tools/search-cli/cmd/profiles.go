// cmd/tools/search-cli/cmd/profiles.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"people-search/internal/app"
	"people-search/internal/common/config"
	"people-search/internal/search/profiles"
)

func newProfilesCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Query the local profile directory",
	}
	cmd.AddCommand(newProfilesLookupCmd(global))
	cmd.AddCommand(newProfilesGetCmd(global))
	return cmd
}

func newProfilesLookupCmd(global *globalOptions) *cobra.Command {
	var q queryFlags

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Match directory profiles with a name, phone, address or email query",
		Example: `  search-cli profiles lookup --type name --last-name Doe --state NV
  search-cli profiles lookup --type phone --phone 555-0123 -f json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := global.checkFormat(); err != nil {
				return err
			}
			return withDirectory(cmd.Context(), global, func(d *profiles.Directory) error {
				query := q.query()
				result, err := d.Lookup(cmd.Context(), query.Type, q.fields)
				if err != nil {
					return err
				}
				if global.format == formatJSON {
					return writeJSON(cmd.OutOrStdout(), result)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d profile(s)\n", result.Total)
				for _, p := range result.Results {
					renderProfileLine(cmd.OutOrStdout(), p)
				}
				return nil
			})
		},
	}

	q.register(cmd)
	return cmd
}

func newProfilesGetCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one directory profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := global.checkFormat(); err != nil {
				return err
			}
			return withDirectory(cmd.Context(), global, func(d *profiles.Directory) error {
				p, err := d.Profile(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if global.format == formatJSON {
					return writeJSON(cmd.OutOrStdout(), p)
				}
				renderProfileLine(cmd.OutOrStdout(), *p)
				if len(p.PhoneNumbers) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "    phones: %s\n", strings.Join(p.PhoneNumbers, ", "))
				}
				if len(p.EmailAddresses) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "    emails: %s\n", strings.Join(p.EmailAddresses, ", "))
				}
				for _, r := range p.Relatives {
					fmt.Fprintf(cmd.OutOrStdout(), "    relative: %s (%s)\n", r.Name, r.Relationship)
				}
				return nil
			})
		},
	}
}

func withDirectory(ctx context.Context, global *globalOptions, fn func(*profiles.Directory) error) error {
	cfg, err := global.loadConfig()
	if err != nil {
		return err
	}
	cfg.Search.HistoryEnabled = false
	cfg.Search.CacheBackend = config.CacheBackendNone

	core, err := app.Build(ctx, cfg, nil, global.logger())
	if err != nil {
		return err
	}
	defer core.Close()

	if core.Profiles == nil {
		return fmt.Errorf("profile directory disabled (set profiles.backend)")
	}
	return fn(core.Profiles)
}

func renderProfileLine(out io.Writer, p profiles.Profile) {
	name := strings.Join(strings.Fields(p.FirstName+" "+p.MiddleName+" "+p.LastName), " ")
	fmt.Fprintf(out, "[%s] %s", p.ID, name)
	if p.Age > 0 {
		fmt.Fprintf(out, ", %d", p.Age)
	}
	if place := strings.Trim(p.City+", "+p.State, ", "); place != "" {
		fmt.Fprintf(out, " - %s", place)
	}
	fmt.Fprintln(out)
}
