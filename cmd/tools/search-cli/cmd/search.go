// cmd/tools/search-cli/cmd/search.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"people-search/internal/app"
	"people-search/internal/common/config"
	"people-search/internal/models"
)

func newSearchCmd(global *globalOptions) *cobra.Command {
	var (
		q        queryFlags
		searchID string
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run a search against the configured providers",
		Long: `Run one search through the same pipeline the service uses: validation,
the type-specific provider, one comprehensive fallback, scoring.`,
		Example: `  search-cli search --type email --email jane@example.com
  search-cli search --type name --first-name Jane --last-name Doe --city Reno --state NV -f json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := global.checkFormat(); err != nil {
				return err
			}
			return runSearch(cmd.Context(), cmd.OutOrStdout(), global, q.query(), searchID)
		},
	}

	q.register(cmd)
	cmd.Flags().StringVar(&searchID, "search-id", "", "Search ID to use (default: generated)")
	return cmd
}

func runSearch(ctx context.Context, out io.Writer, global *globalOptions, q models.Query, searchID string) error {
	cfg, err := global.loadConfig()
	if err != nil {
		return err
	}
	// The CLI never writes history or shares the service cache.
	cfg.Search.HistoryEnabled = false
	cfg.Search.CacheBackend = config.CacheBackendNone

	core, err := app.Build(ctx, cfg, nil, global.logger())
	if err != nil {
		return err
	}
	defer core.Close()

	result, err := core.Orchestrator.PerformSearch(ctx, searchID, q)
	if err != nil {
		return err
	}

	if global.format == formatJSON {
		return writeJSON(out, result)
	}
	renderResult(out, result)
	return nil
}

func renderResult(out io.Writer, r *models.EnhancedResult) {
	fmt.Fprintf(out, "Search %s (%s)\n", r.SearchID, r.SearchType)
	fmt.Fprintf(out, "Strategy: %s", r.Strategy)
	if r.Fallback {
		fmt.Fprint(out, " (fallback)")
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Confidence: %d  Verified: %t  Results: %d\n",
		r.Enhanced.ConfidenceScore, r.Enhanced.Verified, r.Result.Metadata.TotalResults)
	if len(r.Result.Metadata.SourcesUsed) > 0 {
		fmt.Fprintf(out, "Sources: %s\n", strings.Join(r.Result.Metadata.SourcesUsed, ", "))
	}
	for _, f := range r.Result.Metadata.SourcesFailed {
		fmt.Fprintf(out, "Failed: %s: %s\n", f.Source, f.Error)
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(out, "Warning: %s\n", w)
	}

	fmt.Fprintln(out)
	for i, item := range r.Result.Flatten() {
		fmt.Fprintf(out, "%2d. [%s]", i+1, item.Kind())
		for _, field := range []string{"name", "email", "phone", "address"} {
			if item.Has(field) {
				fmt.Fprintf(out, " %s=%v", field, item[field])
			}
		}
		fmt.Fprintln(out)
	}
}
