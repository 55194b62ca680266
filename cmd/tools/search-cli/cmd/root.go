// cmd/tools/search-cli/cmd/root.go

// Package cmd provides the search-cli commands.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"people-search/internal/common/config"
	"people-search/internal/common/logger"
	"people-search/internal/models"
)

const (
	formatText = "text"
	formatJSON = "json"
)

type globalOptions struct {
	configPath string
	logLevel   string
	format     string
}

// NewRootCmd creates the root command for search-cli.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "search-cli",
		Short: "Operator tool for the people search service",
		Long: `search-cli validates queries, runs searches, checks the upstream
providers and reads the profile directory using the same configuration as the search manager.

Configuration is read from configs/config.yaml (plus config.<env>.yaml and
environment overrides) unless --config points elsewhere.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a config file (default: configs/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVarP(&opts.format, "format", "f", formatText, "Output format: text, json")

	cmd.AddCommand(newValidateCmd(opts))
	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newDiagnoseCmd(opts))
	cmd.AddCommand(newProfilesCmd(opts))
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newRegistryCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *globalOptions) loadConfig() (*config.Config, error) {
	if o.configPath != "" {
		return config.LoadFromFile(o.configPath)
	}
	return config.Load()
}

// logger writes to stderr so stdout carries only command output.
func (o *globalOptions) logger() logger.Logger {
	return logger.NewStructured(o.logLevel, "console")
}

func (o *globalOptions) checkFormat() error {
	if o.format != formatText && o.format != formatJSON {
		return fmt.Errorf("unknown format %q (want text or json)", o.format)
	}
	return nil
}

// queryFlags are the flat query fields shared by validate and search.
type queryFlags struct {
	searchType string
	fields     models.QueryFields
}

func (q *queryFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&q.searchType, "type", "t", "", "Search type: name, phone, email, address, comprehensive")
	f.StringVar(&q.fields.Email, "email", "", "Email address")
	f.StringVar(&q.fields.PhoneNumber, "phone", "", "Phone number")
	f.StringVar(&q.fields.FirstName, "first-name", "", "First name")
	f.StringVar(&q.fields.LastName, "last-name", "", "Last name")
	f.StringVar(&q.fields.Address, "address", "", "Street address")
	f.StringVar(&q.fields.City, "city", "", "City")
	f.StringVar(&q.fields.State, "state", "", "State (two letters)")
	f.StringVar(&q.fields.ZipCode, "zip", "", "ZIP code")
	_ = cmd.MarkFlagRequired("type")
}

func (q *queryFlags) query() models.Query {
	return models.NewQuery(models.ParseSearchType(q.searchType), q.fields)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
