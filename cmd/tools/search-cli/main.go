// cmd/tools/search-cli/main.go

// Package main provides the entry point for the search-cli operator tool.
package main

import (
	"os"

	"people-search/cmd/tools/search-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
