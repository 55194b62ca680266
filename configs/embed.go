// configs/embed.go

// Package configs embeds the default service configuration and the
// activity registry so every binary ships with them.
package configs

import _ "embed"

// DefaultConfig is the reference config.yaml. search-cli writes it out with
// `search-cli config init`.
//
//go:embed config.yaml
var DefaultConfig string

// ActivityRegistry holds the input and output schemas of every job worker
// and HTTP request body. Used when registry.path is empty.
//
//go:embed activity-registry.json
var ActivityRegistry []byte
