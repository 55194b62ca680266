// internal/workers/search/validate-search-input/config.go
package validatesearchinput

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
