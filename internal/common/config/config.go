// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig               `mapstructure:"app"`
	Camunda   CamundaConfig           `mapstructure:"camunda"`
	Database  DatabaseConfig          `mapstructure:"database"`
	Workers   map[string]WorkerConfig `mapstructure:"workers"`
	Providers ProvidersConfig         `mapstructure:"providers"`
	Search    SearchConfig            `mapstructure:"search"`
	Server    ServerConfig            `mapstructure:"server"`
	Logging   LoggingConfig           `mapstructure:"logging"`
	Tracing   TracingConfig           `mapstructure:"tracing"`
	Registry  RegistryConfig          `mapstructure:"registry"`
	Profiles  ProfilesConfig          `mapstructure:"profiles"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Search Configuration ---

// ProviderConfig describes one upstream data provider.
type ProviderConfig struct {
	BaseURL   string  `mapstructure:"base_url"`
	APIKey    string  `mapstructure:"api_key"`
	AuthID    string  `mapstructure:"auth_id"`
	AuthToken string  `mapstructure:"auth_token"`
	Timeout   int     `mapstructure:"timeout"`    // milliseconds
	RateLimit float64 `mapstructure:"rate_limit"` // requests per second, 0 = unlimited
	Burst     int     `mapstructure:"burst"`
}

// HasCredentials reports whether a key or an id/token pair is configured.
func (p ProviderConfig) HasCredentials() bool {
	return p.APIKey != "" || (p.AuthID != "" && p.AuthToken != "")
}

// ProvidersConfig holds one entry per upstream. Address standardization
// (Smarty) is shared by the address adapter and the name adapter.
type ProvidersConfig struct {
	Email        ProviderConfig `mapstructure:"email"`
	Phone        ProviderConfig `mapstructure:"phone"`
	Address      ProviderConfig `mapstructure:"address"`
	PeopleSearch ProviderConfig `mapstructure:"people_search"`
}

// SearchConfig tunes the orchestrator.
type SearchConfig struct {
	ProviderTimeout int    `mapstructure:"provider_timeout"` // milliseconds
	CacheBackend    string `mapstructure:"cache_backend"`    // redis | memory | none
	CacheTTL        int    `mapstructure:"cache_ttl"`        // milliseconds
	CacheSize       int    `mapstructure:"cache_size"`
	HistoryEnabled  bool   `mapstructure:"history_enabled"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int `mapstructure:"write_timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}

// ProfilesConfig selects where the people directory lives.
type ProfilesConfig struct {
	Backend string `mapstructure:"backend"` // postgres | elasticsearch | none
	Index   string `mapstructure:"index"`   // elasticsearch only
	Limit   int    `mapstructure:"limit"`
}

// RegistryConfig points at the activity registry. An empty path uses the
// embedded default.
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}
