// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
	CacheBackendNone   = "none"

	ProfilesBackendPostgres      = "postgres"
	ProfilesBackendElasticsearch = "elasticsearch"
	ProfilesBackendNone          = "none"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on
// top, expands ${VAR} placeholders and applies env overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // env overlay is optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory to the first go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			v.Set(key, os.ExpandEnv(strVal))
		}
	}
}

// overrideEmptyConfig fills provider credentials from their conventional
// environment variable names when the YAML left them empty.
func overrideEmptyConfig(cfg *Config) {
	setIfEmpty(&cfg.Providers.Email.APIKey, "HUNTER_API_KEY")
	setIfEmpty(&cfg.Providers.Phone.APIKey, "NUMVERIFY_API_KEY")
	setIfEmpty(&cfg.Providers.Address.AuthID, "SMARTY_AUTH_ID")
	setIfEmpty(&cfg.Providers.Address.AuthToken, "SMARTY_AUTH_TOKEN")
	setIfEmpty(&cfg.Providers.PeopleSearch.APIKey, "WEBSCRAPING_AI_API_KEY")

	setIfEmpty(&cfg.Database.Postgres.User, "DB_USER")
	setIfEmpty(&cfg.Database.Postgres.Password, "DB_PASSWORD")
	setIfEmpty(&cfg.Database.Redis.Password, "REDIS_PASSWORD")
	setIfEmpty(&cfg.Database.Elasticsearch.Username, "ES_USERNAME")
	setIfEmpty(&cfg.Database.Elasticsearch.Password, "ES_PASSWORD")
}

func setIfEmpty(field *string, envKey string) {
	if *field != "" {
		return
	}
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "people-search"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	defaultProvider(&cfg.Providers.Email, "https://api.hunter.io/v2/")
	defaultProvider(&cfg.Providers.Phone, "http://apilayer.net/api/")
	defaultProvider(&cfg.Providers.Address, "https://us-street.api.smarty.com/")
	defaultProvider(&cfg.Providers.PeopleSearch, "https://api.webscraping.ai/")

	if cfg.Search.ProviderTimeout == 0 {
		cfg.Search.ProviderTimeout = 10000
	}
	if cfg.Search.CacheBackend == "" {
		cfg.Search.CacheBackend = CacheBackendMemory
	}
	if cfg.Search.CacheTTL == 0 {
		cfg.Search.CacheTTL = 900000
	}
	if cfg.Search.CacheSize == 0 {
		cfg.Search.CacheSize = 1024
	}

	if cfg.Profiles.Backend == "" {
		cfg.Profiles.Backend = ProfilesBackendNone
	}
	if cfg.Profiles.Index == "" {
		cfg.Profiles.Index = "people_profiles"
	}
	if cfg.Profiles.Limit == 0 {
		cfg.Profiles.Limit = 50
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = 1
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

func defaultProvider(p *ProviderConfig, baseURL string) {
	if p.BaseURL == "" {
		p.BaseURL = baseURL
	}
	if !strings.HasSuffix(p.BaseURL, "/") {
		p.BaseURL += "/"
	}
	if p.Timeout == 0 {
		p.Timeout = 10000
	}
	if p.Burst == 0 {
		p.Burst = 1
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}

	if cfg.Search.HistoryEnabled {
		if err := requirePostgres(cfg.Database.Postgres, "search.history_enabled is set"); err != nil {
			return err
		}
	}

	switch cfg.Profiles.Backend {
	case ProfilesBackendPostgres:
		if err := requirePostgres(cfg.Database.Postgres, "profiles.backend is postgres"); err != nil {
			return err
		}
	case ProfilesBackendElasticsearch:
		if len(cfg.Database.Elasticsearch.Addresses) == 0 {
			return fmt.Errorf("database.elasticsearch.addresses is required when profiles.backend is elasticsearch")
		}
	case ProfilesBackendNone:
	default:
		return fmt.Errorf("profiles.backend must be one of postgres, elasticsearch, none (got %q)", cfg.Profiles.Backend)
	}
	if cfg.Profiles.Limit < 0 {
		return fmt.Errorf("profiles.limit must not be negative")
	}

	switch cfg.Search.CacheBackend {
	case CacheBackendRedis:
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for the redis cache backend")
		}
	case CacheBackendMemory, CacheBackendNone:
	default:
		return fmt.Errorf("search.cache_backend must be one of redis, memory, none (got %q)", cfg.Search.CacheBackend)
	}

	if cfg.Search.ProviderTimeout < 0 {
		return fmt.Errorf("search.provider_timeout must not be negative")
	}

	return nil
}

func requirePostgres(pg PostgresConfig, reason string) error {
	if pg.Host == "" {
		return fmt.Errorf("database.postgres.host is required when %s", reason)
	}
	if pg.Database == "" {
		return fmt.Errorf("database.postgres.database is required when %s", reason)
	}
	if pg.User == "" {
		return fmt.Errorf("database.postgres.user is required when %s", reason)
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
