package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: people-search
providers:
  email:
    base_url: https://hunter.example.com/v2
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://hunter.example.com/v2/", cfg.Providers.Email.BaseURL)
	assert.Equal(t, "https://us-street.api.smarty.com/", cfg.Providers.Address.BaseURL)
	assert.Equal(t, 10000, cfg.Search.ProviderTimeout)
	assert.Equal(t, CacheBackendMemory, cfg.Search.CacheBackend)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, ProfilesBackendNone, cfg.Profiles.Backend)
	assert.Equal(t, "people_profiles", cfg.Profiles.Index)
	assert.Equal(t, 50, cfg.Profiles.Limit)
	assert.Equal(t, 10*time.Second, GetDuration(cfg.Search.ProviderTimeout))
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	t.Setenv("HUNTER_API_KEY", "hunter-key")
	t.Setenv("SMARTY_AUTH_ID", "smarty-id")
	t.Setenv("SMARTY_AUTH_TOKEN", "smarty-token")
	t.Setenv("TEST_NUMVERIFY_KEY", "numverify-key")

	path := writeConfig(t, `
providers:
  phone:
    api_key: ${TEST_NUMVERIFY_KEY}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "hunter-key", cfg.Providers.Email.APIKey)
	assert.Equal(t, "numverify-key", cfg.Providers.Phone.APIKey)
	assert.True(t, cfg.Providers.Address.HasCredentials())
	assert.False(t, cfg.Providers.PeopleSearch.HasCredentials())
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "camunda without broker",
			body: "camunda:\n  enabled: true\n",
			want: "camunda.broker_address",
		},
		{
			name: "history without postgres",
			body: "search:\n  history_enabled: true\n",
			want: "database.postgres.host",
		},
		{
			name: "redis cache without address",
			body: "search:\n  cache_backend: redis\n",
			want: "database.redis.address",
		},
		{
			name: "unknown cache backend",
			body: "search:\n  cache_backend: memcached\n",
			want: "search.cache_backend",
		},
		{
			name: "postgres directory without host",
			body: "profiles:\n  backend: postgres\n",
			want: "profiles.backend is postgres",
		},
		{
			name: "elasticsearch directory without addresses",
			body: "profiles:\n  backend: elasticsearch\n",
			want: "database.elasticsearch.addresses",
		},
		{
			name: "unknown directory backend",
			body: "profiles:\n  backend: mongo\n",
			want: "profiles.backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFromFile_ElasticsearchDirectory(t *testing.T) {
	t.Setenv("ES_PASSWORD", "es-secret")

	path := writeConfig(t, `
database:
  elasticsearch:
    addresses:
      - http://es-1:9200
      - http://es-2:9200
    username: directory
profiles:
  backend: elasticsearch
  index: profiles_v2
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"http://es-1:9200", "http://es-2:9200"}, cfg.Database.Elasticsearch.Addresses)
	assert.Equal(t, "es-secret", cfg.Database.Elasticsearch.Password)
	assert.Equal(t, "profiles_v2", cfg.Profiles.Index)
	assert.Equal(t, 50, cfg.Profiles.Limit)
}

func TestWorkerConfig(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"perform-people-search": {Enabled: false},
	}}
	applyDefaults(cfg)

	assert.False(t, IsWorkerEnabled(cfg, "perform-people-search"))
	assert.True(t, IsWorkerEnabled(cfg, "validate-search-input"))
	assert.Equal(t, 3, GetWorkerConfig(cfg, "perform-people-search").MaxRetries)
	assert.Equal(t, 5, GetWorkerConfig(cfg, "unknown").MaxJobsActive)
}
