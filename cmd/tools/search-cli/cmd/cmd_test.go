package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"people-search/configs"
	"people-search/internal/models"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	root.SetArgs(args)
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(&bytes.Buffer{})
	err := root.Execute()
	return buf.String(), err
}

// ==========================
// validate
// ==========================

func TestValidateCmd_Valid(t *testing.T) {
	out, err := run(t, "validate", "--type", "phone", "--phone", "(212) 555-0123")

	require.NoError(t, err)
	assert.Contains(t, out, "API Compliance Report for PHONE Search")
	assert.Contains(t, out, "API Format: +12125550123")
}

func TestValidateCmd_InvalidJSON(t *testing.T) {
	out, err := run(t, "validate", "--type", "email", "--email", "john@@example.com", "--format", "json")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_FORMAT")

	var result models.ValidationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.IsValid)
}

func TestValidateCmd_RequiresType(t *testing.T) {
	_, err := run(t, "validate", "--email", "jane@example.com")
	assert.Error(t, err)
}

func TestValidateCmd_UnknownFormat(t *testing.T) {
	_, err := run(t, "validate", "--type", "email", "--email", "jane@example.com", "--format", "yaml")
	assert.ErrorContains(t, err, "unknown format")
}

// ==========================
// search
// ==========================

func writeTestConfig(t *testing.T, emailURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := fmt.Sprintf(`
app:
  name: people-search
providers:
  email:
    base_url: %s/
    api_key: test-key
    timeout: 2000
search:
  provider_timeout: 2000
  cache_backend: none
`, emailURL)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestSearchCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"email":"jane@example.com","first_name":"Jane","last_name":"Doe"}}`))
	}))
	defer srv.Close()
	cfgPath := writeTestConfig(t, srv.URL)

	out, err := run(t, "search", "--config", cfgPath, "--type", "email", "--email", "Jane@Example.com", "--search-id", "srch_cli")

	require.NoError(t, err)
	assert.Contains(t, out, "Search srch_cli (email)")
	assert.Contains(t, out, "Strategy: Hunter.io Email API\n")
	assert.Contains(t, out, "Confidence: 25")
	assert.Contains(t, out, "email=jane@example.com")

	jsonOut, err := run(t, "search", "--config", cfgPath, "--type", "email", "--email", "jane@example.com", "-f", "json")
	require.NoError(t, err)
	var result models.EnhancedResult
	require.NoError(t, json.Unmarshal([]byte(jsonOut), &result))
	assert.Equal(t, "Hunter.io Email API", result.Strategy)
}

func TestSearchCmd_InvalidQuery(t *testing.T) {
	cfgPath := writeTestConfig(t, "http://127.0.0.1:1")

	_, err := run(t, "search", "--config", cfgPath, "--type", "address", "--address", "Main Street")

	assert.ErrorContains(t, err, "street number")
}

// ==========================
// profiles
// ==========================

func writeDirectoryConfig(t *testing.T, esURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := fmt.Sprintf(`
app:
  name: people-search
database:
  elasticsearch:
    addresses:
      - %s
profiles:
  backend: elasticsearch
  index: people_profiles
`, esURL)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestProfilesCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/_search"):
			_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"7","_source":{"firstName":"Jane","lastName":"Doe","age":41,"city":"Reno","state":"NV"}}]}}`))
		case r.URL.Path == "/people_profiles/_doc/7":
			_, _ = w.Write([]byte(`{"_id":"7","found":true,"_source":{"firstName":"Jane","lastName":"Doe","phoneNumbers":["7755550123"]}}`))
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer srv.Close()
	cfgPath := writeDirectoryConfig(t, srv.URL)

	out, err := run(t, "profiles", "lookup", "--config", cfgPath, "--type", "name", "--last-name", "Doe")
	require.NoError(t, err)
	assert.Contains(t, out, "1 profile(s)")
	assert.Contains(t, out, "[7] Jane Doe, 41 - Reno, NV")

	out, err = run(t, "profiles", "get", "7", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "phones: 7755550123")

	_, err = run(t, "profiles", "lookup", "--config", cfgPath, "--type", "comprehensive", "--email", "a@b.co")
	assert.ErrorContains(t, err, "invalid search type")
}

func TestProfilesCmd_Disabled(t *testing.T) {
	cfgPath := writeTestConfig(t, "http://127.0.0.1:1")

	_, err := run(t, "profiles", "get", "7", "--config", cfgPath)

	assert.ErrorContains(t, err, "profile directory disabled")
}

// ==========================
// config / registry
// ==========================

func TestConfigInitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "config.yaml")

	_, err := run(t, "config", "init", "--path", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, configs.DefaultConfig, string(data))

	_, err = run(t, "config", "init", "--path", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, "config", "init", "--path", path, "--force")
	assert.NoError(t, err)
}

func TestRegistryValidateCmd(t *testing.T) {
	out, err := run(t, "registry", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "embedded registry")

	bad := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"activities":[]}`), 0o600))
	_, err = run(t, "registry", "validate", "--path", bad)
	assert.ErrorContains(t, err, "no activities")
}
