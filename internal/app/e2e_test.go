package app_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"people-search/internal/api"
	"people-search/internal/app"
	"people-search/internal/common/config"
	"people-search/internal/common/logger"
	"people-search/internal/models"
	"people-search/internal/search/diagnostics"
)

// ==========================
// Fake upstreams
// ==========================

// upstream serves all four providers from one server.
type upstream struct {
	calls         map[string]*int32
	phoneFailures int32
}

func newUpstream(t *testing.T) (*upstream, *httptest.Server) {
	u := &upstream{calls: map[string]*int32{}}
	for _, p := range []string{"email", "phone", "address", "people"} {
		u.calls[p] = new(int32)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/email-finder", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(u.calls["email"], 1)
		writeBody(w, http.StatusOK, `{"data":{"email":"`+r.URL.Query().Get("email")+`","first_name":"Jane","last_name":"Doe","confidence":90}}`)
	})
	mux.HandleFunc("/validate", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(u.calls["phone"], 1)
		if atomic.AddInt32(&u.phoneFailures, -1) >= 0 {
			writeBody(w, http.StatusServiceUnavailable, `{"error":"busy"}`)
			return
		}
		writeBody(w, http.StatusOK, `{"valid":true,"number":"`+r.URL.Query().Get("number")+`","international_format":"+`+r.URL.Query().Get("number")+`","line_type":"mobile"}`)
	})
	mux.HandleFunc("/street-address", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(u.calls["address"], 1)
		writeBody(w, http.StatusOK, `[{
			"delivery_line_1": "123 Main St",
			"last_line": "Reno NV 89501-1234",
			"components": {"city_name": "Reno", "state_abbreviation": "NV", "zipcode": "89501", "plus4_code": "1234"},
			"metadata": {"county_name": "Washoe", "precision": "Zip9"}
		}]`)
	})
	mux.HandleFunc("/api/v1/search", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(u.calls["people"], 1)
		writeBody(w, http.StatusOK, `{"results":[
			{"title":"Jane Doe - Reno, NV","link":"https://example.com/jane"},
			{"title":"Jane A. Doe","link":"https://example.com/jane-a"}
		]}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return u, srv
}

func (u *upstream) count(provider string) int32 {
	return atomic.LoadInt32(u.calls[provider])
}

func writeBody(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func newService(t *testing.T) (*upstream, http.Handler) {
	t.Helper()
	u, srv := newUpstream(t)

	provider := config.ProviderConfig{
		BaseURL:   srv.URL + "/",
		APIKey:    "key",
		AuthID:    "id",
		AuthToken: "token",
		Timeout:   2000,
	}
	cfg := &config.Config{
		App: config.AppConfig{Name: "people-search"},
		Providers: config.ProvidersConfig{
			Email:        provider,
			Phone:        provider,
			Address:      provider,
			PeopleSearch: provider,
		},
		Search: config.SearchConfig{
			ProviderTimeout: 2000,
			CacheBackend:    config.CacheBackendMemory,
			CacheTTL:        60000,
			CacheSize:       16,
		},
	}

	log := logger.NewTestLogger(t)
	core, err := app.Build(context.Background(), cfg, nil, log)
	require.NoError(t, err)
	t.Cleanup(core.Close)

	return u, api.NewServer(api.Options{
		Searcher:    core.Orchestrator,
		Schema:      core.Schema,
		Diagnostics: core.Diagnostics(),
		Ready:       core.Ready,
		Logger:      log,
	}).Handler()
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) models.EnhancedResult {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res models.EnhancedResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

// ==========================
// End to end
// ==========================

const comprehensiveBody = `{
	"searchType": "comprehensive",
	"searchQuery": {
		"email": "Jane@Example.com",
		"phoneNumber": "(775) 555-0123",
		"firstName": "jane",
		"lastName": "doe",
		"city": "reno",
		"state": "nv"
	}
}`

func TestE2E_ComprehensiveSearchFusesEveryProvider(t *testing.T) {
	u, h := newService(t)

	res := decodeResult(t, post(t, h, "/api/search", comprehensiveBody))

	assert.Equal(t, models.SearchTypeComprehensive, res.SearchType)
	assert.Equal(t, "Comprehensive People Search", res.Strategy)
	assert.False(t, res.Fallback)
	assert.Equal(t, "Multiple APIs", res.Result.Source)
	assert.Equal(t, []string{"Hunter.io Email API", "NumVerify Phone API", "Name Search API"}, res.Result.Metadata.SourcesUsed)

	require.NotNil(t, res.Result.Buckets)
	assert.Len(t, res.Result.Buckets.Emails, 1)
	assert.Len(t, res.Result.Buckets.Phones, 1)
	assert.Len(t, res.Result.Buckets.Addresses, 1)
	assert.Len(t, res.Result.Buckets.People, 2)
	assert.Equal(t, 5, res.Result.Metadata.TotalResults)
	assert.Equal(t, "jane@example.com", res.Result.Buckets.Emails[0]["email"])
	assert.Equal(t, "+17755550123", res.Result.Buckets.Phones[0]["phone"])
	assert.True(t, res.Enhanced.Verified)
	assert.Equal(t, 60, res.Enhanced.ConfidenceScore)

	for _, p := range []string{"email", "phone", "address", "people"} {
		assert.Equal(t, int32(1), u.count(p), p)
	}
}

func TestE2E_RepeatedSearchIsServedFromCache(t *testing.T) {
	u, h := newService(t)

	first := decodeResult(t, post(t, h, "/api/search", comprehensiveBody))
	second := decodeResult(t, post(t, h, "/api/search", comprehensiveBody))

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.NotEqual(t, first.SearchID, second.SearchID)
	assert.Equal(t, first.Result.Metadata.TotalResults, second.Result.Metadata.TotalResults)
	assert.Equal(t, int32(1), u.count("email"))
}

func TestE2E_PhoneFallsBackToComprehensive(t *testing.T) {
	u, h := newService(t)
	u.phoneFailures = 1

	res := decodeResult(t, post(t, h, "/api/search",
		`{"searchType":"phone","searchQuery":{"phoneNumber":"775-555-0123"}}`))

	assert.True(t, res.Fallback)
	assert.Equal(t, "Comprehensive People Search", res.Strategy)
	require.NotNil(t, res.Result.Buckets)
	assert.Len(t, res.Result.Buckets.Phones, 1)
	assert.Equal(t, int32(2), u.count("phone"))
	assert.Zero(t, u.count("email"))
}

func TestE2E_InvalidQueryNeverReachesProviders(t *testing.T) {
	u, h := newService(t)

	rec := post(t, h, "/api/search", `{"searchType":"address","searchQuery":{"address":"Main Street"}}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "SEARCH_VALIDATION_FAILED")
	assert.Zero(t, u.count("address"))
}

func TestE2E_DiagnosticsHealthy(t *testing.T) {
	_, h := newService(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/diagnostics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var report diagnostics.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, diagnostics.OverallHealthy, report.OverallStatus)
	assert.Equal(t, 4, report.Passed)
}
