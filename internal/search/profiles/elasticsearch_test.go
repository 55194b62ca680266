package profiles

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"people-search/internal/common/config"
	"people-search/internal/common/database"
)

// fakeCluster answers the handful of endpoints the store uses.
type fakeCluster struct {
	mu          sync.Mutex
	indexExists bool
	created     bool
	lastSearch  map[string]interface{}
	lastSize    string
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodHead && r.URL.Path == "/people_profiles":
		if !f.indexExists {
			w.WriteHeader(http.StatusNotFound)
		}
	case r.Method == http.MethodPut && r.URL.Path == "/people_profiles":
		f.created = true
		_, _ = io.WriteString(w, `{"acknowledged":true,"index":"people_profiles"}`)
	case strings.HasSuffix(r.URL.Path, "/_search"):
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &f.lastSearch)
		f.lastSize = r.URL.Query().Get("size")
		_, _ = io.WriteString(w, `{"hits":{"total":{"value":1},"hits":[
			{"_id":"p-1","_source":{"firstName":"Jane","lastName":"Doe","state":"NV",
			 "phoneNumbers":["7755550123"],"relatives":[{"name":"John Doe","relationship":"Spouse"}]}}]}}`)
	case r.URL.Path == "/people_profiles/_doc/p-1":
		_, _ = io.WriteString(w, `{"_id":"p-1","found":true,"_source":{"firstName":"Jane","lastName":"Doe"}}`)
	case strings.HasPrefix(r.URL.Path, "/people_profiles/_doc/"):
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"_id":"missing","found":false}`)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func newESStore(t *testing.T, cluster http.Handler) *ElasticsearchStore {
	server := httptest.NewServer(cluster)
	t.Cleanup(server.Close)

	client, err := database.NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return NewElasticsearchStore(client, "people_profiles")
}

func TestElasticsearchStore_Search(t *testing.T) {
	cluster := &fakeCluster{}
	store := newESStore(t, cluster)

	found, err := store.Search(context.Background(), Filter{LastName: "doe", State: "NV"}, 50)

	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "p-1", found[0].ID)
	assert.Equal(t, "Jane", found[0].FirstName)
	assert.Equal(t, []string{"7755550123"}, found[0].PhoneNumbers)
	assert.Equal(t, "Spouse", found[0].Relatives[0].Relationship)

	assert.Equal(t, "50", cluster.lastSize)
	encoded, err := json.Marshal(cluster.lastSearch)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"lastName":{"case_insensitive":true,"value":"*doe*"}`)
	assert.Contains(t, string(encoded), `"term":{"state":"NV"}`)
}

func TestElasticsearchStore_SearchClusterError(t *testing.T) {
	store := newESStore(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := store.Search(context.Background(), Filter{}, 50)

	assert.ErrorContains(t, err, "search people_profiles")
}

func TestElasticsearchStore_Get(t *testing.T) {
	store := newESStore(t, &fakeCluster{})

	p, err := store.Get(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, "p-1", p.ID)
	assert.Equal(t, "Doe", p.LastName)

	_, err = store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestElasticsearchStore_EnsureIndex(t *testing.T) {
	cluster := &fakeCluster{}
	store := newESStore(t, cluster)

	require.NoError(t, store.EnsureIndex(context.Background()))
	assert.True(t, cluster.created)

	cluster.created = false
	cluster.indexExists = true
	require.NoError(t, store.EnsureIndex(context.Background()))
	assert.False(t, cluster.created)
}

func TestBuildSearchQuery(t *testing.T) {
	q := buildSearchQuery(Filter{Address: "12 Main*"})
	encoded, err := json.Marshal(q)
	require.NoError(t, err)

	assert.Contains(t, string(encoded), `"minimum_should_match":1`)
	assert.Contains(t, string(encoded), `"currentAddress":{"case_insensitive":true,"value":"*12 Main\\**"}`)
	assert.Contains(t, string(encoded), `"addressHistory"`)

	all, err := json.Marshal(buildSearchQuery(Filter{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":{"match_all":{}}}`, string(all))
}
