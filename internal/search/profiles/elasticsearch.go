// internal/search/profiles/elasticsearch.go
package profiles

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"people-search/internal/common/database"
)

const BackendElasticsearch = "elasticsearch"

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// indexMapping keeps the matched fields as keywords so wildcard queries
// see whole values.
var indexMapping = map[string]interface{}{
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"firstName":      map[string]string{"type": "keyword"},
			"lastName":       map[string]string{"type": "keyword"},
			"city":           map[string]string{"type": "keyword"},
			"state":          map[string]string{"type": "keyword"},
			"currentAddress": map[string]string{"type": "keyword"},
			"addressHistory": map[string]string{"type": "keyword"},
			"phoneNumbers":   map[string]string{"type": "keyword"},
			"emailAddresses": map[string]string{"type": "keyword"},
			"createdAt":      map[string]string{"type": "date"},
			"updatedAt":      map[string]string{"type": "date"},
		},
	},
}

// ElasticsearchStore reads profile documents from one index. Document ids
// are profile ids.
type ElasticsearchStore struct {
	client *database.ElasticsearchClient
	index  string
}

func NewElasticsearchStore(client *database.ElasticsearchClient, index string) *ElasticsearchStore {
	return &ElasticsearchStore{client: client, index: index}
}

func (s *ElasticsearchStore) Backend() string { return BackendElasticsearch }

// EnsureIndex creates the index with its mapping when missing.
func (s *ElasticsearchStore) EnsureIndex(ctx context.Context) error {
	exists, err := esapi.IndicesExistsRequest{Index: []string{s.index}}.Do(ctx, s.client.Client)
	if err != nil {
		return fmt.Errorf("check index %s: %w", s.index, err)
	}
	exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		return nil
	}
	if exists.StatusCode != http.StatusNotFound {
		return fmt.Errorf("check index %s: %s", s.index, exists.Status())
	}

	body, err := json.Marshal(indexMapping)
	if err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}
	res, err := esapi.IndicesCreateRequest{Index: s.index, Body: bytes.NewReader(body)}.Do(ctx, s.client.Client)
	if err != nil {
		return fmt.Errorf("create index %s: %w", s.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", s.index, res.Status())
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []document `json:"hits"`
	} `json:"hits"`
}

type document struct {
	ID     string  `json:"_id"`
	Found  bool    `json:"found"`
	Source Profile `json:"_source"`
}

func (d document) profile() Profile {
	p := d.Source
	p.ID = d.ID
	return p
}

func (s *ElasticsearchStore) Search(ctx context.Context, f Filter, limit int) ([]Profile, error) {
	body, err := json.Marshal(buildSearchQuery(f))
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
		Size:  &limit,
	}
	res, err := req.Do(ctx, s.client.Client)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", s.index, res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	found := make([]Profile, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		found = append(found, hit.profile())
	}
	return found, nil
}

func (s *ElasticsearchStore) Get(ctx context.Context, id string) (*Profile, error) {
	res, err := esapi.GetRequest{Index: s.index, DocumentID: id}.Do(ctx, s.client.Client)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", s.index, id, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if res.IsError() {
		return nil, fmt.Errorf("get %s/%s: %s", s.index, id, res.Status())
	}

	var doc document
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if !doc.Found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	p := doc.profile()
	return &p, nil
}

// buildSearchQuery mirrors the SQL criteria: case-insensitive substring
// wildcards, an exact state term, and address over current or past
// addresses.
func buildSearchQuery(f Filter) map[string]interface{} {
	filterClauses := []interface{}{}

	wildcard := func(field, value string) map[string]interface{} {
		return map[string]interface{}{
			"wildcard": map[string]interface{}{
				field: map[string]interface{}{
					"value":            "*" + wildcardEscaper.Replace(value) + "*",
					"case_insensitive": true,
				},
			},
		}
	}

	if f.FirstName != "" {
		filterClauses = append(filterClauses, wildcard("firstName", f.FirstName))
	}
	if f.LastName != "" {
		filterClauses = append(filterClauses, wildcard("lastName", f.LastName))
	}
	if f.City != "" {
		filterClauses = append(filterClauses, wildcard("city", f.City))
	}
	if f.State != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"state": f.State},
		})
	}
	if f.PhoneNumber != "" {
		filterClauses = append(filterClauses, wildcard("phoneNumbers", f.PhoneNumber))
	}
	if f.Email != "" {
		filterClauses = append(filterClauses, wildcard("emailAddresses", f.Email))
	}
	if f.Address != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					wildcard("currentAddress", f.Address),
					wildcard("addressHistory", f.Address),
				},
				"minimum_should_match": 1,
			},
		})
	}

	if len(filterClauses) == 0 {
		return map[string]interface{}{
			"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		}
	}
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"filter": filterClauses},
		},
	}
}
