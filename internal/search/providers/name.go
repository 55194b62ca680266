// internal/search/providers/name.go
package providers

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"people-search/internal/common/config"
	apperrors "people-search/internal/common/errors"
	httpclient "people-search/internal/common/http"
	"people-search/internal/common/logger"
	"people-search/internal/models"
)

const (
	NameProviderName = "Name Search API"

	peopleSearchPath    = "api/v1/search"
	peopleSearchResults = "20"
)

// NameAdapter is a composite: it standardizes the locality on the address
// upstream, then runs a people search scoped to the standardized locality.
// Address items come first, person items after.
type NameAdapter struct {
	standardize *endpoint
	people      *endpoint
	auth        smartyAuth
	apiKey      string
	log         logger.Logger
}

// NewName wires the address upstream (addressCfg) and the people search
// upstream (peopleCfg).
func NewName(addressCfg, peopleCfg config.ProviderConfig, log logger.Logger) *NameAdapter {
	return &NameAdapter{
		standardize: newEndpoint(NameProviderName, addressCfg, log),
		people:      newEndpoint(NameProviderName, peopleCfg, log),
		auth:        smartyAuth{id: addressCfg.AuthID, token: addressCfg.AuthToken},
		apiKey:      peopleCfg.APIKey,
		log:         log.WithFields(map[string]interface{}{"provider": NameProviderName}),
	}
}

func (a *NameAdapter) Name() string {
	return NameProviderName
}

// Search fails if either call fails. The locality lookup is skipped when
// the query has neither city nor state.
func (a *NameAdapter) Search(ctx context.Context, q models.Query) (*models.ProviderResult, error) {
	if q.Name == nil || q.Name.LastName == "" {
		return nil, apperrors.NewProviderError(NameProviderName, "build request", errMissingVariant)
	}
	name := *q.Name

	var items []models.ResultItem
	if req := a.buildAddressRequest(name); req != nil {
		body, err := a.standardize.execute(ctx, req)
		if err != nil {
			return nil, err
		}
		addresses, err := extractCandidates(body)
		if err != nil {
			return nil, apperrors.NewProviderError(NameProviderName, "decode address response", err)
		}
		items = append(items, addresses...)
		name = refineLocality(name, addresses)
	}

	body, err := a.people.execute(ctx, a.buildPeopleRequest(name))
	if err != nil {
		return nil, err
	}
	people, err := extractPeople(body)
	if err != nil {
		return nil, apperrors.NewProviderError(NameProviderName, "decode people response", err)
	}
	items = append(items, people...)

	a.log.Debug("name search completed", map[string]interface{}{
		"addresses": len(items) - len(people),
		"people":    len(people),
	})
	return newResult(NameProviderName, items), nil
}

func (a *NameAdapter) buildAddressRequest(n models.NameQuery) *httpclient.Request {
	if n.City == "" && n.State == "" {
		return nil
	}
	params := url.Values{"street": {""}}
	setIfPresent(params, "city", n.City)
	setIfPresent(params, "state", n.State)
	return a.auth.request(params)
}

func (a *NameAdapter) buildPeopleRequest(n models.NameQuery) *httpclient.Request {
	query := strings.Join(nonEmpty(n.FirstName, n.LastName, n.City, n.State), " ")
	return &httpclient.Request{
		Path: peopleSearchPath,
		Query: url.Values{
			"api_key": {a.apiKey},
			"query":   {query},
			"num":     {peopleSearchResults},
		},
	}
}

// refineLocality replaces city and state with the first standardized
// candidate's, when there is one.
func refineLocality(n models.NameQuery, addresses []models.ResultItem) models.NameQuery {
	if len(addresses) == 0 {
		return n
	}
	if city, ok := addresses[0]["city"].(string); ok && city != "" {
		n.City = city
	}
	if state, ok := addresses[0]["state"].(string); ok && state != "" {
		n.State = state
	}
	return n
}

type peopleSearchResponse struct {
	Results []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		Description string `json:"description"`
		Snippet     string `json:"snippet"`
	} `json:"results"`
}

func extractPeople(body []byte) ([]models.ResultItem, error) {
	var resp peopleSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	items := make([]models.ResultItem, 0, len(resp.Results))
	for _, r := range resp.Results {
		item := models.ResultItem{"type": string(models.KindPerson)}
		item.Set("name", r.Title)
		item.Set("url", r.Link)
		item.Set("description", firstNonEmpty(r.Description, r.Snippet))
		items = append(items, item)
	}
	return items, nil
}
