// internal/workers/search/perform-people-search/models.go
package performpeoplesearch

import "people-search/internal/models"

type Input struct {
	SearchID    string             `json:"searchId,omitempty"`
	SearchType  string             `json:"searchType"`
	SearchQuery models.QueryFields `json:"searchQuery"`
}

func (i *Input) Query() models.Query {
	return models.NewQuery(models.ParseSearchType(i.SearchType), i.SearchQuery)
}

type Output struct {
	SearchID     string                 `json:"searchId"`
	SearchResult *models.EnhancedResult `json:"searchResult"`
}
