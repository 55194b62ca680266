// internal/workers/search/validate-search-input/models.go
package validatesearchinput

import "people-search/internal/models"

type Input struct {
	SearchType  string             `json:"searchType"`
	SearchQuery models.QueryFields `json:"searchQuery"`
}

func (i *Input) Query() models.Query {
	return models.NewQuery(models.ParseSearchType(i.SearchType), i.SearchQuery)
}

// Output is returned for valid and invalid queries alike; the process
// branches on validation.isValid.
type Output struct {
	Validation *models.ValidationResult `json:"validation"`
	Report     string                   `json:"report"`
	IsValid    bool                     `json:"isValid"`
}
