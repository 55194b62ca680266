// internal/search/scoring/scoring.go

// Package scoring computes the heuristic confidence attached to every
// search result.
package scoring

import (
	"time"

	"people-search/internal/models"
)

const MaxScore = 100

// fieldWeights is evaluated per item; an item can earn several weights.
var fieldWeights = []struct {
	field  string
	weight int
}{
	{"email", 20},
	{"phone", 15},
	{"address", 10},
	{"name", 5},
}

// Score sums the field weights over items and clamps to MaxScore.
func Score(items []models.ResultItem) int {
	score := 0
	for _, item := range items {
		for _, fw := range fieldWeights {
			if item.Has(fw.field) {
				score += fw.weight
			}
		}
		if score >= MaxScore {
			return MaxScore
		}
	}
	return score
}

// Verified only reports that at least one item came back. It says nothing
// about whether the items describe the searched person.
func Verified(items []models.ResultItem) bool {
	return len(items) > 0
}

// Enhance scores a provider result.
func Enhance(result *models.ProviderResult, now time.Time) models.EnhancedData {
	items := result.Flatten()
	return models.EnhancedData{
		ConfidenceScore: Score(items),
		Verified:        Verified(items),
		Timestamp:       now.UTC(),
	}
}
