// internal/search/fusion/fusion.go

// Package fusion buckets the items of several provider results into one
// aggregate. It does not deduplicate.
package fusion

import (
	"time"

	"people-search/internal/common/logger"
	"people-search/internal/common/metrics"
	"people-search/internal/models"
)

// AggregateSource is the source name of every fused result.
const AggregateSource = "Multiple APIs"

// Bucket names the aggregate list an item lands in.
type Bucket int

const (
	BucketNone Bucket = iota
	BucketPeople
	BucketAddresses
	BucketEmails
	BucketPhones
)

// Classify picks the bucket for item. Order matters: the type tag is
// checked before field presence.
func Classify(item models.ResultItem) Bucket {
	switch {
	case item.Kind() == models.KindPerson:
		return BucketPeople
	case item.Kind() == models.KindAddress:
		return BucketAddresses
	case item.Has("email"):
		return BucketEmails
	case item.Has("phone"):
		return BucketPhones
	}
	return BucketNone
}

type Fuser struct {
	log logger.Logger
	now func() time.Time
}

func New(log logger.Logger) *Fuser {
	return &Fuser{
		log: log.WithFields(map[string]interface{}{"component": "fusion"}),
		now: time.Now,
	}
}

// Fuse merges results in the order given. Every input contributes its
// source to SourcesUsed, even when it had no items. Items that match no
// bucket are dropped and counted.
func (f *Fuser) Fuse(results []*models.ProviderResult) *models.ProviderResult {
	buckets := &models.Buckets{
		People:    []models.ResultItem{},
		Addresses: []models.ResultItem{},
		Emails:    []models.ResultItem{},
		Phones:    []models.ResultItem{},
	}
	sources := make([]string, 0, len(results))
	dropped := 0

	for _, r := range results {
		if r == nil {
			continue
		}
		sources = append(sources, r.Source)

		for _, item := range r.Flatten() {
			switch Classify(item) {
			case BucketPeople:
				buckets.People = append(buckets.People, item)
			case BucketAddresses:
				buckets.Addresses = append(buckets.Addresses, item)
			case BucketEmails:
				buckets.Emails = append(buckets.Emails, item)
			case BucketPhones:
				buckets.Phones = append(buckets.Phones, item)
			default:
				dropped++
			}
		}
	}

	if dropped > 0 {
		metrics.FusionDroppedItems.Add(float64(dropped))
		f.log.Debug("dropped unclassifiable items", map[string]interface{}{
			"dropped": dropped,
			"sources": sources,
		})
	}

	return &models.ProviderResult{
		Source:  AggregateSource,
		Buckets: buckets,
		Metadata: models.ResultMetadata{
			Timestamp:    f.now().UTC(),
			Source:       AggregateSource,
			SourcesUsed:  sources,
			TotalResults: buckets.Len(),
		},
	}
}
