package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"people-search/internal/common/logger"
	"people-search/internal/models"
)

func result(source string, items ...models.ResultItem) *models.ProviderResult {
	return &models.ProviderResult{Source: source, Items: items}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		item models.ResultItem
		want Bucket
	}{
		{"person tag", models.ResultItem{"type": "person", "email": "a@b.co"}, BucketPeople},
		{"address tag", models.ResultItem{"type": "address", "phone": "+1"}, BucketAddresses},
		{"email field", models.ResultItem{"type": "email-match", "email": "a@b.co", "phone": "+1"}, BucketEmails},
		{"phone field", models.ResultItem{"type": "phone-match", "phone": "+12125550123"}, BucketPhones},
		{"empty email falls through to phone", models.ResultItem{"email": "", "phone": "+1"}, BucketPhones},
		{"unknown shape", models.ResultItem{"carrier": "Verizon"}, BucketNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.item))
		})
	}
}

func TestFuse_BucketsInInputOrder(t *testing.T) {
	f := New(logger.NewTestLogger(t))

	email := result("Hunter.io Email API",
		models.ResultItem{"type": "email-match", "email": "jane@example.com"})
	name := result("Name Search API",
		models.ResultItem{"type": "address", "deliveryLine": "1 Main St"},
		models.ResultItem{"type": "person", "name": "Jane Doe"},
		models.ResultItem{"type": "person", "name": "J. Doe"})
	phone := result("NumVerify Phone API",
		models.ResultItem{"type": "phone-match", "phone": "+12125550123"})

	out := f.Fuse([]*models.ProviderResult{email, name, phone})

	require.NotNil(t, out.Buckets)
	assert.Equal(t, AggregateSource, out.Source)
	assert.Equal(t, []string{"Hunter.io Email API", "Name Search API", "NumVerify Phone API"}, out.Metadata.SourcesUsed)
	assert.Equal(t, 5, out.Metadata.TotalResults)
	assert.Len(t, out.Buckets.People, 2)
	assert.Equal(t, "Jane Doe", out.Buckets.People[0]["name"])
	assert.Len(t, out.Buckets.Addresses, 1)
	assert.Len(t, out.Buckets.Emails, 1)
	assert.Len(t, out.Buckets.Phones, 1)
}

func TestFuse_KeepsDuplicates(t *testing.T) {
	f := New(logger.NewTestLogger(t))
	item := models.ResultItem{"type": "email-match", "email": "dup@example.com"}

	out := f.Fuse([]*models.ProviderResult{result("A", item), result("A", item)})

	assert.Equal(t, []string{"A", "A"}, out.Metadata.SourcesUsed)
	assert.Len(t, out.Buckets.Emails, 2)
	assert.Equal(t, 2, out.Metadata.TotalResults)
}

func TestFuse_DropsUnclassifiable(t *testing.T) {
	f := New(logger.NewTestLogger(t))

	out := f.Fuse([]*models.ProviderResult{
		result("A", models.ResultItem{"carrier": "AT&T"}, models.ResultItem{"type": "person", "name": "X"}),
	})

	assert.Equal(t, 1, out.Metadata.TotalResults)
	assert.Len(t, out.Buckets.People, 1)
}

func TestFuse_EmptyInput(t *testing.T) {
	f := New(logger.NewTestLogger(t))

	out := f.Fuse(nil)

	assert.Empty(t, out.Metadata.SourcesUsed)
	assert.Equal(t, 0, out.Metadata.TotalResults)
	assert.NotNil(t, out.Buckets.People)
	assert.Empty(t, out.Flatten())
}

func TestFuse_SourceWithNoItemsStillRecorded(t *testing.T) {
	f := New(logger.NewTestLogger(t))

	out := f.Fuse([]*models.ProviderResult{result("Empty"), nil})

	assert.Equal(t, []string{"Empty"}, out.Metadata.SourcesUsed)
}
