// internal/workers/search/perform-people-search/handler_test.go
package performpeoplesearch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "people-search/internal/common/errors"
	"people-search/internal/common/logger"
	"people-search/internal/common/validation"
	"people-search/internal/models"
	"people-search/internal/search/orchestrator"
	"people-search/internal/search/providers"
	"people-search/pkg/registry"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

type stubAdapter struct {
	name  string
	items []models.ResultItem
	err   error
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Search(_ context.Context, _ models.Query) (*models.ProviderResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.ProviderResult{
		Source:   s.name,
		Items:    s.items,
		Metadata: models.ResultMetadata{Source: s.name, TotalResults: len(s.items)},
	}, nil
}

func createTestHandler(t *testing.T, email *stubAdapter) *Handler {
	t.Helper()
	log := logger.NewTestLogger(t)

	unused := &stubAdapter{name: "unused", err: errors.New("not configured")}
	sel := providers.NewSelectorFromAdapters(email, unused, unused, unused, log)
	orch := orchestrator.New(orchestrator.Config{}, sel, nil, nil, nil, log)

	reg, err := registry.Default()
	require.NoError(t, err)
	schemaValidator, err := validation.NewSchemaValidator(reg)
	require.NoError(t, err)

	return NewHandler(createTestConfig(), orch, schemaValidator, log)
}

// ==========================
// Execute
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	h := createTestHandler(t, &stubAdapter{
		name:  "Hunter.io Email API",
		items: []models.ResultItem{{"type": "email-match", "email": "jane@example.com", "name": "Jane Doe"}},
	})

	output, err := h.Execute(context.Background(), &Input{
		SearchID:    "srch_job",
		SearchType:  "email",
		SearchQuery: models.QueryFields{Email: "Jane@Example.com"},
	})

	require.NoError(t, err)
	assert.Equal(t, "srch_job", output.SearchID)
	require.NotNil(t, output.SearchResult)
	assert.Equal(t, "Hunter.io Email API", output.SearchResult.Strategy)
	assert.False(t, output.SearchResult.Fallback)
	assert.Equal(t, 25, output.SearchResult.Enhanced.ConfidenceScore)
}

func TestHandler_Execute_AssignsSearchID(t *testing.T) {
	h := createTestHandler(t, &stubAdapter{
		name:  "Hunter.io Email API",
		items: []models.ResultItem{{"type": "email-match", "email": "jane@example.com"}},
	})

	output, err := h.Execute(context.Background(), &Input{
		SearchType:  "email",
		SearchQuery: models.QueryFields{Email: "jane@example.com"},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, output.SearchID)
	assert.Equal(t, output.SearchID, output.SearchResult.SearchID)
}

func TestHandler_Execute_ValidationError(t *testing.T) {
	h := createTestHandler(t, &stubAdapter{name: "Hunter.io Email API"})

	_, err := h.Execute(context.Background(), &Input{
		SearchType:  "email",
		SearchQuery: models.QueryFields{Email: "not-an-email"},
	})

	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, apperrors.ErrCodeSearchValidationFailed, apperrors.FromError(err).Code)
}

func TestHandler_Execute_Exhausted(t *testing.T) {
	h := createTestHandler(t, &stubAdapter{
		name: "Hunter.io Email API",
		err:  apperrors.NewProviderError("Hunter.io Email API", "HTTP 503", nil),
	})

	_, err := h.Execute(context.Background(), &Input{
		SearchType:  "email",
		SearchQuery: models.QueryFields{Email: "jane@example.com"},
	})

	var exhausted *apperrors.SearchExhaustedError
	require.True(t, errors.As(err, &exhausted))

	stdErr := apperrors.FromError(err)
	assert.Equal(t, apperrors.ErrCodeSearchExhausted, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

// ==========================
// Variable parsing
// ==========================

func TestHandler_Parse(t *testing.T) {
	h := createTestHandler(t, &stubAdapter{name: "email"})

	input, err := h.parse(`{"searchId":"srch_1","searchType":"phone","searchQuery":{"phoneNumber":"2125550123"}}`)

	require.NoError(t, err)
	assert.Equal(t, "srch_1", input.SearchID)
	assert.Equal(t, models.SearchTypePhone, input.Query().Type)
	assert.Equal(t, "2125550123", input.SearchQuery.PhoneNumber)
}

func TestHandler_Parse_MissingQuery(t *testing.T) {
	h := createTestHandler(t, &stubAdapter{name: "email"})

	_, err := h.parse(`{"searchType":"phone"}`)

	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeSchemaValidationFailed, stdErr.Code)
}
