// internal/workers/search/validate-search-input/handler_test.go
package validatesearchinput

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
	"people-search/pkg/registry"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func createTestHandler(t *testing.T) *Handler {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	schemaValidator, err := validation.NewSchemaValidator(reg)
	require.NoError(t, err)
	return NewHandler(createTestConfig(), schemaValidator, logger.NewTestLogger(t))
}

// ==========================
// Execute
// ==========================

func TestHandler_Execute_ValidPhone(t *testing.T) {
	h := createTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{
		SearchType:  "phone",
		SearchQuery: models.QueryFields{PhoneNumber: "(212) 555-0123"},
	})

	require.NoError(t, err)
	assert.True(t, output.IsValid)
	assert.Equal(t, "+12125550123", output.Validation.APIFormat)
	assert.Contains(t, output.Report, "API Compliance Report for PHONE Search")
	assert.Contains(t, output.Report, "Status: ✓ VALID")
}

func TestHandler_Execute_InvalidEmailIsNotAnError(t *testing.T) {
	h := createTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{
		SearchType:  "email",
		SearchQuery: models.QueryFields{Email: "john@@example.com"},
	})

	require.NoError(t, err)
	assert.False(t, output.IsValid)
	assert.Equal(t, apperrors.ValidationInvalidFormat, output.Validation.Code)
	assert.NotEmpty(t, output.Validation.Errors)
	assert.Contains(t, output.Report, "Status: ✗ INVALID")
}

func TestHandler_Execute_UnknownSearchType(t *testing.T) {
	h := createTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{
		SearchType:  "vin",
		SearchQuery: models.QueryFields{Email: "a@b.co"},
	})

	require.NoError(t, err)
	assert.False(t, output.IsValid)
	assert.Equal(t, apperrors.ValidationUnknownSearchType, output.Validation.Code)
}

// ==========================
// Variable parsing
// ==========================

func TestHandler_Parse(t *testing.T) {
	h := createTestHandler(t)

	input, err := h.parse(`{"searchType":"email","searchQuery":{"email":"jane@example.com"}}`)

	require.NoError(t, err)
	assert.Equal(t, "email", input.SearchType)
	assert.Equal(t, "jane@example.com", input.SearchQuery.Email)
}

func TestHandler_Parse_SchemaViolations(t *testing.T) {
	h := createTestHandler(t)

	tests := map[string]string{
		"missing query":   `{"searchType":"email"}`,
		"empty type":      `{"searchType":"","searchQuery":{}}`,
		"query not object": `{"searchType":"email","searchQuery":"jane@example.com"}`,
		"not json":        `searchType=email`,
	}

	for name, variables := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := h.parse(variables)

			var stdErr *apperrors.StandardError
			require.True(t, errors.As(err, &stdErr))
			assert.Equal(t, apperrors.ErrCodeSchemaValidationFailed, stdErr.Code)
		})
	}
}
