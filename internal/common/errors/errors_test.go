package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Taxonomy
// ==========================

func TestProviderError_Message(t *testing.T) {
	err := NewProviderStatusError("hunter", 503, " upstream unavailable ")
	assert.Equal(t, "provider hunter: status 503: upstream unavailable", err.Error())
	assert.False(t, err.Timeout())

	wrapped := NewProviderError("numverify", "request failed", context.DeadlineExceeded)
	assert.True(t, wrapped.Timeout())
	assert.ErrorIs(t, wrapped, context.DeadlineExceeded)
}

func TestSearchExhaustedError_UnwrapsBoth(t *testing.T) {
	primary := NewProviderStatusError("hunter", 500, "boom")
	fallback := NewProviderError("comprehensive", "all providers failed", nil)
	err := fmt.Errorf("search: %w", &SearchExhaustedError{SearchType: "email", Primary: primary, Fallback: fallback})

	var exhausted *SearchExhaustedError
	require.True(t, stderrors.As(err, &exhausted))
	assert.Contains(t, err.Error(), "All search attempts failed")

	var perr *ProviderError
	require.True(t, stderrors.As(exhausted, &perr))
	assert.Equal(t, "hunter", perr.Provider)
}

// ==========================
// StandardError mapping
// ==========================

func TestFromError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		code      ErrorCode
		retryable bool
	}{
		{
			name:      "validation",
			err:       &ValidationError{SearchType: "phone", Code: ValidationTooShort, Errors: []string{"Phone number must be at least 10 digits"}},
			code:      ErrCodeSearchValidationFailed,
			retryable: false,
		},
		{
			name:      "unknown search type",
			err:       &ValidationError{SearchType: "reverse", Code: ValidationUnknownSearchType, Errors: []string{"Unknown search type: reverse"}},
			code:      ErrCodeUnknownSearchType,
			retryable: false,
		},
		{
			name:      "provider status",
			err:       NewProviderStatusError("smarty", 401, "unauthorized"),
			code:      ErrCodeProviderRequestFailed,
			retryable: true,
		},
		{
			name:      "provider timeout",
			err:       NewProviderError("smarty", "request failed", context.DeadlineExceeded),
			code:      ErrCodeProviderTimeout,
			retryable: true,
		},
		{
			name:      "exhausted",
			err:       &SearchExhaustedError{SearchType: "name", Primary: stderrors.New("a"), Fallback: stderrors.New("b")},
			code:      ErrCodeSearchExhausted,
			retryable: true,
		},
		{
			name:      "unknown",
			err:       stderrors.New("something odd"),
			code:      ErrCodeInternal,
			retryable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdErr := FromError(tt.err)
			require.NotNil(t, stdErr)
			assert.Equal(t, tt.code, stdErr.Code)
			assert.Equal(t, tt.retryable, stdErr.Retryable)
		})
	}

	assert.Nil(t, FromError(nil))
}

func TestConvertToBPMNError(t *testing.T) {
	verr := &ValidationError{SearchType: "email", Code: ValidationInvalidFormat, Errors: []string{"Invalid email format"}}
	bpmn := ConvertToBPMNError(NewSearchValidationFailedError(verr))

	assert.Equal(t, "SEARCH_VALIDATION_FAILED", bpmn.Code)
	assert.Equal(t, 0, bpmn.Retries)
	assert.Equal(t, "INVALID_FORMAT", bpmn.ErrorVariables["validationCode"])

	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "Invalid email format", vars["errorDetails"])
	assert.Equal(t, false, vars["retryable"])

	exhausted := ConvertToBPMNError(NewSearchExhaustedError(&SearchExhaustedError{SearchType: "email", Primary: stderrors.New("a"), Fallback: stderrors.New("b")}))
	assert.Equal(t, "SEARCH_EXHAUSTED", exhausted.Code)
	assert.Equal(t, 2, exhausted.Retries)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeSearchValidationFailed))
	assert.Equal(t, "PROVIDER", GetErrorCategory(ErrCodeProviderTimeout))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeSearchExhausted))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeHistoryWriteFailed))
	assert.Equal(t, "CACHE", GetErrorCategory(ErrCodeCacheUnavailable))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
	assert.True(t, IsRetryableErrorCode(ErrCodeProviderRequestFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeSchemaValidationFailed))
}
