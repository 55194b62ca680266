// internal/common/errors/search.go
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strings"
)

// ValidationCode classifies why a query was rejected.
type ValidationCode string

const (
	ValidationMissingInput        ValidationCode = "MISSING_INPUT"
	ValidationInvalidFormat       ValidationCode = "INVALID_FORMAT"
	ValidationInvalidState        ValidationCode = "INVALID_STATE"
	ValidationInvalidZip          ValidationCode = "INVALID_ZIP"
	ValidationTooShort            ValidationCode = "TOO_SHORT"
	ValidationMissingStreetNumber ValidationCode = "MISSING_STREET_NUMBER"
	ValidationUnknownSearchType   ValidationCode = "UNKNOWN_SEARCH_TYPE"
)

// ValidationError is returned when a query fails validation. No provider is
// contacted for such a query.
type ValidationError struct {
	SearchType string
	Code       ValidationCode
	Errors     []string
	Warnings   []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s search query: %s", e.SearchType, strings.Join(e.Errors, "; "))
}

// ProviderError is a failed call to a single upstream provider: a transport
// failure, a non-2xx response or an undecodable body.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "provider %s", e.Provider)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the call was abandoned because a deadline passed.
func (e *ProviderError) Timeout() bool {
	if stderrors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(e.Err, &netErr) && netErr.Timeout()
}

// NewProviderError builds a ProviderError for a transport or decode failure.
func NewProviderError(provider, message string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Message: message, Err: err}
}

// NewProviderStatusError builds a ProviderError for a non-2xx response.
func NewProviderStatusError(provider string, statusCode int, body string) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    truncate(strings.TrimSpace(body), 256),
	}
}

// SearchExhaustedError means both the type-specific strategy and the
// comprehensive fallback failed.
type SearchExhaustedError struct {
	SearchType string
	Primary    error
	Fallback   error
}

func (e *SearchExhaustedError) Error() string {
	return fmt.Sprintf("All search attempts failed: %s: %v; comprehensive fallback: %v",
		e.SearchType, e.Primary, e.Fallback)
}

func (e *SearchExhaustedError) Unwrap() []error {
	return []error{e.Primary, e.Fallback}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
