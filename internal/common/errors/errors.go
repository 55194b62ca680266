// internal/common/errors/errors.go

// Package errors provides the search error taxonomy and its mapping onto
// BPMN errors for the Camunda job workers.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode is a stable, machine readable error code.
type ErrorCode string

const (
	ErrCodeSearchValidationFailed ErrorCode = "SEARCH_VALIDATION_FAILED"
	ErrCodeSchemaValidationFailed ErrorCode = "SCHEMA_VALIDATION_FAILED"
	ErrCodeUnknownSearchType      ErrorCode = "UNKNOWN_SEARCH_TYPE"

	ErrCodeProviderRequestFailed ErrorCode = "PROVIDER_REQUEST_FAILED"
	ErrCodeProviderTimeout       ErrorCode = "PROVIDER_TIMEOUT"
	ErrCodeSearchExhausted       ErrorCode = "SEARCH_EXHAUSTED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeHistoryWriteFailed       ErrorCode = "HISTORY_WRITE_FAILED"
	ErrCodeCacheUnavailable         ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeProfileNotFound          ErrorCode = "PROFILE_NOT_FOUND"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError is the structured error surfaced at the worker and API
// boundaries.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError is thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns the variables attached to a failed or thrown job.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewSearchValidationFailedError wraps a rejected search query. Never retried.
func NewSearchValidationFailedError(verr *ValidationError) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchValidationFailed,
		Message:   "Search query failed validation",
		Details:   strings.Join(verr.Errors, "; "),
		Retryable: false,
		Metadata: map[string]interface{}{
			"searchType":     verr.SearchType,
			"validationCode": string(verr.Code),
			"warnings":       verr.Warnings,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewSchemaValidationFailedError reports a payload that does not match the
// activity's input schema.
func NewSchemaValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaValidationFailed,
		Message:   "Input does not match activity schema",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewUnknownSearchTypeError(searchType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownSearchType,
		Message:   "Unsupported search type",
		Details:   fmt.Sprintf("searchType: %s", searchType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderRequestFailedError wraps a single failed provider call.
func NewProviderRequestFailedError(perr *ProviderError) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderRequestFailed,
		Message:   fmt.Sprintf("Provider '%s' request failed", perr.Provider),
		Details:   perr.Error(),
		Retryable: true,
		Metadata: map[string]interface{}{
			"provider":   perr.Provider,
			"statusCode": perr.StatusCode,
		},
		Timestamp: time.Now().UTC(),
	}
}

func NewProviderTimeoutError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderTimeout,
		Message:   fmt.Sprintf("Provider '%s' timeout", provider),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchExhaustedError reports that both the primary strategy and the
// comprehensive fallback failed.
func NewSearchExhaustedError(serr *SearchExhaustedError) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchExhausted,
		Message:   "All search attempts failed",
		Details:   serr.Error(),
		Retryable: true,
		Metadata: map[string]interface{}{
			"searchType": serr.SearchType,
		},
		Timestamp: time.Now().UTC(),
	}
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewProfileNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileNotFound,
		Message:   "Profile not found",
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// FromError maps any error produced by the search core onto a StandardError.
func FromError(err error) *StandardError {
	if err == nil {
		return nil
	}

	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	var verr *ValidationError
	if stderrors.As(err, &verr) {
		if verr.Code == ValidationUnknownSearchType {
			return NewUnknownSearchTypeError(verr.SearchType)
		}
		return NewSearchValidationFailedError(verr)
	}
	var exhausted *SearchExhaustedError
	if stderrors.As(err, &exhausted) {
		return NewSearchExhaustedError(exhausted)
	}
	var perr *ProviderError
	if stderrors.As(err, &perr) {
		if perr.Timeout() {
			return NewProviderTimeoutError(perr.Provider, perr)
		}
		return NewProviderRequestFailedError(perr)
	}
	return NewInternalError(err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal codes to the codes modelled on boundary
// events. Codes missing here are thrown as-is.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeSearchValidationFailed:   "SEARCH_VALIDATION_FAILED",
	ErrCodeSchemaValidationFailed:   "SEARCH_VALIDATION_FAILED",
	ErrCodeUnknownSearchType:        "SEARCH_VALIDATION_FAILED",
	ErrCodeProviderRequestFailed:    "PROVIDER_REQUEST_FAILED",
	ErrCodeProviderTimeout:          "PROVIDER_REQUEST_FAILED",
	ErrCodeSearchExhausted:          "SEARCH_EXHAUSTED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeHistoryWriteFailed:       "HISTORY_WRITE_FAILED",
	ErrCodeCacheUnavailable:         "CACHE_UNAVAILABLE",
}

// GetRetryCount returns how many times the engine should retry a job that
// failed with code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeProviderRequestFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeHistoryWriteFailed,
		ErrCodeCacheUnavailable:
		return 3

	case ErrCodeProviderTimeout,
		ErrCodeSearchExhausted:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError for the workflow engine.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups error codes for dashboards and logs.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "UNKNOWN"):
		return "VALIDATION"
	case strings.Contains(codeStr, "PROVIDER"):
		return "PROVIDER"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "HISTORY"):
		return "DATABASE"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	default:
		return "OTHER"
	}
}
