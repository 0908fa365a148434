package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// Validation errors
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"

	// Article fetching/cleaning errors
	CodeFetchTimeout    ErrorCode = "FETCH_TIMEOUT"
	CodeFetchHTTPStatus ErrorCode = "FETCH_HTTP_STATUS"
	CodeFetchNetwork    ErrorCode = "FETCH_NETWORK"
	CodeContentTooShort ErrorCode = "CONTENT_TOO_SHORT"
	CodeNotWikipediaURL ErrorCode = "NOT_WIKIPEDIA_URL"

	// Quiz generation errors
	CodeQuizNotFound     ErrorCode = "QUIZ_NOT_FOUND"
	CodeModelUnavailable ErrorCode = "MODEL_UNAVAILABLE"
	CodeModelFatal       ErrorCode = "MODEL_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Helper constructors for common errors

func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

func NewQuizNotFoundError(quizID string) *DomainError {
	return NewError(CodeQuizNotFound, fmt.Sprintf("Quiz not found with ID: %s", quizID), nil)
}

func NewNotWikipediaURLError(url string) *DomainError {
	return &DomainError{
		Code:    CodeNotWikipediaURL,
		Message: "Only Wikipedia article URLs are accepted",
		Context: map[string]interface{}{"url": url},
	}
}

func NewFetchTimeoutError(url string, cause error) *DomainError {
	return &DomainError{
		Code:    CodeFetchTimeout,
		Message: "Request timeout while fetching Wikipedia article",
		Cause:   cause,
		Context: map[string]interface{}{"url": url},
	}
}

func NewFetchHTTPStatusError(url string, status int) *DomainError {
	return &DomainError{
		Code:    CodeFetchHTTPStatus,
		Message: fmt.Sprintf("Failed to fetch article: HTTP %d", status),
		Context: map[string]interface{}{"url": url, "status": status},
	}
}

func NewFetchNetworkError(url string, cause error) *DomainError {
	return &DomainError{
		Code:    CodeFetchNetwork,
		Message: "Failed to fetch Wikipedia article",
		Cause:   cause,
		Context: map[string]interface{}{"url": url},
	}
}

func NewContentTooShortError(length, minimum int) *DomainError {
	return &DomainError{
		Code:    CodeContentTooShort,
		Message: "Article content too short or could not be parsed",
		Context: map[string]interface{}{"length": length, "minimum": minimum},
	}
}

func NewModelUnavailableError() *DomainError {
	return NewError(CodeModelUnavailable, "No model backend is configured", nil)
}

func NewModelError(cause error) *DomainError {
	return NewError(CodeModelFatal, "Failed to generate content with the model", cause)
}
