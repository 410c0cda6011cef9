package util

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
)

// Error codes rendered in API responses.
const (
	CodeValidationFailed      = "VALIDATION_FAILED"
	CodeNotFound              = "NOT_FOUND"
	CodeNoDocument            = "NO_DOCUMENT"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodePayloadTooLarge       = "PAYLOAD_TOO_LARGE"
	CodeDependencyUnavailable = "DEPENDENCY_UNAVAILABLE"
	CodeInternal              = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewNoDocument reports that the session has no uploaded CSV to work on.
func NewNoDocument() error {
	return NewDomainError(CodeNoDocument, "no CSV data found, upload a CSV file first", http.StatusNotFound, nil)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewDependencyUnavailable(details map[string]any) error {
	return NewDomainError(CodeDependencyUnavailable, "one or more dependencies unavailable", http.StatusServiceUnavailable, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// FromHTTPStatus wraps a transport-level failure (e.g. an oversized body) in a DomainError.
func FromHTTPStatus(status int, message string) *DomainError {
	code := CodeInternal
	switch {
	case status == http.StatusRequestEntityTooLarge:
		code = CodePayloadTooLarge
	case status == http.StatusNotFound:
		code = CodeNotFound
	case status == http.StatusUnauthorized:
		code = CodeUnauthorized
	case status >= 400 && status < 500:
		code = CodeValidationFailed
	}
	return NewDomainError(code, message, status, nil)
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, sql.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
