package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of errors that can occur during a run
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeClientError ErrorType = "client_error"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeCache       ErrorType = "cache"
	ErrorTypeRender      ErrorType = "render"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents a typed failure with an optional HTTP status code
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// Wrap creates a typed error around err
func Wrap(t ErrorType, err error, message string) *Error {
	return &Error{Type: t, Message: fmt.Sprintf("%s: %v", message, err), Err: err}
}

// FromStatus maps a non-success HTTP status code to a typed error.
// It returns nil for 2xx codes.
func FromStatus(statusCode int, url string) *Error {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusNotFound:
		return &Error{Type: ErrorTypeNotFound, Message: fmt.Sprintf("%s not found", url), Code: statusCode}
	case statusCode >= 500:
		return &Error{Type: ErrorTypeServerError, Message: fmt.Sprintf("server error for %s", url), Code: statusCode}
	case statusCode >= 400:
		return &Error{Type: ErrorTypeClientError, Message: fmt.Sprintf("request for %s rejected", url), Code: statusCode}
	default:
		return &Error{Type: ErrorTypeUnknown, Message: fmt.Sprintf("unexpected status code %d for %s", statusCode, url), Code: statusCode}
	}
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown when err is untyped
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsSkippable reports whether err only affects a single unit of work
// (one mirror, list, account or post) and the run can carry on without it.
func IsSkippable(err error) bool {
	switch TypeOf(err) {
	case ErrorTypeNetwork, ErrorTypeNotFound, ErrorTypeClientError,
		ErrorTypeServerError, ErrorTypeParsing, ErrorTypeCache:
		return true
	default:
		return false
	}
}
