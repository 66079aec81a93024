// internal/fetcher/errors.go
package fetcher

import (
	"errors"
	"fmt"
)

// Common fetch errors
var (
	ErrInvalidURL = errors.New("invalid URL")
	ErrNetwork    = errors.New("network error")
	ErrBadStatus  = errors.New("unexpected status code")
	ErrParse      = errors.New("failed to parse response")
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	ErrCodeInvalidURL ErrorCode = "INVALID_URL"
	ErrCodeNetwork    ErrorCode = "NETWORK_ERROR"
	ErrCodeBadStatus  ErrorCode = "BAD_STATUS"
	ErrCodeParse      ErrorCode = "PARSE_ERROR"
)

// FetchError wraps a failed attempt with the URL and, for BAD_STATUS, the response status
type FetchError struct {
	Code       ErrorCode
	URL        string
	StatusCode int
	Underlying error
}

// NewFetchError creates a new FetchError
func NewFetchError(code ErrorCode, url string, err error) *FetchError {
	return &FetchError{
		Code:       code,
		URL:        url,
		Underlying: err,
	}
}

// Error implements the error interface
func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.URL)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: HTTP %d", msg, e.StatusCode)
	}
	if e.Underlying != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Underlying)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *FetchError) Unwrap() error {
	return e.Underlying
}

// Is matches another *FetchError by code, or the sentinel for this code
func (e *FetchError) Is(target error) bool {
	if t, ok := target.(*FetchError); ok {
		return e.Code == t.Code
	}
	return target == e.sentinel()
}

// GetStatusCode lets the retry policy classify bad responses
func (e *FetchError) GetStatusCode() int {
	return e.StatusCode
}

// Temporary reports whether another attempt could succeed
func (e *FetchError) Temporary() bool {
	switch e.Code {
	case ErrCodeNetwork, ErrCodeBadStatus:
		return true
	default:
		return false
	}
}

func (e *FetchError) sentinel() error {
	switch e.Code {
	case ErrCodeInvalidURL:
		return ErrInvalidURL
	case ErrCodeNetwork:
		return ErrNetwork
	case ErrCodeBadStatus:
		return ErrBadStatus
	case ErrCodeParse:
		return ErrParse
	}
	return nil
}
