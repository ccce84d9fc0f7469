// Package provider defines the error model shared by AI completion
// backends. Callers distinguish failure kinds with errors.Is against the
// sentinels; no backend retries automatically.
package provider

import (
	"errors"
	"fmt"
)

// Sentinel errors for common provider failures.
var (
	ErrAuthentication     = errors.New("authentication failed")
	ErrRateLimit          = errors.New("rate limit exceeded")
	ErrNetwork            = errors.New("network error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrEmptyResponse      = errors.New("empty response")
)

// ErrorCode identifies a provider failure kind in transport payloads.
type ErrorCode string

const (
	ErrorCodeAuth           ErrorCode = "authentication_failed"
	ErrorCodeRateLimit      ErrorCode = "rate_limit"
	ErrorCodeNetwork        ErrorCode = "network_error"
	ErrorCodeUnavailable    ErrorCode = "service_unavailable"
	ErrorCodeInvalidRequest ErrorCode = "invalid_request"
)

// Error wraps a backend failure with its classification.
type Error struct {
	Code       ErrorCode
	Message    string
	Underlying error
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the sentinel for the code, so errors.Is works on the
// classification, plus the underlying error via a second unwrap path.
func (e *Error) Unwrap() []error {
	sentinel := sentinelFor(e.Code)
	if e.Underlying != nil {
		return []error{sentinel, e.Underlying}
	}
	return []error{sentinel}
}

func sentinelFor(code ErrorCode) error {
	switch code {
	case ErrorCodeAuth:
		return ErrAuthentication
	case ErrorCodeRateLimit:
		return ErrRateLimit
	case ErrorCodeUnavailable:
		return ErrServiceUnavailable
	case ErrorCodeInvalidRequest:
		return ErrInvalidRequest
	default:
		return ErrNetwork
	}
}
