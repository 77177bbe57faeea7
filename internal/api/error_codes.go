package api

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode is a machine-readable error classification used for exit-code
// mapping and scripted callers.
type ErrorCode string

const (
	// ErrBadRequest indicates a malformed request (HTTP 400).
	ErrBadRequest ErrorCode = "bad_request"
	// ErrUnauthorized indicates authentication is required or failed (HTTP 401).
	ErrUnauthorized ErrorCode = "unauthorized"
	// ErrForbidden indicates the token lacks permission (HTTP 403).
	ErrForbidden ErrorCode = "forbidden"
	// ErrNotFound indicates the group or endpoint does not exist (HTTP 404).
	ErrNotFound ErrorCode = "not_found"
	// ErrRateLimited indicates too many requests (HTTP 429).
	ErrRateLimited ErrorCode = "rate_limited"
	// ErrServerError indicates an internal server error (HTTP 5xx).
	ErrServerError ErrorCode = "server_error"
	// ErrTimeout indicates the request timed out.
	ErrTimeout ErrorCode = "timeout"
	// ErrCircuitOpen indicates the circuit breaker is open.
	ErrCircuitOpen ErrorCode = "circuit_open"
	// ErrUnknown indicates an unknown or unclassified error.
	ErrUnknown ErrorCode = "unknown"
)

// IsRetryable returns true if errors with this code may succeed on retry.
func (c ErrorCode) IsRetryable() bool {
	switch c {
	case ErrRateLimited, ErrServerError, ErrTimeout, ErrCircuitOpen:
		return true
	default:
		return false
	}
}

// Suggestion returns a human-readable suggestion for resolving this error.
func (c ErrorCode) Suggestion() string {
	switch c {
	case ErrUnauthorized:
		return "Run 'central auth login' with a fresh access token"
	case ErrForbidden:
		return "Check the token's API permission scope"
	case ErrNotFound:
		return "Verify the group name exists"
	case ErrRateLimited:
		return "Wait a moment and retry"
	case ErrBadRequest:
		return "Check the request parameters"
	case ErrServerError:
		return "The platform encountered an error; try again later"
	case ErrTimeout:
		return "The request timed out; check network connectivity and retry"
	case ErrCircuitOpen:
		return "Too many recent failures; wait before retrying"
	default:
		return ""
	}
}

// ErrorCodeFromStatus maps an HTTP status code to an ErrorCode.
func ErrorCodeFromStatus(statusCode int) ErrorCode {
	switch statusCode {
	case 400:
		return ErrBadRequest
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 429:
		return ErrRateLimited
	default:
		if statusCode >= 500 && statusCode < 600 {
			return ErrServerError
		}
		return ErrUnknown
	}
}

// StructuredError carries machine-readable error information across the
// command boundary.
type StructuredError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	Suggestion string         `json:"suggestion,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewStructuredError creates a StructuredError from an ErrorCode and message.
func NewStructuredError(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:       code,
		Message:    message,
		Retryable:  code.IsRetryable(),
		Suggestion: code.Suggestion(),
	}
}

// StructuredErrorFromError classifies an arbitrary error into a
// StructuredError, or returns nil for nil input.
func StructuredErrorFromError(err error) *StructuredError {
	if err == nil {
		return nil
	}

	var structured *StructuredError
	if errors.As(err, &structured) {
		return structured
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		se := NewStructuredError(ErrorCodeFromStatus(apiErr.StatusCode), apiErr.Body)
		se.Context = map[string]any{"status_code": apiErr.StatusCode}
		if apiErr.RequestID != "" {
			se.Context["request_id"] = apiErr.RequestID
		}
		return se
	}

	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return NewStructuredError(ErrRateLimited, rateLimitErr.Error())
	}

	var circuitErr *CircuitBreakerError
	if errors.As(err, &circuitErr) {
		return NewStructuredError(ErrCircuitOpen, circuitErr.Error())
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		return NewStructuredError(ErrUnauthorized, authErr.Reason)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewStructuredError(ErrTimeout, err.Error())
	}

	return NewStructuredError(ErrUnknown, err.Error())
}
