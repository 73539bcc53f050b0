package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNavigation    ErrorType = "navigation"
	ErrorTypeRateLimit     ErrorType = "rate_limit"
	ErrorTypeLogin         ErrorType = "login"
	ErrorTypeActionBlocked ErrorType = "action_blocked"
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypeLedger        ErrorType = "ledger"
	ErrorTypeUnknown       ErrorType = "unknown"
)

// Error represents a bot error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// New creates a typed error
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// NewWithCode creates a typed error carrying an HTTP-like status code
func NewWithCode(t ErrorType, message string, code int) *Error {
	return &Error{Type: t, Message: message, Code: code}
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNavigation, ErrorTypeUnknown:
		return true
	default:
		return false
	}
}

// IsFatal reports whether an error must abort the whole run. A 429 response,
// a login that never succeeds and an anti-abuse block all mean the session is
// compromised; everything else is local to a single candidate.
func IsFatal(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Type {
	case ErrorTypeRateLimit, ErrorTypeLogin, ErrorTypeActionBlocked:
		return true
	default:
		return false
	}
}

// IsNotFound reports whether an error indicates a missing account or page.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == ErrorTypeNotFound
}

// TypeOf returns the error type, or ErrorTypeUnknown for untyped errors.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}
