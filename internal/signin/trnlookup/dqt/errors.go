package dqt

import (
	"errors"
	"fmt"
)

// ErrorCategory is the normalized failure taxonomy for matcher calls.
type ErrorCategory string

const (
	// ErrorTimeout indicates the matcher took too long to respond
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates the matcher returned a malformed body
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorAuthentication indicates an invalid or missing API key
	ErrorAuthentication ErrorCategory = "authentication"

	// ErrorOutage indicates the matcher is unavailable
	ErrorOutage ErrorCategory = "provider_outage"

	// ErrorRateLimited indicates too many requests
	ErrorRateLimited ErrorCategory = "rate_limited"

	// ErrorInternal indicates an unexpected failure
	ErrorInternal ErrorCategory = "internal"
)

// MatcherError wraps matcher failures with a normalized category.
type MatcherError struct {
	Category   ErrorCategory
	Message    string
	StatusCode int
	Underlying error
	Retryable  bool
}

func (e *MatcherError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("teacher records [%s]: %s: %v", e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("teacher records [%s]: %s", e.Category, e.Message)
}

func (e *MatcherError) Unwrap() error {
	return e.Underlying
}

func newMatcherError(category ErrorCategory, message string, underlying error) *MatcherError {
	return &MatcherError{
		Category:   category,
		Message:    message,
		Underlying: underlying,
		Retryable:  category == ErrorTimeout || category == ErrorOutage || category == ErrorRateLimited,
	}
}

// Category extracts the error category from err.
func Category(err error) ErrorCategory {
	var me *MatcherError
	if errors.As(err, &me) {
		return me.Category
	}
	return ErrorInternal
}

// IsTimeout reports whether err is a matcher timeout.
func IsTimeout(err error) bool {
	return Category(err) == ErrorTimeout
}
