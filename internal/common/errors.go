// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// DefaultErrorMessage is shown when a failure carries no usable message.
const DefaultErrorMessage = "Something went wrong. Please try again."

// Common application errors.
var (
	// Backend errors.
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrBackendRequest     = errors.New("backend request failed")
	ErrInvalidResponse    = errors.New("invalid backend response")

	// Storage errors.
	ErrNotFound         = errors.New("not found")
	ErrDatabaseNotFound = errors.New("project database not found")

	// Review errors.
	ErrEmptyText      = errors.New("no text to analyze")
	ErrCommitInFlight = errors.New("commit already in progress")
	ErrUnknownPhase   = errors.New("operation not allowed in current phase")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// UserMessage extracts the message to show for err, falling back to
// DefaultErrorMessage when err carries nothing readable.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var userErr *UserError
	if errors.As(err, &userErr) && userErr.UserMessage != "" {
		return userErr.UserMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return DefaultErrorMessage
}

// IsRetryable reports whether err is a transient failure. A RetryableError
// decides for itself; otherwise an unreachable backend, a passed deadline,
// or a Temporary method returning true counts.
func IsRetryable(err error) bool {
	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	if errors.Is(err, ErrBackendUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var temp interface{ Temporary() bool }
	if errors.As(err, &temp) {
		return temp.Temporary()
	}
	return false
}
