// Package common holds the error values, retry policy, and logger setup
// shared by every payrank package.
package common

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrNoBalance means no cash balance has been recorded or fetched.
	ErrNoBalance      = errors.New("no balance found")
	ErrPlaidRateLimit = errors.New("plaid rate limit exceeded")

	ErrNoInvoices     = errors.New("no invoices to import")
	ErrUnknownFormat  = errors.New("unknown file format")
	ErrMalformedInput = errors.New("malformed input")

	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError carries a message meant for the terminal alongside the cause,
// which is only logged.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.UserMessage
	}
	return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
}

func (e *UserError) Unwrap() error { return e.Err }

// NewUserError wraps err with a message for the user.
func NewUserError(userMessage string, err error) error {
	return &UserError{UserMessage: userMessage, Err: err}
}

// IsRetryable reports whether err is throttling, a timeout, or explicitly
// marked retryable.
func IsRetryable(err error) bool {
	for _, transient := range []error{ErrRateLimit, ErrPlaidRateLimit, context.DeadlineExceeded} {
		if errors.Is(err, transient) {
			return true
		}
	}

	var marked *RetryableError
	return errors.As(err, &marked) && marked.Retryable
}
