// Package errors defines the domain error taxonomy.
//
// ValidationError marks caller input that fails a composer's structural
// precondition; it is always recoverable by the caller. TransientError and
// PermanentError categorize transport failures so that callers can decide
// whether a retry could help. Merely unrecognized input (an unknown status
// keyword, an invalid button style) is not an error at all; composers
// normalize it to a safe default.
package errors

import (
	"errors"
	"fmt"
)

// ValidationError indicates that caller-supplied input failed a structural
// precondition, such as no content being supplied or malformed JSON where an
// array was required.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error with a formatted message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TransientError indicates a transport failure that may succeed on retry,
// such as a network error or rate limiting.
type TransientError struct {
	Message string
	Cause   error
}

func (e *TransientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TransientError) Unwrap() error {
	return e.Cause
}

// NewTransientError wraps a cause as a transient transport error.
func NewTransientError(message string, cause error) *TransientError {
	return &TransientError{Message: message, Cause: cause}
}

// PermanentError indicates a transport failure that will not succeed on
// retry, such as a revoked token or a missing channel.
type PermanentError struct {
	Message string
	Cause   error
}

func (e *PermanentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *PermanentError) Unwrap() error {
	return e.Cause
}

// NewPermanentError wraps a cause as a permanent transport error.
func NewPermanentError(message string, cause error) *PermanentError {
	return &PermanentError{Message: message, Cause: cause}
}

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
