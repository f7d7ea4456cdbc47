// Package common defines shared constants and sentinel errors used across
// ContribVault components. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Crypto errors. ErrKeyUnavailable means no encryption key is configured;
	// no operation touching a protected field may proceed without one.
	// ErrDecryptionFailed covers malformed ciphertext, a missing nonce and
	// authentication failures alike.
	ErrKeyUnavailable   = errors.New("encryption key unavailable")
	ErrDecryptionFailed = errors.New("decryption failed")

	// Validation errors. ValidationError wraps this sentinel so both
	// errors.Is(err, ErrorValidation) and errors.As work.
	ErrorValidation = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)

// ValidationError reports a single malformed or missing input field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error {
	return ErrorValidation
}
