// Package common defines shared constants and sentinel errors used across
// the SecureVault server and gateway. Callers should use errors.Is to match
// these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("invalid credentials")

	// Input errors. Concrete failures are *ValidationError values that
	// match ErrValidation.
	ErrValidation = errors.New("validation error")

	// Token lifecycle errors.
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenReuseDetected = errors.New("refresh token reuse detected")

	// Encryption boundary errors.
	ErrIntegrity = errors.New("integrity check failed")

	// Dependency errors (encryption gateway, breach directory, object storage).
	ErrServiceUnavailable = errors.New("service unavailable")
)

// ValidationError reports malformed input for a single field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError returns a *ValidationError for field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
