package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_MatchesSentinel(t *testing.T) {
	err := NewValidationError("email", "invalid email format")

	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrorNotFound))
	assert.Equal(t, "email: invalid email format", err.Error())

	wrapped := fmt.Errorf("register: %w", err)
	var ve *ValidationError
	assert.True(t, errors.As(wrapped, &ve))
	assert.Equal(t, "email", ve.Field)
}

func TestValidationError_NoField(t *testing.T) {
	err := NewValidationError("", "body is required")
	assert.Equal(t, "body is required", err.Error())
}
