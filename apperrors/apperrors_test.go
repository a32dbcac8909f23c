package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeUnauthenticated, CodeOf(Unauthenticated()))
	assert.Equal(t, CodeNotFound, CodeOf(NotFound("Exercise", "abc")))
	assert.Equal(t, CodeOperationFailed, CodeOf(errors.New("plain error")))

	wrapped := fmt.Errorf("handler: %w", NotFound("User", "u1"))
	assert.Equal(t, CodeNotFound, CodeOf(wrapped))
}

func TestDuplicateCarriesFieldDetail(t *testing.T) {
	err := Duplicate("title", "Push-up")
	assert.Equal(t, CodeDuplicate, err.Code)
	assert.Equal(t, "Must be unique", err.Fields["title"])
	assert.Contains(t, err.Message, "Push-up")
}

func TestValidationFields(t *testing.T) {
	err := Validation("Missing required fields", map[string]string{"title": "Field is required"})
	assert.Equal(t, CodeValidation, err.Code)
	assert.Equal(t, "Field is required", err.Fields["title"])
}

func TestAsWrapsForeignErrors(t *testing.T) {
	cause := errors.New("connection reset")
	err := As(cause)
	assert.Equal(t, CodeOperationFailed, err.Code)
	assert.ErrorIs(t, err, cause)

	// Taxonomy errors pass through untouched
	original := Unauthorized("Admin access required")
	assert.Same(t, original, As(original))
}

func TestOperationFailedUnwraps(t *testing.T) {
	cause := errors.New("socket closed")
	err := OperationFailed("Failed to save", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "OPERATION_FAILED")
	assert.Contains(t, err.Error(), "socket closed")
}
