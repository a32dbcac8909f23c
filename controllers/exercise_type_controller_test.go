package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"powerpulse/apperrors"
)

func TestTypeDeleteGuardRefusesReferencedType(t *testing.T) {
	err := typeDeleteGuard(3)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
	assert.Contains(t, apperrors.As(err).Fields, "id")
}

func TestTypeDeleteGuardAllowsUnreferencedType(t *testing.T) {
	assert.NoError(t, typeDeleteGuard(0))
}
