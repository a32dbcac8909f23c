package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateToken("uid-42", "user@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-42", claims.Subject)
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestParseTokenExpired(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateToken("uid-42", "user@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseTokenWrongSecret(t *testing.T) {
	SetJWTSecret("secret-a")
	token, err := GenerateToken("uid-42", "user@example.com", time.Hour)
	require.NoError(t, err)

	SetJWTSecret("secret-b")
	_, err = ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractNameFromEmail(t *testing.T) {
	assert.Equal(t, "jane", ExtractNameFromEmail("jane@example.com"))
	assert.Equal(t, "no-at-sign", ExtractNameFromEmail("no-at-sign"))
}
