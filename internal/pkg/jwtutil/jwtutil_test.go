package jwtutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("test-secret", time.Hour, "user_abc123", "student@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken("test-secret", token)
	require.NoError(t, err)
	assert.Equal(t, "user_abc123", claims.UserID)
	assert.Equal(t, "student@example.com", claims.Email)
	assert.Equal(t, "user_abc123", claims.Subject)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", time.Hour, "user_abc123", "student@example.com")
	require.NoError(t, err)

	_, err = ParseToken("secret-b", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken("test-secret", -time.Minute, "user_abc123", "student@example.com")
	require.NoError(t, err)

	_, err = ParseToken("test-secret", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken("test-secret", "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
