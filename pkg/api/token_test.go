package api

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": exp.Unix(),
	}).SignedString([]byte("server-only-secret"))
	require.NoError(t, err)

	got, ok := TokenExpiry(token)
	require.True(t, ok)
	assert.True(t, got.Equal(exp), "expiry = %v, want %v", got, exp)
	assert.Equal(t, "42", TokenSubject(token))
}

func TestTokenExpiryRejectsGarbage(t *testing.T) {
	_, ok := TokenExpiry("not-a-jwt")
	assert.False(t, ok)

	_, ok = TokenExpiry("")
	assert.False(t, ok)
}
