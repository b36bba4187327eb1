package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	hash, err := HashPassword("password123", 4) // min cost keeps the test fast
	require.NoError(t, err)
	require.NotEqual(t, "password123", hash)

	assert.True(t, VerifyPassword(hash, "password123"))
	assert.False(t, VerifyPassword(hash, "wrongpassword"))
}

func TestHashPassword_DistinctSalts(t *testing.T) {
	h1, err := HashPassword("password123", 4)
	require.NoError(t, err)
	h2, err := HashPassword("password123", 4)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2, "bcrypt salts every hash")
}
