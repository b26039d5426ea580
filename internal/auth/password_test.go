package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	t.Run("hashes a valid password", func(t *testing.T) {
		hash, err := HashPassword("correct-horse-battery", bcrypt.MinCost)
		require.NoError(t, err)
		assert.NotEmpty(t, hash)
		assert.NotEqual(t, "correct-horse-battery", hash)
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		_, err := HashPassword("short", bcrypt.MinCost)
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("rejects passwords over the bcrypt limit", func(t *testing.T) {
		_, err := HashPassword(strings.Repeat("a", 73), bcrypt.MinCost)
		assert.ErrorIs(t, err, ErrPasswordTooLong)
	})
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, CheckPassword("correct-horse-battery", hash))
	assert.ErrorIs(t, CheckPassword("wrong-horse-battery", hash), ErrInvalidPassword)
}

func TestGenerateSessionSecret(t *testing.T) {
	first, err := GenerateSessionSecret()
	require.NoError(t, err)
	assert.Len(t, first, 64) // 32 bytes, hex-encoded

	second, err := GenerateSessionSecret()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
