package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashSecret(t *testing.T) {
	hashed, err := HashSecret("testpassword")
	require.NoError(t, err)
	assert.NotEmpty(t, hashed)
	assert.NotEqual(t, "testpassword", hashed)

	assert.True(t, CheckSecretHash("testpassword", hashed))
	assert.False(t, CheckSecretHash("wrongpassword", hashed))
}

func TestHashSecret_PIN(t *testing.T) {
	a, err := HashSecret("0420")
	require.NoError(t, err)
	b, err := HashSecret("0420")
	require.NoError(t, err)
	// salted
	assert.NotEqual(t, a, b)
	assert.True(t, CheckSecretHash("0420", a))
	assert.True(t, CheckSecretHash("0420", b))
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("test@example.com"))
	assert.True(t, IsEmail("another.test@sub.domain.co.uk"))

	assert.False(t, IsEmail("invalid-email"))
	assert.False(t, IsEmail("invalid@.com"))
	assert.False(t, IsEmail("@example.com"))
}
