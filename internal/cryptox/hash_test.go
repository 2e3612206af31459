package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_Deterministic(t *testing.T) {
	salt := GenerateSalt()
	a := HashPassword([]byte("secret"), salt)
	b := HashPassword([]byte("secret"), salt)
	assert.Equal(t, a, b)
	assert.Len(t, a, HashSize)
}

func TestIsCorrectPassword_Accepts(t *testing.T) {
	salt := GenerateSalt()
	stored := HashPassword([]byte("secret"), salt)
	assert.True(t, IsCorrectPassword(salt, stored, []byte("secret")))
}

func TestIsCorrectPassword_RejectsWrongPassword(t *testing.T) {
	salt := GenerateSalt()
	stored := HashPassword([]byte("secret"), salt)
	assert.False(t, IsCorrectPassword(salt, stored, []byte("wrong")))
}

func TestIsCorrectPassword_RejectsWrongSalt(t *testing.T) {
	salt := GenerateSalt()
	stored := HashPassword([]byte("secret"), salt)
	other := GenerateSalt()
	require.NotEqual(t, salt, other)
	assert.False(t, IsCorrectPassword(other, stored, []byte("secret")))
}

func TestIsCorrectPassword_FailsClosedOnMalformedInput(t *testing.T) {
	salt := GenerateSalt()
	stored := HashPassword([]byte("secret"), salt)

	assert.False(t, IsCorrectPassword(nil, stored, []byte("secret")))
	assert.False(t, IsCorrectPassword(salt, nil, []byte("secret")))
	assert.False(t, IsCorrectPassword(salt, stored[:HashSize-1], []byte("secret")))
}
