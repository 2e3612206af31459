// Package cryptox implements the salted password hashing scheme used for
// dashboard accounts: a random per-account salt plus an Argon2id digest.
package cryptox

import (
	"crypto/subtle"

	"github.com/rasgroup/bagcapturer/internal/common"
	"golang.org/x/crypto/argon2"
)

// HashSize is the length in bytes of a password digest.
const HashSize = 32

// SaltSize is the length in bytes of a per-account salt.
const SaltSize = 32

// GenerateSalt returns a new random salt.
func GenerateSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// HashPassword derives the stored digest for a password and salt.
func HashPassword(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, HashSize)
}

// IsCorrectPassword reports whether password, combined with salt, matches the
// stored digest. The comparison is constant-time.
func IsCorrectPassword(salt, stored, password []byte) bool {
	if len(salt) == 0 || len(stored) != HashSize {
		return false
	}
	candidate := HashPassword(password, salt)
	return subtle.ConstantTimeCompare(stored, candidate) == 1
}
