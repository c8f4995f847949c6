// Package cryptox derives and checks password digests.
package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	SaltSize   = 16
	DigestSize = 32

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// NewSalt returns SaltSize random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// DigestPassword derives the stored digest of password with argon2id.
func DigestPassword(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, DigestSize)
}

// CheckPassword recomputes the digest of candidate and compares it with
// digest in constant time.
func CheckPassword(candidate string, salt, digest []byte) bool {
	if len(digest) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(DigestPassword(candidate, salt), digest) == 1
}
