package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Iterations is the PBKDF2 work factor.
	Iterations = 100_000
	saltSize   = 32
	keySize    = 32
)

// HashPassword derives a key from password with a fresh random salt and
// returns "salthex:keyhex".
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := derive(password, salt)
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(key), nil
}

// VerifyPassword reports whether password matches encoded. A malformed
// encoded value never matches.
func VerifyPassword(password, encoded string) bool {
	saltHex, keyHex, ok := strings.Cut(encoded, ":")
	if !ok {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil || len(salt) == 0 {
		return false
	}
	want, err := hex.DecodeString(keyHex)
	if err != nil || len(want) != keySize {
		return false
	}
	return subtle.ConstantTimeCompare(derive(password, salt), want) == 1
}

func derive(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, Iterations, keySize, sha256.New)
}
