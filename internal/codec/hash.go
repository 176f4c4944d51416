package codec

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hasher turns a plaintext secret into the digest that is stored.
type Hasher interface {
	Hash(plain string) string
}

// SHA256 stores the lowercase hex SHA-256 digest of the plaintext.
type SHA256 struct{}

// Hash implements Hasher.
func (SHA256) Hash(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// HashFunc adapts a plain function to Hasher.
type HashFunc func(plain string) string

// Hash implements Hasher.
func (f HashFunc) Hash(plain string) string { return f(plain) }
