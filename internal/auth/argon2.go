// Package auth provides credential hashing, token issuance and request
// identity helpers.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Params are the Argon2id cost parameters.
type Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	KeyLength   uint32
	SaltLength  uint32
}

// DefaultParams follow the OWASP 2024 recommended minimum for Argon2id.
var DefaultParams = Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 4,
	KeyLength:   32,
	SaltLength:  16,
}

// Credential is a digest together with the salt that produced it.
type Credential struct {
	Hash string
	Salt string
}

// Hasher derives deterministic digests from secrets and explicit salts.
// Passwords and security answers are both stored through a Hasher, each with
// its own salt.
type Hasher struct {
	params Params
}

// NewHasher creates a Hasher. Zero-valued fields fall back to DefaultParams.
func NewHasher(p Params) *Hasher {
	if p.Memory == 0 {
		p.Memory = DefaultParams.Memory
	}
	if p.Iterations == 0 {
		p.Iterations = DefaultParams.Iterations
	}
	if p.Parallelism == 0 {
		p.Parallelism = DefaultParams.Parallelism
	}
	if p.KeyLength == 0 {
		p.KeyLength = DefaultParams.KeyLength
	}
	if p.SaltLength == 0 {
		p.SaltLength = DefaultParams.SaltLength
	}
	return &Hasher{params: p}
}

// NewSalt returns a fresh random salt from the system CSPRNG.
func (h *Hasher) NewSalt() (string, error) {
	b := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return base64.RawStdEncoding.EncodeToString(b), nil
}

// Hash returns the hex digest of secret under salt.
// An empty secret or salt yields the empty string, which never matches a
// stored credential.
func (h *Hasher) Hash(secret, salt string) string {
	if secret == "" || salt == "" {
		return ""
	}
	key := argon2.IDKey(
		[]byte(secret),
		[]byte(salt),
		h.params.Iterations,
		h.params.Memory,
		h.params.Parallelism,
		h.params.KeyLength,
	)
	return hex.EncodeToString(key)
}

// Verify reports whether secret hashes to digest under salt.
// Comparison is constant time.
func (h *Hasher) Verify(secret, salt, digest string) bool {
	if digest == "" {
		return false
	}
	computed := h.Hash(secret, salt)
	if computed == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}

// Derive creates a new salt and hashes secret with it.
func (h *Hasher) Derive(secret string) (Credential, error) {
	salt, err := h.NewSalt()
	if err != nil {
		return Credential{}, err
	}
	return Credential{Hash: h.Hash(secret, salt), Salt: salt}, nil
}

// DeriveAnswer normalizes a security answer and derives its credential.
func (h *Hasher) DeriveAnswer(answer string) (Credential, error) {
	return h.Derive(NormalizeAnswer(answer))
}

// VerifyAnswer normalizes answer before comparing it to the stored digest.
func (h *Hasher) VerifyAnswer(answer, salt, digest string) bool {
	return h.Verify(NormalizeAnswer(answer), salt, digest)
}

// NormalizeAnswer trims surrounding whitespace and lowercases the answer so
// that "  Fluffy " and "fluffy" are the same answer.
func NormalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}
