// Package auth holds the pluggable password digest strategies used by
// registration and login.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	SHA256 = "sha256"
	Bcrypt = "bcrypt"
)

// Hasher produces and checks password digests.
type Hasher interface {
	Name() string
	Hash(password string) (string, error)
	Verify(digest, password string) bool
}

// NewHasher returns the strategy registered under name. An empty name
// selects SHA-256.
func NewHasher(name string) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", SHA256:
		return SHA256Hasher{}, nil
	case Bcrypt:
		return BcryptHasher{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q (use sha256 or bcrypt)", name)
	}
}

// SHA256Hasher stores the unsalted hex SHA-256 of the password.
type SHA256Hasher struct{}

func (SHA256Hasher) Name() string { return SHA256 }

func (SHA256Hasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

func (h SHA256Hasher) Verify(digest, password string) bool {
	want, _ := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(digest)), []byte(want)) == 1
}

type BcryptHasher struct {
	Cost int
}

func (BcryptHasher) Name() string { return Bcrypt }

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func (BcryptHasher) Verify(digest, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// Verify checks password against a stored digest of either format, so a
// change of the configured hasher does not lock out existing users.
func Verify(digest, password string) bool {
	if isBcryptDigest(digest) {
		return BcryptHasher{}.Verify(digest, password)
	}
	return SHA256Hasher{}.Verify(digest, password)
}

func isBcryptDigest(digest string) bool {
	return strings.HasPrefix(digest, "$2a$") || strings.HasPrefix(digest, "$2b$") || strings.HasPrefix(digest, "$2y$")
}
