package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	DigestBcrypt = "bcrypt"
	DigestSHA256 = "sha256"
)

// PasswordHasher is the one-way digest applied to secrets before they are
// stored or compared.
type PasswordHasher interface {
	Digest(secret string) (string, error)
	Matches(digest, secret string) bool
}

// NewPasswordHasher returns the hasher registered under name.
func NewPasswordHasher(name string) (PasswordHasher, error) {
	switch name {
	case DigestBcrypt, "":
		return BcryptHasher{Cost: bcrypt.DefaultCost}, nil
	case DigestSHA256:
		return SHA256Hasher{}, nil
	default:
		return nil, fmt.Errorf("unknown password digest %q", name)
	}
}

// BcryptHasher is the default hasher.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Digest(secret string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt digest: %w", err)
	}
	return string(hash), nil
}

func (h BcryptHasher) Matches(digest, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}

// SHA256Hasher produces lowercase hex SHA-256 digests, the format older
// PodFetch databases store.
type SHA256Hasher struct{}

func (SHA256Hasher) Digest(secret string) (string, error) {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:]), nil
}

func (h SHA256Hasher) Matches(digest, secret string) bool {
	want, _ := h.Digest(secret)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(want)) == 1
}
