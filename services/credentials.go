package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Hasher turns secrets into stored credential hashes and verifies them.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(hash, secret string) (bool, error)
}

// BcryptHasher stores credentials as bcrypt hashes.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(secret string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports a mismatch as (false, nil); other failures, such as a malformed
// stored hash, are returned as errors.
func (h BcryptHasher) Verify(hash, secret string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
