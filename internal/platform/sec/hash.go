// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives for credentials and tokens.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, random tokens) from
// the domain logic. Workflows depend on the small [PasswordHasher] contract so
// tests can swap bcrypt for a cheaper cost.
package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and checks plain-text passwords.
type PasswordHasher interface {
	Hash(plainTextPassword string) (string, error)
	Check(plainTextPassword, existingHash string) bool
}

// BcryptHasher implements [PasswordHasher] with a fixed bcrypt cost.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, or [bcrypt.DefaultCost] when
// cost is outside the bcrypt range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash implements [PasswordHasher].
func (hasher *BcryptHasher) Hash(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), hasher.cost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// Check implements [PasswordHasher]. The comparison is constant time.
func (hasher *BcryptHasher) Check(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}
