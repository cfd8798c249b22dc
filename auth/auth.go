// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

const base62Chars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// PasswordCost is the bcrypt cost for new hashes. Tests lower it.
var PasswordCost = bcrypt.DefaultCost

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID string
	Name   string
}

// GenerateShareCode creates a random base62 code of the given length.
// Uniqueness is enforced by the store; callers retry on collision.
func GenerateShareCode(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate share code: %w", err)
	}

	// 62*4 = 248, so rejecting bytes >= 248 keeps the distribution uniform
	code := make([]byte, 0, length)
	for len(code) < length {
		for _, c := range b {
			if c >= 248 {
				continue
			}
			code = append(code, base62Chars[c%62])
			if len(code) == length {
				break
			}
		}
		if len(code) < length {
			if _, err := rand.Read(b); err != nil {
				return "", fmt.Errorf("failed to generate share code: %w", err)
			}
		}
	}
	return string(code), nil
}

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares password against a bcrypt hash.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
