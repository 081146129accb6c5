// Copyright (c) 2026 Parlo. All rights reserved.
// Author: le.huyanh.dev@gmail.com

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// # Password Hashing

// HashPassword hashes a plain-text password using the bcrypt algorithm.
func HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}

// # Token Hashing

// HashToken computes the hex-encoded SHA-256 digest of an opaque token.
//
// # Why not bcrypt?
//
// Refresh tokens are signed JWTs, which are always longer than bcrypt's
// 72-byte input limit. SHA-256 keeps the one-way property we need for
// at-rest storage while supporting simple equality comparison on lookup.
// The input already carries full JWT entropy, so no salt is required.
func HashToken(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}

// # One-Time Codes

// otpMax bounds the 6-digit code range: 100000 + [0, 900000).
const otpMax = 900000

// GenerateOTP returns a 6-digit numeric one-time code drawn uniformly
// from [100000, 999999] using the OS CSPRNG.
func GenerateOTP() (string, error) {
	offset, err := rand.Int(rand.Reader, big.NewInt(otpMax))
	if err != nil {
		return "", fmt.Errorf("sec: failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", offset.Int64()+100000), nil
}
