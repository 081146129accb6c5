// Copyright (c) 2026 Parlo. All rights reserved.
// Author: le.huyanh.dev@gmail.com

/*
Package auth implements the user identity and session management layer.

It defines the core domain entities (Account, PendingRegistration) and logic
for the two-phase registration flow, authentication, and token lifecycle.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity.
*/
package auth

import (
	"time"

	"github.com/lehuyanh/parlo/internal/platform/sec"
)

// # Domain Entities

// Account represents a confirmed member of the Parlo platform.
type Account struct {
	ID            string       `json:"id"`
	Email         string       `json:"email"`
	Name          string       `json:"name"`
	PasswordHash  string       `json:"-"` // Explicitly omitted from JSON for security.
	AvatarURL     string       `json:"avatar_url,omitempty"`
	Role          sec.UserRole `json:"role"`
	IsActive      bool         `json:"is_active"`
	EmailVerified bool         `json:"email_verified"`
	LastLoginAt   *time.Time   `json:"last_login_at,omitempty"`

	// RefreshTokenHash is the SHA-256 digest of the single active refresh
	// token. Issuing a new pair overwrites it, which invalidates the
	// previous token on the next refresh attempt.
	RefreshTokenHash   string     `json:"-"`
	RefreshTokenExpiry *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PendingRegistration is a staged, not-yet-confirmed signup held in the cache.
//
// # Lifecycle
//
// Created by Register, mutated by failed Confirm attempts, and either promoted
// to an [Account] on a correct code or silently expired by the cache TTL.
// The JSON field names are the cache wire format and must stay stable across
// deployments: entries written by one release are read by the next.
type PendingRegistration struct {
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"password"`
	Role         sec.UserRole `json:"role"`
	AvatarURL    string       `json:"avatarUrl,omitempty"`
	OTP          string       `json:"otp"`
	Attempts     int          `json:"attempts"`

	// LockedUntil is non-nil while the entry is serving a lockout window.
	// It is never cleared: an expired lock is simply a lock in the past.
	LockedUntil *time.Time `json:"lockedUntil,omitempty"`
}

// TokenPair is the transport-ready result of a successful authentication.
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	RefreshTokenExpiresAt time.Time `json:"-"`
	Account               *Account  `json:"-"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldName        = "name"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldAvatarURL   = "avatar_url"
	FieldOTP         = "otp"
	FieldAccessToken = "access_token"
	FieldTokenType   = "token_type"
	FieldExpiresIn   = "expires_in"
	FieldUser        = "user"
	FieldMessage     = "message"
	FieldOTPSent     = "otp_sent"
)
