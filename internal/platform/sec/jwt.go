// Copyright (c) 2026 Parlo. All rights reserved.
// Author: le.huyanh.dev@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via small interfaces defined at the point of use.
package sec

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents the payload embedded inside Parlo JWTs.
//
// Both access and refresh tokens share the same claim shape: the account ID
// travels in the registered 'sub' claim and the email in a custom claim.
// Keeping the payload fixed and minimal lets the middleware reconstruct the
// caller's identity WITHOUT querying the database on every API request.
type AuthClaims struct {
	jwt.RegisteredClaims

	Email string `json:"email"`
}

// TokenService signs and verifies HS256 JWTs using two independent secrets:
// one for short-lived access tokens and one for long-lived refresh tokens.
//
// # Key Separation
//
// A leaked access secret must never allow forging refresh tokens, so the two
// lifetimes use unrelated signing keys. Both secrets are required startup
// configuration; missing or identical secrets fail fast in the constructor.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
}

// NewTokenService validates the signing configuration and returns a ready service.
func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, issuer string) (*TokenService, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("sec: access and refresh secrets must be configured")
	}
	if subtle.ConstantTimeCompare([]byte(accessSecret), []byte(refreshSecret)) == 1 {
		return nil, errors.New("sec: access and refresh secrets must differ")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("sec: token lifetimes must be positive")
	}

	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		issuer:        issuer,
	}, nil
}

// AccessTTL returns the configured access token lifetime.
func (service *TokenService) AccessTTL() time.Duration { return service.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (service *TokenService) RefreshTTL() time.Duration { return service.refreshTTL }

// # Signing

// SignAccessToken creates a short-lived access token for the given account.
func (service *TokenService) SignAccessToken(accountID, email string) (string, error) {
	return service.sign(accountID, email, service.accessSecret, service.accessTTL)
}

// SignRefreshToken creates a long-lived refresh token for the given account.
func (service *TokenService) SignRefreshToken(accountID, email string) (string, error) {
	return service.sign(accountID, email, service.refreshSecret, service.refreshTTL)
}

func (service *TokenService) sign(accountID, email string, secret []byte, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		Email: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// # Verification

// VerifyAccessToken checks the signature and validity of an access token string.
func (service *TokenService) VerifyAccessToken(tokenString string) (*AuthClaims, error) {
	return service.verify(tokenString, service.accessSecret)
}

// VerifyRefreshToken checks the signature and validity of a refresh token string.
func (service *TokenService) VerifyRefreshToken(tokenString string) (*AuthClaims, error) {
	return service.verify(tokenString, service.refreshSecret)
}

func (service *TokenService) verify(tokenString string, secret []byte) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, errors.New("sec: invalid token claims")
	}

	return claims, nil
}
