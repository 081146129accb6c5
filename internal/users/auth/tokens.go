// Copyright (c) 2026 Parlo. All rights reserved.
// Author: le.huyanh.dev@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/lehuyanh/parlo/internal/platform/sec"
)

// # Token Issuance

// TokenIssuer mints access/refresh token pairs and anchors the refresh token
// to the account row.
//
// # Single Active Token
//
// Only the hash of the most recently issued refresh token is stored, so each
// issuance implicitly revokes its predecessor. A stolen-then-rotated token
// fails the hash comparison on its next use.
type TokenIssuer struct {
	tokens   *sec.TokenService
	accounts AccountRepository
}

// NewTokenIssuer constructs a [TokenIssuer] from its dependencies.
func NewTokenIssuer(tokens *sec.TokenService, accounts AccountRepository) *TokenIssuer {
	return &TokenIssuer{tokens: tokens, accounts: accounts}
}

/*
Issue signs a fresh access/refresh pair for the account and persists the
refresh token's hash.

Description: The raw refresh token exists only in the return value; storage
sees its SHA-256 digest plus the expiry deadline. Signing happens before the
database write so a persistence failure never leaks a half-issued pair.

Parameters:
  - context: context.Context
  - account: *Account

Returns:
  - *TokenPair: Transport-ready credentials
  - error: Signing or persistence failures
*/
func (issuer *TokenIssuer) Issue(context context.Context, account *Account) (*TokenPair, error) {

	// Sign the short-lived access token
	accessToken, err := issuer.tokens.SignAccessToken(account.ID, account.Email)
	if err != nil {
		return nil, fmt.Errorf("token_issuer_access_sign_failed: %w", err)
	}

	// Sign the long-lived refresh token
	refreshToken, err := issuer.tokens.SignRefreshToken(account.ID, account.Email)
	if err != nil {
		return nil, fmt.Errorf("token_issuer_refresh_sign_failed: %w", err)
	}

	// Anchor the refresh token to the account: hash at rest, never the raw value.
	expiresAt := time.Now().Add(issuer.tokens.RefreshTTL())
	tokenHash := sec.HashToken(refreshToken)
	if err := issuer.accounts.UpdateRefreshToken(context, account.ID, tokenHash, &expiresAt); err != nil {
		return nil, fmt.Errorf("token_issuer_persist_failed: %w", err)
	}

	return &TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		Account:               account,
	}, nil
}

// AccessTTL exposes the configured access token lifetime for transport metadata.
func (issuer *TokenIssuer) AccessTTL() time.Duration {
	return issuer.tokens.AccessTTL()
}
