// Copyright (c) 2026 Parlo. All rights reserved.
// Author: le.huyanh.dev@gmail.com

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehuyanh/parlo/internal/platform/sec"
	"github.com/lehuyanh/parlo/internal/users/auth"
)

/*
TestTokenIssuer_Issue verifies that issuance signs both tokens and anchors
only the refresh token's hash to the account.
*/
func TestTokenIssuer_Issue(t *testing.T) {
	tokens, err := sec.NewTokenService(
		"test-access-secret", "test-refresh-secret",
		15*time.Minute, 168*time.Hour, "parlo.test",
	)
	require.NoError(t, err)

	accounts := newMemoryAccountRepository()
	account := &auth.Account{
		ID:    "0191b4c0-0000-7000-8000-000000000001",
		Email: "alice@example.com",
	}
	require.NoError(t, accounts.Create(context.Background(), account))

	issuer := auth.NewTokenIssuer(tokens, accounts)
	pair, err := issuer.Issue(context.Background(), account)
	require.NoError(t, err)

	// Both tokens verify under their own secret and carry the identity
	accessClaims, err := tokens.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, account.ID, accessClaims.Subject)

	refreshClaims, err := tokens.VerifyRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, account.ID, refreshClaims.Subject)
	assert.Equal(t, account.Email, refreshClaims.Email)

	// Cross-verification must fail: the secrets are independent
	_, err = tokens.VerifyRefreshToken(pair.AccessToken)
	require.Error(t, err)
	_, err = tokens.VerifyAccessToken(pair.RefreshToken)
	require.Error(t, err)

	// Storage holds the digest, never the raw token
	stored, err := accounts.FindByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, sec.HashToken(pair.RefreshToken), stored.RefreshTokenHash)
	assert.NotEqual(t, pair.RefreshToken, stored.RefreshTokenHash)

	require.NotNil(t, stored.RefreshTokenExpiry)
	assert.WithinDuration(t, time.Now().Add(168*time.Hour), *stored.RefreshTokenExpiry, time.Minute)
	assert.Equal(t, *stored.RefreshTokenExpiry, pair.RefreshTokenExpiresAt)
}
