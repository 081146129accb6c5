// Copyright (c) 2026 Parlo. All rights reserved.
// Author: le.huyanh.dev@gmail.com

package sec_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehuyanh/parlo/internal/platform/sec"
)

func newTokenService(t *testing.T, accessTTL, refreshTTL time.Duration) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService("access-secret", "refresh-secret", accessTTL, refreshTTL, "parlo.test")
	require.NoError(t, err)
	return service
}

/*
TestHashPassword covers the bcrypt round-trip and rejection of wrong input.
*/
func TestHashPassword(t *testing.T) {
	hash, err := sec.HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", hash)

	assert.True(t, sec.CheckPasswordHash("hunter2hunter2", hash))
	assert.False(t, sec.CheckPasswordHash("wrong password", hash))
	assert.False(t, sec.CheckPasswordHash("hunter2hunter2", "not-a-hash"))
}

/*
TestHashToken verifies the digest is deterministic, hex-encoded, and input
length independent (the reason bcrypt is unusable for JWT-sized inputs).
*/
func TestHashToken(t *testing.T) {
	long := "eyJhbGciOiJIUzI1NiJ9." + string(make([]byte, 500))

	first := sec.HashToken(long)
	second := sec.HashToken(long)
	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	assert.NotEqual(t, first, sec.HashToken(long+"x"))
}

/*
TestGenerateOTP checks the 6-digit shape across many draws.
*/
func TestGenerateOTP(t *testing.T) {
	pattern := regexp.MustCompile(`^[1-9][0-9]{5}$`)

	for i := 0; i < 200; i++ {
		otp, err := sec.GenerateOTP()
		require.NoError(t, err)
		assert.Regexp(t, pattern, otp)
	}
}

/*
TestNewTokenService_Validation covers the fail-fast configuration checks.
*/
func TestNewTokenService_Validation(t *testing.T) {
	tests := []struct {
		name          string
		accessSecret  string
		refreshSecret string
		accessTTL     time.Duration
		refreshTTL    time.Duration
	}{
		{"empty_access_secret", "", "b", time.Minute, time.Hour},
		{"empty_refresh_secret", "a", "", time.Minute, time.Hour},
		{"identical_secrets", "same", "same", time.Minute, time.Hour},
		{"zero_access_ttl", "a", "b", 0, time.Hour},
		{"negative_refresh_ttl", "a", "b", time.Minute, -time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sec.NewTokenService(tt.accessSecret, tt.refreshSecret, tt.accessTTL, tt.refreshTTL, "parlo.test")
			assert.Error(t, err)
		})
	}
}

/*
TestTokenService_RoundTrip verifies claims survive the sign/verify cycle and
that each verifier only accepts its own token kind.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newTokenService(t, 15*time.Minute, 168*time.Hour)

	accessToken, err := service.SignAccessToken("account-1", "alice@example.com")
	require.NoError(t, err)
	refreshToken, err := service.SignRefreshToken("account-1", "alice@example.com")
	require.NoError(t, err)

	claims, err := service.VerifyAccessToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, "account-1", claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "parlo.test", claims.Issuer)

	// Cross-secret verification fails both ways
	_, err = service.VerifyRefreshToken(accessToken)
	assert.Error(t, err)
	_, err = service.VerifyAccessToken(refreshToken)
	assert.Error(t, err)
}

/*
TestTokenService_Expiry verifies expired tokens are rejected.
*/
func TestTokenService_Expiry(t *testing.T) {
	service := newTokenService(t, time.Millisecond, 168*time.Hour)

	token, err := service.SignAccessToken("account-1", "alice@example.com")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = service.VerifyAccessToken(token)
	assert.Error(t, err)
}

/*
TestTokenService_TamperedToken verifies signature enforcement.
*/
func TestTokenService_TamperedToken(t *testing.T) {
	service := newTokenService(t, 15*time.Minute, 168*time.Hour)

	token, err := service.SignAccessToken("account-1", "alice@example.com")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = service.VerifyAccessToken(tampered)
	assert.Error(t, err)
}
