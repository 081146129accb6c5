// Copyright (c) 2026 Parlo. All rights reserved.
// Author: le.huyanh.dev@gmail.com

package auth

import (
	"fmt"

	"github.com/lehuyanh/parlo/internal/platform/apperr"
)

// # Error Taxonomy
//
// Every client-visible failure of the registration and token flows maps to a
// stable machine code so that mobile and web clients can branch on it without
// parsing human-readable messages.

// errConflict reports that the email already belongs to a confirmed account.
func errConflict() *apperr.AppError {
	return apperr.Conflict("Email is already registered")
}

// errNoPendingRegistration reports that no staged signup exists for the email.
// Raised both when nothing was ever staged and when the cache TTL elapsed;
// the two cases are indistinguishable on purpose.
func errNoPendingRegistration() *apperr.AppError {
	return apperr.NotFound("Pending registration").
		WithCode("NO_PENDING_REGISTRATION")
}

// errOTPLocked reports that verification is frozen after too many wrong codes.
func errOTPLocked(remainingSeconds int) *apperr.AppError {
	return apperr.Forbidden(fmt.Sprintf(
		"Too many incorrect codes. Try again in %d seconds", remainingSeconds)).
		WithCode("OTP_LOCKED")
}

// errInvalidOTP reports a wrong code together with the attempts still allowed.
func errInvalidOTP(remainingAttempts int) *apperr.AppError {
	return apperr.Unauthorized(fmt.Sprintf(
		"Incorrect verification code. %d attempts remaining", remainingAttempts)).
		WithCode("INVALID_OTP")
}

// errInvalidCredentials is the single error for both unknown email and wrong
// password, so a caller cannot probe which addresses hold accounts.
func errInvalidCredentials() *apperr.AppError {
	return apperr.Unauthorized("Invalid email or password").
		WithCode("INVALID_CREDENTIALS")
}

// errMissingRefreshToken reports that the refresh request carried no token.
func errMissingRefreshToken() *apperr.AppError {
	return apperr.Unauthorized("Missing refresh token").
		WithCode("MISSING_REFRESH_TOKEN")
}

// errInvalidRefreshToken reports a refresh token that failed signature or
// expiry verification.
func errInvalidRefreshToken() *apperr.AppError {
	return apperr.Unauthorized("Invalid or expired refresh token").
		WithCode("INVALID_REFRESH_TOKEN")
}

// errRefreshTokenMismatch reports a cryptographically valid token that does
// not match the account's stored hash. The token was rotated out, revoked by
// logout, or the account no longer exists; all collapse to one answer.
func errRefreshTokenMismatch() *apperr.AppError {
	return apperr.Unauthorized("Refresh token is no longer active").
		WithCode("REFRESH_TOKEN_MISMATCH")
}
