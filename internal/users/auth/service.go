// Copyright (c) 2026 Parlo. All rights reserved.
// Author: le.huyanh.dev@gmail.com

/*
Package auth implements the core identity and access management (IAM) system.

It handles the two-phase signup flow (stage in cache, confirm by one-time code),
password login, and the JWT access/refresh token lifecycle.

Architecture:

  - Service: Orchestrates business logic (Register, Confirm, Login, Refresh).
  - Repository: Abstracted interfaces for Postgres (Accounts) and Redis (Pending).
  - Security: Bcrypt password hashing and HS256 dual-secret JWTs.

The package ensures that identity data remains consistent and secure throughout
the platform's lifecycle.
*/
package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"time"

	"github.com/lehuyanh/parlo/internal/platform/mailer"
	"github.com/lehuyanh/parlo/internal/platform/sec"
	"github.com/lehuyanh/parlo/pkg/textnorm"
	"github.com/lehuyanh/parlo/pkg/uuidv7"
)

// # Definitions & Constructors

// Service implements the account registration and authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to the confirmation state
// machine, hashing, or token logic must be reviewed by the security team.
type Service struct {
	accountRepository AccountRepository
	pendingLedger     PendingLedger
	tokenIssuer       *TokenIssuer
	tokenService      *sec.TokenService
	mailSender        mailer.Sender
	logger            *slog.Logger
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(
	accountRepo AccountRepository,
	pending PendingLedger,
	issuer *TokenIssuer,
	tokens *sec.TokenService,
	mail mailer.Sender,
	logger *slog.Logger,
) *Service {
	return &Service{
		accountRepository: accountRepo,
		pendingLedger:     pending,
		tokenIssuer:       issuer,
		tokenService:      tokens,
		mailSender:        mail,
		logger:            logger,
	}
}

// # Registration Flow

// RegisterInput holds the data required to stage a new signup.
type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	AvatarURL string
	Role      sec.UserRole
}

// RegisterResult is the neutral acknowledgement returned for a staged signup.
type RegisterResult struct {
	Message string `json:"message"`
	Email   string `json:"email"`
	OTPSent bool   `json:"otp_sent"`
}

/*
Register stages a new signup in the pending ledger and emails its one-time code.

Description: Nothing touches the account table here. The signup lives only in
the cache until Confirm promotes it; walking away means the TTL quietly
discards it. Re-registering the same email replaces the staged entry wholesale,
which also resets the attempt counter and any lockout.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *RegisterResult: Neutral acknowledgement (never the staged data)
  - error: Conflict (if a confirmed account exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*RegisterResult, error) {

	// Reject emails that already belong to a confirmed account. The pending
	// ledger is NOT consulted: a staged-but-unconfirmed signup is replaceable.
	_, err := service.accountRepository.FindByEmail(context, input.Email)
	if err == nil {
		return nil, errConflict()
	}

	// Prevent storing plain-text passwords. The hash is computed at staging
	// time so the cache never holds the raw password either.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Draw the one-time code from the CSPRNG
	otp, err := sec.GenerateOTP()
	if err != nil {
		return nil, fmt.Errorf("auth_service_otp_generation_failed: %w", err)
	}

	role := input.Role
	if !role.IsValid() {
		role = sec.RoleUser
	}

	// Stage the signup; last write wins for the same email
	entry := &PendingRegistration{
		Name:         textnorm.Name(input.Name),
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Role:         role,
		AvatarURL:    input.AvatarURL,
		OTP:          otp,
		Attempts:     0,
	}

	if err := service.pendingLedger.Stage(context, entry); err != nil {
		return nil, fmt.Errorf("auth_service_stage_failed: %w", err)
	}

	// Best-effort code delivery: a mail outage must not strand the signup,
	// because the user can simply register again for a fresh code.
	otpSent := true
	if err := service.mailSender.SendOTP(entry.Email, entry.Name, otp); err != nil {
		otpSent = false
		service.logger.WarnContext(context, "otp_email_delivery_failed",
			slog.String("email", entry.Email),
			slog.String("error", err.Error()),
		)
	}

	return &RegisterResult{
		Message: "Verification code sent. Confirm within 5 minutes.",
		Email:   entry.Email,
		OTPSent: otpSent,
	}, nil
}

/*
Confirm validates a one-time code and promotes the staged signup to an account.

Description: This is the verification state machine. A missing entry (never
staged, expired, or already consumed) is NO_PENDING_REGISTRATION. An entry
inside its lockout window is rejected before the code is even compared, so a
correct guess during the freeze still fails. A wrong code bumps the attempt
counter, locks the entry once the budget is spent, and reports how many tries
remain. A correct code inserts the account and consumes the entry.

Parameters:
  - context: context.Context
  - email: string
  - otp: string

Returns:
  - *TokenPair: Credentials for the freshly created account
  - error: NO_PENDING_REGISTRATION, OTP_LOCKED, INVALID_OTP, or storage errors
*/
func (service *Service) Confirm(context context.Context, email, otp string) (*TokenPair, error) {

	// Load the staged signup; absence and expiry are the same answer
	entry, err := service.pendingLedger.Load(context, email)
	if err != nil {
		return nil, err
	}

	// Lockout check runs FIRST. While the freeze lasts, the correct code is
	// as useless as a wrong one.
	if entry.LockedUntil != nil && entry.LockedUntil.After(time.Now()) {
		remaining := int(time.Until(*entry.LockedUntil).Seconds()) + 1
		return nil, errOTPLocked(remaining)
	}

	// Constant-time code comparison
	if subtle.ConstantTimeCompare([]byte(entry.OTP), []byte(otp)) != 1 {
		return nil, service.recordFailedAttempt(context, entry)
	}

	// Promote the staged signup to a confirmed account
	account := &Account{
		ID:            uuidv7.New(),
		Email:         entry.Email,
		Name:          entry.Name,
		PasswordHash:  entry.PasswordHash,
		AvatarURL:     entry.AvatarURL,
		Role:          entry.Role,
		IsActive:      true,
		EmailVerified: true,
	}

	if err := service.accountRepository.Create(context, account); err != nil {
		// A duplicate-email insert means another Confirm won the race; burn
		// the entry so the loser cannot keep retrying against a done deal.
		_ = service.pendingLedger.Clear(context, email)
		return nil, err
	}

	// The code is single-use: consume the entry before handing out tokens
	if err := service.pendingLedger.Clear(context, email); err != nil {
		service.logger.WarnContext(context, "pending_entry_clear_failed",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
	}

	return service.tokenIssuer.Issue(context, account)
}

// recordFailedAttempt bumps the attempt counter, applies the lockout once the
// budget is spent, and writes the entry back (which refreshes its TTL).
func (service *Service) recordFailedAttempt(context context.Context, entry *PendingRegistration) error {
	entry.Attempts++

	if entry.Attempts >= MaxOTPAttempts {
		lockedUntil := time.Now().Add(OTPLockDuration)
		entry.LockedUntil = &lockedUntil
	}

	// The write-back races with concurrent attempts for the same email; a
	// lost increment only grants one extra guess, never an unlock, so the
	// simple read-modify-write is acceptable here.
	if err := service.pendingLedger.Persist(context, entry); err != nil {
		return fmt.Errorf("auth_service_attempt_persist_failed: %w", err)
	}

	remaining := MaxOTPAttempts - entry.Attempts
	if remaining < 0 {
		remaining = 0
	}

	return errInvalidOTP(remaining)
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

/*
Login validates account credentials and issues a fresh token pair.

Description: Unknown email and wrong password collapse into one identical
error so the endpoint cannot be used to probe which addresses hold accounts.
Issuing replaces the account's stored refresh hash, so logging in on a new
device signs the previous device out of refreshing.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *TokenPair: Transport-ready credentials
  - error: INVALID_CREDENTIALS or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*TokenPair, error) {

	// Resolve the account. Failure reason is deliberately not disclosed.
	account, err := service.accountRepository.FindByEmail(context, input.Email)
	if err != nil {
		return nil, errInvalidCredentials()
	}

	// Deactivated accounts authenticate like unknown ones
	if !account.IsActive {
		return nil, errInvalidCredentials()
	}

	// Constant-time password comparison via bcrypt
	if !sec.CheckPasswordHash(input.Password, account.PasswordHash) {
		return nil, errInvalidCredentials()
	}

	// Best-effort bookkeeping; a failed stamp must not block the login
	if err := service.accountRepository.StampLastLogin(context, account.ID); err != nil {
		service.logger.WarnContext(context, "last_login_stamp_failed",
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()),
		)
	}

	return service.tokenIssuer.Issue(context, account)
}

// # Token Lifecycle

/*
Refresh exchanges a valid refresh token for a freshly rotated pair.

Description: Three gates in order. The token must be present; it must carry a
valid signature and unexpired claims under the refresh secret; and its hash
must match the single active hash stored on the account, within the stored
expiry. Passing all three re-issues, which rotates the stored hash and voids
the token just presented.

Parameters:
  - context: context.Context
  - presented: string (raw refresh token)

Returns:
  - *TokenPair: Rotated credentials
  - error: MISSING_REFRESH_TOKEN, INVALID_REFRESH_TOKEN, REFRESH_TOKEN_MISMATCH
*/
func (service *Service) Refresh(context context.Context, presented string) (*TokenPair, error) {

	// Gate 1: the token must be present at all
	if presented == "" {
		return nil, errMissingRefreshToken()
	}

	// Gate 2: cryptographic verification against the refresh secret
	claims, err := service.tokenService.VerifyRefreshToken(presented)
	if err != nil {
		return nil, errInvalidRefreshToken()
	}

	// Gate 3: the token must still be the account's single active one.
	// A valid signature is not enough; rotation or logout may have
	// superseded this token since it was minted.
	account, err := service.accountRepository.FindByID(context, claims.Subject)
	if err != nil {
		return nil, errRefreshTokenMismatch()
	}

	presentedHash := sec.HashToken(presented)
	if subtle.ConstantTimeCompare([]byte(presentedHash), []byte(account.RefreshTokenHash)) != 1 {
		return nil, errRefreshTokenMismatch()
	}

	if account.RefreshTokenExpiry == nil || account.RefreshTokenExpiry.Before(time.Now()) {
		return nil, errRefreshTokenMismatch()
	}

	// Rotation: issuing overwrites the stored hash, voiding this token
	return service.tokenIssuer.Issue(context, account)
}

/*
Logout revokes the account's active refresh token.

Description: Idempotent by design. An invalid, already-rotated, or absent
token means there is nothing left to revoke, which is indistinguishable from
success as far as the client is concerned.

Parameters:
  - context: context.Context
  - presented: string (raw refresh token, may be empty)

Returns:
  - error: Persistence failures only
*/
func (service *Service) Logout(context context.Context, presented string) error {

	// Nothing presented, nothing to revoke
	if presented == "" {
		return nil
	}

	// An unverifiable token cannot identify an account; treat as done
	claims, err := service.tokenService.VerifyRefreshToken(presented)
	if err != nil {
		return nil
	}

	account, err := service.accountRepository.FindByID(context, claims.Subject)
	if err != nil {
		return nil
	}

	// Only the holder of the ACTIVE token may revoke it; a stale token
	// must not sign out the session that superseded it.
	presentedHash := sec.HashToken(presented)
	if subtle.ConstantTimeCompare([]byte(presentedHash), []byte(account.RefreshTokenHash)) != 1 {
		return nil
	}

	if err := service.accountRepository.UpdateRefreshToken(context, account.ID, "", nil); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}
