// Copyright (c) 2026 Parlo. All rights reserved.
// Author: le.huyanh.dev@gmail.com

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehuyanh/parlo/internal/platform/apperr"
	"github.com/lehuyanh/parlo/internal/platform/sec"
	"github.com/lehuyanh/parlo/internal/users/auth"
)

// # Test Doubles

// memoryAccountRepository is an in-memory AccountRepository for service tests.
type memoryAccountRepository struct {
	mu       sync.Mutex
	accounts map[string]*auth.Account // keyed by ID
}

func newMemoryAccountRepository() *memoryAccountRepository {
	return &memoryAccountRepository{accounts: make(map[string]*auth.Account)}
}

func (repo *memoryAccountRepository) FindByID(_ context.Context, id string) (*auth.Account, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	account, ok := repo.accounts[id]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	clone := *account
	return &clone, nil
}

func (repo *memoryAccountRepository) FindByEmail(_ context.Context, email string) (*auth.Account, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, account := range repo.accounts {
		if account.Email == email {
			clone := *account
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (repo *memoryAccountRepository) Create(_ context.Context, account *auth.Account) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, existing := range repo.accounts {
		if existing.Email == account.Email {
			return apperr.Conflict("Account already exists")
		}
	}
	account.CreatedAt = time.Now()
	account.UpdatedAt = time.Now()
	clone := *account
	repo.accounts[account.ID] = &clone
	return nil
}

func (repo *memoryAccountRepository) UpdateRefreshToken(_ context.Context, accountID, tokenHash string, expiresAt *time.Time) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if account, ok := repo.accounts[accountID]; ok {
		account.RefreshTokenHash = tokenHash
		account.RefreshTokenExpiry = expiresAt
	}
	return nil
}

func (repo *memoryAccountRepository) StampLastLogin(_ context.Context, accountID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if account, ok := repo.accounts[accountID]; ok {
		now := time.Now()
		account.LastLoginAt = &now
	}
	return nil
}

// recordingMailSender captures OTP deliveries so tests can replay the code.
type recordingMailSender struct {
	mu      sync.Mutex
	lastOTP string
	sends   int
	fail    error
}

func (sender *recordingMailSender) SendOTP(_, _, otp string) error {
	sender.mu.Lock()
	defer sender.mu.Unlock()

	if sender.fail != nil {
		return sender.fail
	}
	sender.lastOTP = otp
	sender.sends++
	return nil
}

func (sender *recordingMailSender) LastOTP() string {
	sender.mu.Lock()
	defer sender.mu.Unlock()
	return sender.lastOTP
}

// # Harness

type serviceHarness struct {
	service  *auth.Service
	accounts *memoryAccountRepository
	mail     *recordingMailSender
	tokens   *sec.TokenService
	redis    *miniredis.Miniredis
}

func newServiceHarness(t *testing.T) *serviceHarness {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tokens, err := sec.NewTokenService(
		"test-access-secret", "test-refresh-secret",
		15*time.Minute, 168*time.Hour, "parlo.test",
	)
	require.NoError(t, err)

	accounts := newMemoryAccountRepository()
	mail := &recordingMailSender{}
	ledger := auth.NewRedisPendingLedger(client)
	issuer := auth.NewTokenIssuer(tokens, accounts)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &serviceHarness{
		service:  auth.NewService(accounts, ledger, issuer, tokens, mail, logger),
		accounts: accounts,
		mail:     mail,
		tokens:   tokens,
		redis:    server,
	}
}

func registerInputFixture() auth.RegisterInput {
	return auth.RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "correct horse battery",
	}
}

// registerAndConfirm walks the happy two-phase flow and returns the token pair.
func (h *serviceHarness) registerAndConfirm(t *testing.T, input auth.RegisterInput) *auth.TokenPair {
	t.Helper()

	_, err := h.service.Register(context.Background(), input)
	require.NoError(t, err)

	pair, err := h.service.Confirm(context.Background(), input.Email, h.mail.LastOTP())
	require.NoError(t, err)
	return pair
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae, "expected an AppError, got %v", err)
	assert.Equal(t, code, ae.Code)
}

// # Registration

/*
TestService_Register_StagesWithoutAccount verifies that registration stages
the signup and sends the code, without creating an account row.
*/
func TestService_Register_StagesWithoutAccount(t *testing.T) {
	h := newServiceHarness(t)

	result, err := h.service.Register(context.Background(), registerInputFixture())
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", result.Email)
	assert.True(t, result.OTPSent)
	assert.Len(t, h.mail.LastOTP(), 6)

	// No account exists yet
	_, err = h.accounts.FindByEmail(context.Background(), "alice@example.com")
	require.Error(t, err)
}

/*
TestService_Register_ConflictOnExistingAccount verifies the 409 path for an
email that already holds a confirmed account.
*/
func TestService_Register_ConflictOnExistingAccount(t *testing.T) {
	h := newServiceHarness(t)
	h.registerAndConfirm(t, registerInputFixture())

	_, err := h.service.Register(context.Background(), registerInputFixture())
	assertCode(t, err, "CONFLICT")
}

/*
TestService_Register_MailFailureDoesNotFail verifies that an email outage is
reported via the otp_sent flag, not as an error.
*/
func TestService_Register_MailFailureDoesNotFail(t *testing.T) {
	h := newServiceHarness(t)
	h.mail.fail = assert.AnError

	result, err := h.service.Register(context.Background(), registerInputFixture())
	require.NoError(t, err)
	assert.False(t, result.OTPSent)
}

// # Confirmation State Machine

/*
TestService_Confirm_HappyPath verifies that a correct code promotes the staged
signup to a verified account and issues a usable token pair.
*/
func TestService_Confirm_HappyPath(t *testing.T) {
	h := newServiceHarness(t)

	pair := h.registerAndConfirm(t, registerInputFixture())

	require.NotNil(t, pair.Account)
	assert.True(t, pair.Account.EmailVerified)
	assert.True(t, pair.Account.IsActive)
	assert.Equal(t, "alice@example.com", pair.Account.Email)

	// Access token is verifiable and carries the identity claims
	claims, err := h.tokens.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, pair.Account.ID, claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)

	// The account row was persisted
	stored, err := h.accounts.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.RefreshTokenHash)
}

/*
TestService_Confirm_CodeIsSingleUse verifies that the staged entry is consumed
on success: confirming again is NO_PENDING_REGISTRATION.
*/
func TestService_Confirm_CodeIsSingleUse(t *testing.T) {
	h := newServiceHarness(t)
	h.registerAndConfirm(t, registerInputFixture())

	_, err := h.service.Confirm(context.Background(), "alice@example.com", h.mail.LastOTP())
	assertCode(t, err, "NO_PENDING_REGISTRATION")
}

/*
TestService_Confirm_NoPending verifies the 404 path for an email that never
registered.
*/
func TestService_Confirm_NoPending(t *testing.T) {
	h := newServiceHarness(t)

	_, err := h.service.Confirm(context.Background(), "ghost@example.com", "123456")
	assertCode(t, err, "NO_PENDING_REGISTRATION")
}

/*
TestService_Confirm_ExpiredEntry verifies that a staged signup is gone after
the registration window elapses.
*/
func TestService_Confirm_ExpiredEntry(t *testing.T) {
	h := newServiceHarness(t)

	_, err := h.service.Register(context.Background(), registerInputFixture())
	require.NoError(t, err)

	h.redis.FastForward(auth.PendingRegistrationTTL + time.Second)

	_, err = h.service.Confirm(context.Background(), "alice@example.com", h.mail.LastOTP())
	assertCode(t, err, "NO_PENDING_REGISTRATION")
}

/*
TestService_Confirm_WrongCodeCountsDown verifies the attempt budget: each
wrong code reports the remaining tries, and the third locks the entry.
*/
func TestService_Confirm_WrongCodeCountsDown(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	_, err := h.service.Register(ctx, registerInputFixture())
	require.NoError(t, err)

	wrong := "000000"
	if h.mail.LastOTP() == wrong {
		wrong = "111111"
	}

	_, err = h.service.Confirm(ctx, "alice@example.com", wrong)
	assertCode(t, err, "INVALID_OTP")
	assert.Contains(t, err.Error(), "2 attempts remaining")

	_, err = h.service.Confirm(ctx, "alice@example.com", wrong)
	assertCode(t, err, "INVALID_OTP")
	assert.Contains(t, err.Error(), "1 attempts remaining")

	_, err = h.service.Confirm(ctx, "alice@example.com", wrong)
	assertCode(t, err, "INVALID_OTP")
	assert.Contains(t, err.Error(), "0 attempts remaining")
}

/*
TestService_Confirm_LockBeatsCorrectCode verifies lock precedence: once the
attempt budget is spent, even the right code is rejected with OTP_LOCKED.
*/
func TestService_Confirm_LockBeatsCorrectCode(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	_, err := h.service.Register(ctx, registerInputFixture())
	require.NoError(t, err)

	otp := h.mail.LastOTP()
	wrong := "000000"
	if otp == wrong {
		wrong = "111111"
	}

	for i := 0; i < auth.MaxOTPAttempts; i++ {
		_, err = h.service.Confirm(ctx, "alice@example.com", wrong)
		require.Error(t, err)
	}

	// The correct code is now useless
	_, err = h.service.Confirm(ctx, "alice@example.com", otp)
	assertCode(t, err, "OTP_LOCKED")

	// No account was created
	_, err = h.accounts.FindByEmail(ctx, "alice@example.com")
	require.Error(t, err)
}

/*
TestService_Confirm_ReRegisterResetsLock verifies that registering again
replaces the locked entry with a fresh one (the documented recovery path).
*/
func TestService_Confirm_ReRegisterResetsLock(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	_, err := h.service.Register(ctx, registerInputFixture())
	require.NoError(t, err)

	wrong := "000000"
	if h.mail.LastOTP() == wrong {
		wrong = "111111"
	}
	for i := 0; i < auth.MaxOTPAttempts; i++ {
		_, _ = h.service.Confirm(ctx, "alice@example.com", wrong)
	}

	// Second registration issues a new code and a clean entry
	_, err = h.service.Register(ctx, registerInputFixture())
	require.NoError(t, err)

	pair, err := h.service.Confirm(ctx, "alice@example.com", h.mail.LastOTP())
	require.NoError(t, err)
	assert.True(t, pair.Account.EmailVerified)
}

// # Login

/*
TestService_Login_HappyPath verifies credential checking and token issuance.
*/
func TestService_Login_HappyPath(t *testing.T) {
	h := newServiceHarness(t)
	input := registerInputFixture()
	h.registerAndConfirm(t, input)

	pair, err := h.service.Login(context.Background(), auth.LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	require.NoError(t, err)
	require.NotNil(t, pair.Account)
	assert.NotNil(t, pair.Account.LastLoginAt)

	claims, err := h.tokens.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, pair.Account.ID, claims.Subject)
}

/*
TestService_Login_IdenticalFailures verifies that unknown email and wrong
password are indistinguishable to the caller.
*/
func TestService_Login_IdenticalFailures(t *testing.T) {
	h := newServiceHarness(t)
	input := registerInputFixture()
	h.registerAndConfirm(t, input)

	_, errUnknown := h.service.Login(context.Background(), auth.LoginInput{
		Email: "ghost@example.com", Password: "whatever",
	})
	_, errWrongPassword := h.service.Login(context.Background(), auth.LoginInput{
		Email: input.Email, Password: "not the password",
	})

	assertCode(t, errUnknown, "INVALID_CREDENTIALS")
	assertCode(t, errWrongPassword, "INVALID_CREDENTIALS")
	assert.Equal(t, errUnknown.Error(), errWrongPassword.Error())
}

// # Token Lifecycle

/*
TestService_Refresh_RotatesToken verifies the happy rotation path and that
the superseded token is immediately dead.
*/
func TestService_Refresh_RotatesToken(t *testing.T) {
	h := newServiceHarness(t)
	first := h.registerAndConfirm(t, registerInputFixture())

	rotated, err := h.service.Refresh(context.Background(), first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, rotated.RefreshToken)

	// The old token no longer matches the stored hash
	_, err = h.service.Refresh(context.Background(), first.RefreshToken)
	assertCode(t, err, "REFRESH_TOKEN_MISMATCH")

	// The rotated one still works
	_, err = h.service.Refresh(context.Background(), rotated.RefreshToken)
	require.NoError(t, err)
}

/*
TestService_Refresh_MissingAndInvalid verifies the first two gates of the
refresh flow.
*/
func TestService_Refresh_MissingAndInvalid(t *testing.T) {
	h := newServiceHarness(t)
	h.registerAndConfirm(t, registerInputFixture())

	_, err := h.service.Refresh(context.Background(), "")
	assertCode(t, err, "MISSING_REFRESH_TOKEN")

	_, err = h.service.Refresh(context.Background(), "not-a-jwt")
	assertCode(t, err, "INVALID_REFRESH_TOKEN")
}

/*
TestService_Refresh_AccessTokenRejected verifies that an access token cannot
impersonate a refresh token (independent signing secrets).
*/
func TestService_Refresh_AccessTokenRejected(t *testing.T) {
	h := newServiceHarness(t)
	pair := h.registerAndConfirm(t, registerInputFixture())

	_, err := h.service.Refresh(context.Background(), pair.AccessToken)
	assertCode(t, err, "INVALID_REFRESH_TOKEN")
}

/*
TestService_Refresh_SecondLoginInvalidatesFirst verifies single-active-token
semantics: a new login rotates the stored hash, killing the earlier token.
*/
func TestService_Refresh_SecondLoginInvalidatesFirst(t *testing.T) {
	h := newServiceHarness(t)
	input := registerInputFixture()
	first := h.registerAndConfirm(t, input)

	_, err := h.service.Login(context.Background(), auth.LoginInput{
		Email: input.Email, Password: input.Password,
	})
	require.NoError(t, err)

	_, err = h.service.Refresh(context.Background(), first.RefreshToken)
	assertCode(t, err, "REFRESH_TOKEN_MISMATCH")
}

/*
TestService_Logout verifies revocation and idempotency of logout.
*/
func TestService_Logout(t *testing.T) {
	h := newServiceHarness(t)
	pair := h.registerAndConfirm(t, registerInputFixture())
	ctx := context.Background()

	require.NoError(t, h.service.Logout(ctx, pair.RefreshToken))

	// The revoked token can no longer refresh
	_, err := h.service.Refresh(ctx, pair.RefreshToken)
	assertCode(t, err, "REFRESH_TOKEN_MISMATCH")

	// Repeating and garbage input are both quiet no-ops
	require.NoError(t, h.service.Logout(ctx, pair.RefreshToken))
	require.NoError(t, h.service.Logout(ctx, ""))
	require.NoError(t, h.service.Logout(ctx, "not-a-jwt"))
}
