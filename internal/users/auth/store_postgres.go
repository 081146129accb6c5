// Copyright (c) 2026 Parlo. All rights reserved.
// Author: le.huyanh.dev@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lehuyanh/parlo/internal/platform/dberr"
)

// # Account Repository (PostgreSQL)

// accountColumns is the canonical select list shared by every account lookup.
const accountColumns = `
	id, email, name, passwordhash, avatarurl, role, isactive, emailverified,
	lastloginat, refreshtokenhash, refreshtokenexpiry, createdat, updatedat`

// PostgresAccountRepository implements the AccountRepository interface using pgx.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new PostgreSQL implementation of the AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

/*
Create persists a new confirmed account into the users.account table.

Description: Deep-persists account metadata, ensuring timestamps are initialized
if not provided. A unique-constraint violation on email surfaces as a Conflict:
two concurrent confirmations of the same staged registration race on this
insert, and exactly one wins.

Parameters:
  - context: context.Context
  - account: *Account (Entity to persist)

Returns:
  - error: Conflict on duplicate email or connectivity errors
*/
func (repository *PostgresAccountRepository) Create(context context.Context, account *Account) error {
	const query = `
		INSERT INTO users.account (
			id, email, name, passwordhash, avatarurl, role, isactive, emailverified, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		account.ID,
		account.Email,
		account.Name,
		account.PasswordHash,
		account.AvatarURL,
		account.Role,
		account.IsActive,
		account.EmailVerified,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "Account")
	}

	return nil
}

/*
FindByEmail retrieves an account record by its unique email address.

Description: Performs a lookup on the account table, filtering out soft-deleted accounts.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *Account: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresAccountRepository) FindByEmail(context context.Context, email string) (*Account, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM users.account
		WHERE email = $1 AND deletedat IS NULL`

	return repository.scanOne(repository.pool.QueryRow(context, query, email), "find_by_email")
}

/*
FindByID retrieves an account record by its unique ID.

Description: Primary key resolution for accounts.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *Account: Hydrated account entity
  - error: Not found or execution errors
*/
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*Account, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM users.account
		WHERE id = $1 AND deletedat IS NULL`

	return repository.scanOne(repository.pool.QueryRow(context, query, id), "find_by_id")
}

/*
UpdateRefreshToken replaces the stored refresh token hash and expiry.

Description: The account holds at most one active refresh token; every write
here either rotates it (new hash) or revokes it (empty hash, nil expiry).

Parameters:
  - context: context.Context
  - accountID: string
  - tokenHash: string
  - expiresAt: *time.Time

Returns:
  - error: Execution errors
*/
func (repository *PostgresAccountRepository) UpdateRefreshToken(context context.Context, accountID, tokenHash string, expiresAt *time.Time) error {
	const query = `
		UPDATE users.account
		SET refreshtokenhash = $2, refreshtokenexpiry = $3, updatedat = $4
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(context, query, accountID, tokenHash, expiresAt, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_account_repo_update_refresh_token_failed: %w", err)
	}

	return nil
}

/*
StampLastLogin records the moment of a successful authentication.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresAccountRepository) StampLastLogin(context context.Context, accountID string) error {
	const query = "UPDATE users.account SET lastloginat = $2 WHERE id = $1"
	_, err := repository.pool.Exec(context, query, accountID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_account_repo_stamp_last_login_failed: %w", err)
	}
	return nil
}

// scanOne hydrates a single account row, mapping storage errors to domain errors.
func (repository *PostgresAccountRepository) scanOne(row pgx.Row, operation string) (*Account, error) {
	account := &Account{}
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.Name,
		&account.PasswordHash,
		&account.AvatarURL,
		&account.Role,
		&account.IsActive,
		&account.EmailVerified,
		&account.LastLoginAt,
		&account.RefreshTokenHash,
		&account.RefreshTokenExpiry,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.Wrap(err, "Account")
		}
		return nil, fmt.Errorf("postgres_account_repo_%s_failed: %w", operation, err)
	}

	return account, nil
}
