// Copyright (c) 2026 Parlo. All rights reserved.
// Author: le.huyanh.dev@gmail.com

package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lehuyanh/parlo/internal/platform/apperr"
	"github.com/lehuyanh/parlo/internal/users/auth"
)

// # Profile Repository (PostgreSQL)

// PostgresProfileRepository implements ProfileRepository using pgx.
type PostgresProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new PostgreSQL implementation of ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool}
}

/*
FindByID retrieves an account record by its unique ID.

Description: Primary key resolution, filtering out soft-deleted accounts.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *auth.Account: Hydrated profile
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresProfileRepository) FindByID(context context.Context, id string) (*auth.Account, error) {
	const query = `
		SELECT id, email, name, avatarurl, role, isactive, emailverified, lastloginat, createdat, updatedat
		FROM users.account
		WHERE id = $1 AND deletedat IS NULL`

	account := &auth.Account{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&account.ID,
		&account.Email,
		&account.Name,
		&account.AvatarURL,
		&account.Role,
		&account.IsActive,
		&account.EmailVerified,
		&account.LastLoginAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account")
		}
		return nil, fmt.Errorf("postgres_profile_repo_find_by_id_failed: %w", err)
	}

	return account, nil
}

/*
UpdateProfile persists changes to the mutable profile fields.

Description: Synchronizes the in-memory state with the database, refreshing
the updatedat timestamp. Credentials and token columns are never touched here.

Parameters:
  - context: context.Context
  - account: *auth.Account

Returns:
  - error: Update failures
*/
func (repository *PostgresProfileRepository) UpdateProfile(context context.Context, account *auth.Account) error {
	const query = `
		UPDATE users.account
		SET name = $2, avatarurl = $3, updatedat = $4
		WHERE id = $1 AND deletedat IS NULL`

	account.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		account.ID,
		account.Name,
		account.AvatarURL,
		account.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_profile_repo_update_failed: %w", err)
	}

	return nil
}
