// Copyright (c) 2026 Parlo. All rights reserved.
// Author: le.huyanh.dev@gmail.com

package auth

import (
	"context"
	"time"
)

// # Account Data Access

// AccountRepository defines the data access contract for confirmed accounts.
type AccountRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Account: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Account, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *Account: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*Account, error)

	/*
		Create persists a brand-new confirmed account to the storage.

		Parameters:
		  - context: context.Context
		  - account: *Account

		Returns:
		  - error: Persistence failures (Conflict on duplicate email)
	*/
	Create(context context.Context, account *Account) error

	/*
		UpdateRefreshToken replaces the stored refresh token hash and expiry.

		Description: Passing empty hash and nil expiry revokes the active
		refresh token (logout).

		Parameters:
		  - context: context.Context
		  - accountID: string
		  - tokenHash: string
		  - expiresAt: *time.Time

		Returns:
		  - error: Persistence failures
	*/
	UpdateRefreshToken(context context.Context, accountID, tokenHash string, expiresAt *time.Time) error

	/*
		StampLastLogin records the moment of a successful authentication.

		Parameters:
		  - context: context.Context
		  - accountID: string

		Returns:
		  - error: Persistence failures
	*/
	StampLastLogin(context context.Context, accountID string) error
}

// # Pending Registration Ledger

// PendingLedger defines the contract for staging not-yet-confirmed signups
// in volatile storage.
//
// # Semantics
//
// Entries are keyed by email; one pending signup per address. Every write
// resets the entry's time-to-live to [PendingRegistrationTTL], so attempt
// bookkeeping keeps the entry alive as long as the user is actively trying.
type PendingLedger interface {

	/*
		Stage stores a fresh pending registration, replacing any prior entry
		for the same email (last write wins).

		Parameters:
		  - context: context.Context
		  - entry: *PendingRegistration

		Returns:
		  - error: Persistence failures
	*/
	Stage(context context.Context, entry *PendingRegistration) error

	/*
		Load retrieves the pending registration for an email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *PendingRegistration: Staged entry
		  - error: NO_PENDING_REGISTRATION if absent or expired
	*/
	Load(context context.Context, email string) (*PendingRegistration, error)

	/*
		Persist writes back a mutated entry, resetting its time-to-live.

		Parameters:
		  - context: context.Context
		  - entry: *PendingRegistration

		Returns:
		  - error: Persistence failures
	*/
	Persist(context context.Context, entry *PendingRegistration) error

	/*
		Clear removes the pending registration for an email. Idempotent.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - error: Deletion failures
	*/
	Clear(context context.Context, email string) error
}
