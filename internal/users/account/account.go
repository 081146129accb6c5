// Copyright (c) 2026 Parlo. All rights reserved.
// Author: le.huyanh.dev@gmail.com

/*
Package account handles user profile management.

It provides functionality for authenticated members to view and update their
private identity data.

# Architecture

  - Domain: This package depends on the auth package for the Account entity.
  - Scope: Profile reads and partial updates; credentials and tokens stay in auth.
*/
package account

import (
	"context"

	"github.com/lehuyanh/parlo/internal/users/auth"
)

// # Repository Contracts

// ProfileRepository defines the persistence contract for profile data.
type ProfileRepository interface {
	/*
		FindByID retrieves an account record by its unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *auth.Account: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.Account, error)

	/*
		UpdateProfile modifies the mutable profile fields of an existing account.

		Parameters:
		  - context: context.Context
		  - account: *auth.Account (Hydrated entity with changes)

		Returns:
		  - error: Storage or constraint failures
	*/
	UpdateProfile(context context.Context, account *auth.Account) error
}
