// Copyright (c) 2026 Parlo. All rights reserved.
// Author: le.huyanh.dev@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lehuyanh/parlo/internal/users/auth"
	"github.com/lehuyanh/parlo/pkg/textnorm"
)

// # Service Layer

// Service orchestrates business logic for account profiles.
type Service struct {
	profileRepository ProfileRepository
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its repository dependency.
func NewService(profileRepo ProfileRepository, logger *slog.Logger) *Service {
	return &Service{
		profileRepository: profileRepo,
		logger:            logger,
	}
}

// # Profile Management

/*
GetProfile retrieves the full private identity of an account.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - *auth.Account: The hydrated profile
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, accountID string) (*auth.Account, error) {
	account, err := service.profileRepository.FindByID(context, accountID)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateProfileInput defines the mutable subset of profile fields.
// Nil pointers mean "leave unchanged".
type UpdateProfileInput struct {
	Name      *string
	AvatarURL *string
}

/*
UpdateProfile applies a partial set of changes to an account's metadata.

Description: Fetches the existing state, overlays the provided fields, and
synchronizes the change to persistent storage. Display names are normalized
to NFC before persisting so equality checks stay encoding-independent.

Parameters:
  - context: context.Context
  - accountID: string
  - input: UpdateProfileInput

Returns:
  - *auth.Account: The updated profile
  - error: Update or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, accountID string, input UpdateProfileInput) (*auth.Account, error) {

	// Fetch current state; NotFound propagates to the client as-is
	account, err := service.profileRepository.FindByID(context, accountID)
	if err != nil {
		return nil, err
	}

	// Apply delta updates
	if input.Name != nil {
		account.Name = textnorm.Name(*input.Name)
	}

	// Apply delta updates
	if input.AvatarURL != nil {
		account.AvatarURL = *input.AvatarURL
	}

	// Persist changes
	if err := service.profileRepository.UpdateProfile(context, account); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.Info("account_profile_updated", slog.String("account_id", accountID))

	return account, nil
}
