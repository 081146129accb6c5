// Copyright (c) 2026 Parlo. All rights reserved.
// Author: le.huyanh.dev@gmail.com

package account_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehuyanh/parlo/internal/platform/apperr"
	"github.com/lehuyanh/parlo/internal/users/account"
	"github.com/lehuyanh/parlo/internal/users/auth"
)

// fakeProfileRepository is an in-memory ProfileRepository for service tests.
type fakeProfileRepository struct {
	profiles map[string]*auth.Account
}

func (repo *fakeProfileRepository) FindByID(_ context.Context, id string) (*auth.Account, error) {
	profile, ok := repo.profiles[id]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	clone := *profile
	return &clone, nil
}

func (repo *fakeProfileRepository) UpdateProfile(_ context.Context, profile *auth.Account) error {
	clone := *profile
	repo.profiles[profile.ID] = &clone
	return nil
}

func newAccountService(profiles ...*auth.Account) (*account.Service, *fakeProfileRepository) {
	repo := &fakeProfileRepository{profiles: make(map[string]*auth.Account)}
	for _, profile := range profiles {
		repo.profiles[profile.ID] = profile
	}
	return account.NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil))), repo
}

func stringPtr(s string) *string { return &s }

/*
TestService_GetProfile covers lookup and the not-found path.
*/
func TestService_GetProfile(t *testing.T) {
	service, _ := newAccountService(&auth.Account{ID: "acc-1", Email: "alice@example.com", Name: "Alice"})

	profile, err := service.GetProfile(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", profile.Name)

	_, err = service.GetProfile(context.Background(), "acc-2")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestService_UpdateProfile verifies partial updates and name normalization.
*/
func TestService_UpdateProfile(t *testing.T) {
	service, repo := newAccountService(&auth.Account{
		ID: "acc-1", Email: "alice@example.com", Name: "Alice", AvatarURL: "https://cdn.parlo.app/a.png",
	})

	// Only the name changes; normalization composes the accent and trims
	updated, err := service.UpdateProfile(context.Background(), "acc-1", account.UpdateProfileInput{
		Name: stringPtr("  Léa  "),
	})
	require.NoError(t, err)
	assert.Equal(t, "Léa", updated.Name)
	assert.Equal(t, "https://cdn.parlo.app/a.png", updated.AvatarURL)

	// The change was persisted
	stored := repo.profiles["acc-1"]
	assert.Equal(t, "Léa", stored.Name)

	// Avatar-only update leaves the name alone
	updated, err = service.UpdateProfile(context.Background(), "acc-1", account.UpdateProfileInput{
		AvatarURL: stringPtr("https://cdn.parlo.app/b.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Léa", updated.Name)
	assert.Equal(t, "https://cdn.parlo.app/b.png", updated.AvatarURL)
}
