// Copyright (c) 2026 Parlo. All rights reserved.
// Author: le.huyanh.dev@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lehuyanh/parlo/internal/platform/middleware"
	requestutil "github.com/lehuyanh/parlo/internal/platform/request"
	"github.com/lehuyanh/parlo/internal/platform/respond"
	"github.com/lehuyanh/parlo/internal/platform/validate"
	"github.com/lehuyanh/parlo/internal/users/auth"
)

// # Definitions & Constructors

// Handler implements profile-related HTTP endpoints.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with profile routes.
//
// # Endpoints
//   - GET   /me : Returns the authenticated account's profile.
//   - PATCH /me : Partially updates the profile.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.me)
		r.Patch("/me", handler.updateMe)
	})

	return router
}

// # Request Payloads

type updateProfileRequest struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

/*
Me returns the authenticated account's private profile.

GET /api/v1/account/me

Response:
  - 200: Account: Full private profile
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.GetProfile(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
UpdateMe partially updates the authenticated account's profile.

PATCH /api/v1/account/me

Description: Absent fields are left unchanged; provided fields are validated
and overlaid on the stored profile.

Request:
  - Body: updateProfileRequest (Name?, AvatarURL?)

Response:
  - 200: Account: Updated profile
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if input.Name != nil {
		validator.Required(auth.FieldName, *input.Name).
			MinLen(auth.FieldName, *input.Name, 2).
			MaxLen(auth.FieldName, *input.Name, 100)
	}
	if input.AvatarURL != nil && *input.AvatarURL != "" {
		validator.URL(auth.FieldAvatarURL, *input.AvatarURL)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.UpdateProfile(request.Context(), accountID, UpdateProfileInput{
		Name:      input.Name,
		AvatarURL: input.AvatarURL,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}
