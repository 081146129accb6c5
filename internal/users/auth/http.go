// Copyright (c) 2026 Parlo. All rights reserved.
// Author: le.huyanh.dev@gmail.com

/*
Package auth provides the HTTP delivery layer for user identity management.

It implements the gateway for the two-phase registration flow and the token
lifecycle endpoints.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: Standard RESTful JSON interface.
  - Security: Handles JWT orchestration and refresh token cookie injection.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/
package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lehuyanh/parlo/internal/platform/constants"
	requestutil "github.com/lehuyanh/parlo/internal/platform/request"
	"github.com/lehuyanh/parlo/internal/platform/respond"
	"github.com/lehuyanh/parlo/internal/platform/sec"
	"github.com/lehuyanh/parlo/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages everything related to the account lifecycle entry
// points (Registration, Confirmation, Login, Token rotation).
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register : Stages a signup and emails its one-time code.
//   - POST /verify   : Confirms the code and creates the account.
//   - POST /login    : Authenticates and returns a JWT pair.
//   - POST /refresh  : Rotates the refresh token from its cookie.
//   - POST /logout   : Revokes the active refresh token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// All lifecycle endpoints are public: refresh and logout identify the
	// caller by the refresh token cookie, not by an access token.
	router.Post("/register", handler.register)
	router.Post("/verify", handler.verify)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)

	return router
}

// # Request Payloads

type registerRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	AvatarURL string `json:"avatar_url"`
	Role      string `json:"role"`
}

type verifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

/*
Register stages a new signup and triggers the verification email.

POST /api/v1/auth/register

Description: Validates input, rejects emails already holding a confirmed
account, and stages the signup for confirmation. No account row exists until
the code is verified.

Request:
  - Body: registerRequest (Name, Email, Password, AvatarURL, Role)

Response:
  - 201: RegisterResult: Neutral acknowledgement with otp_sent flag
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Email already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		MinLen(FieldName, input.Name, 2).
		MaxLen(FieldName, input.Name, 100).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8)

	if input.AvatarURL != "" {
		validator.URL(FieldAvatarURL, input.AvatarURL)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Register(request.Context(), RegisterInput{
		Name:      input.Name,
		Email:     input.Email,
		Password:  input.Password,
		AvatarURL: input.AvatarURL,
		Role:      sec.UserRole(input.Role),
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, result)
}

/*
Verify confirms a staged signup with its one-time code.

POST /api/v1/auth/verify

Description: Runs the verification state machine; on success the account is
created and a token pair is established (access token in the body, refresh
token in an HttpOnly cookie).

Request:
  - Body: verifyRequest (Email, OTP)

Response:
  - 200: Session: Access token and created account
  - 401: INVALID_OTP: Wrong code (remaining attempts reported)
  - 403: OTP_LOCKED: Too many wrong codes
  - 404: NO_PENDING_REGISTRATION: Nothing staged or entry expired
*/
func (handler *Handler) verify(writer http.ResponseWriter, request *http.Request) {
	var input verifyRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldOTP, input.OTP).
		OTP(FieldOTP, input.OTP)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Confirm(request.Context(), input.Email, input.OTP)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setRefreshCookie(writer, pair)

	respond.OK(writer, map[string]any{
		FieldAccessToken: pair.AccessToken,
		FieldTokenType:   "Bearer",
		FieldExpiresIn:   handler.authService.tokenIssuer.AccessTTL() / time.Second,
		FieldUser:        pair.Account,
	})
}

/*
Login authenticates an account and establishes a session.

POST /api/v1/auth/login

Description: Verifies credentials, generates a JWT pair, and injects a secure
refresh token cookie into the response. Issuing rotates the account's stored
refresh hash, so previous devices lose their ability to refresh.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: Session: Access token and account profile
  - 401: INVALID_CREDENTIALS: Unknown email or wrong password
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setRefreshCookie(writer, pair)

	respond.OK(writer, map[string]any{
		FieldAccessToken: pair.AccessToken,
		FieldTokenType:   "Bearer",
		FieldExpiresIn:   handler.authService.tokenIssuer.AccessTTL() / time.Second,
		FieldUser:        pair.Account,
	})
}

/*
Refresh issues a new token pair using a valid refresh token.

POST /api/v1/auth/refresh

Description: Rotates the session by validating the refresh token cookie and
issuing a fresh access token and an updated refresh token.

Response:
  - 200: RefreshResponse: New access token credentials
  - 401: MISSING_REFRESH_TOKEN / INVALID_REFRESH_TOKEN / REFRESH_TOKEN_MISMATCH
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {

	// A missing cookie is a domain outcome, not a transport error; the
	// service owns the MISSING_REFRESH_TOKEN answer for the empty case.
	presented := ""
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil {
		presented = cookie.Value
	}

	pair, err := handler.authService.Refresh(request.Context(), presented)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setRefreshCookie(writer, pair)

	respond.OK(writer, map[string]any{
		FieldAccessToken: pair.AccessToken,
		FieldTokenType:   "Bearer",
		FieldExpiresIn:   handler.authService.tokenIssuer.AccessTTL() / time.Second,
	})
}

/*
Logout terminates the current session.

POST /api/v1/auth/logout

Description: Revokes the stored refresh token (if the cookie carries the
active one) and clears the security cookie from the client. Idempotent.

Response:
  - 204: No Content: Session terminated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)

	if err == nil && cookie != nil && cookie.Value != "" {
		if err := handler.authService.Logout(request.Context(), cookie.Value); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	respond.NoContent(writer)
}

// setRefreshCookie injects the rotated refresh token as an HttpOnly cookie
// scoped to the auth endpoints.
func (handler *Handler) setRefreshCookie(writer http.ResponseWriter, pair *TokenPair) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    pair.RefreshToken,
		Path:     constants.RefreshTokenCookiePath,
		Expires:  pair.RefreshTokenExpiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
