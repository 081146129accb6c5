// Copyright (c) 2026 Parlo. All rights reserved.
// Author: le.huyanh.dev@gmail.com

package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehuyanh/parlo/internal/platform/constants"
	"github.com/lehuyanh/parlo/internal/users/auth"
)

func newHandlerServer(t *testing.T) (*httptest.Server, *serviceHarness) {
	t.Helper()

	h := newServiceHarness(t)
	server := httptest.NewServer(auth.NewHandler(h.service).Routes())
	t.Cleanup(server.Close)

	return server, h
}

func postJSON(t *testing.T, url string, body map[string]any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	response, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { _ = response.Body.Close() })

	return response
}

func decodeBody(t *testing.T, response *http.Response) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.NewDecoder(response.Body).Decode(&body))
	return body
}

func refreshCookie(response *http.Response) *http.Cookie {
	for _, cookie := range response.Cookies() {
		if cookie.Name == constants.RefreshTokenCookieName {
			return cookie
		}
	}
	return nil
}

/*
TestHandler_FullLifecycle drives register, verify, and login end to end over
HTTP and checks the envelope and cookie contract at each step.
*/
func TestHandler_FullLifecycle(t *testing.T) {
	server, h := newHandlerServer(t)

	// Register: 201 with the neutral acknowledgement
	response := postJSON(t, server.URL+"/register", map[string]any{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, response.StatusCode)

	data := decodeBody(t, response)["data"].(map[string]any)
	assert.Equal(t, "alice@example.com", data["email"])
	assert.Equal(t, true, data["otp_sent"])

	// Verify: 200 with access token in the body, refresh token in a cookie
	response = postJSON(t, server.URL+"/verify", map[string]any{
		"email": "alice@example.com",
		"otp":   h.mail.LastOTP(),
	})
	require.Equal(t, http.StatusOK, response.StatusCode)

	data = decodeBody(t, response)["data"].(map[string]any)
	assert.NotEmpty(t, data["access_token"])
	assert.Equal(t, "Bearer", data["token_type"])

	cookie := refreshCookie(response)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, constants.RefreshTokenCookiePath, cookie.Path)
	assert.NotEmpty(t, cookie.Value)

	// Login: 200 with a fresh pair
	response = postJSON(t, server.URL+"/login", map[string]any{
		"email":    "alice@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusOK, response.StatusCode)
	assert.NotNil(t, refreshCookie(response))
}

/*
TestHandler_Register_ValidationErrors verifies the 400 envelope for bad input.
*/
func TestHandler_Register_ValidationErrors(t *testing.T) {
	server, _ := newHandlerServer(t)

	response := postJSON(t, server.URL+"/register", map[string]any{
		"name":     "A",
		"email":    "not-an-email",
		"password": "short",
	})
	require.Equal(t, http.StatusBadRequest, response.StatusCode)

	body := decodeBody(t, response)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.NotEmpty(t, body["details"])
}

/*
TestHandler_Verify_ErrorCodes verifies the machine codes surface through the
HTTP envelope.
*/
func TestHandler_Verify_ErrorCodes(t *testing.T) {
	server, h := newHandlerServer(t)

	// Nothing staged yet
	response := postJSON(t, server.URL+"/verify", map[string]any{
		"email": "ghost@example.com",
		"otp":   "123456",
	})
	require.Equal(t, http.StatusNotFound, response.StatusCode)
	assert.Equal(t, "NO_PENDING_REGISTRATION", decodeBody(t, response)["code"])

	// Wrong code after staging
	postJSON(t, server.URL+"/register", map[string]any{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "correct horse battery",
	})

	wrong := "000000"
	if h.mail.LastOTP() == wrong {
		wrong = "111111"
	}
	response = postJSON(t, server.URL+"/verify", map[string]any{
		"email": "alice@example.com",
		"otp":   wrong,
	})
	require.Equal(t, http.StatusUnauthorized, response.StatusCode)
	assert.Equal(t, "INVALID_OTP", decodeBody(t, response)["code"])
}

/*
TestHandler_Refresh_CookieContract verifies refresh reads the cookie and that
its absence maps to MISSING_REFRESH_TOKEN.
*/
func TestHandler_Refresh_CookieContract(t *testing.T) {
	server, h := newHandlerServer(t)

	// No cookie at all
	response := postJSON(t, server.URL+"/refresh", map[string]any{})
	require.Equal(t, http.StatusUnauthorized, response.StatusCode)
	assert.Equal(t, "MISSING_REFRESH_TOKEN", decodeBody(t, response)["code"])

	// Establish a session to obtain the cookie
	pair := h.registerAndConfirm(t, registerInputFixture())

	request, err := http.NewRequest(http.MethodPost, server.URL+"/refresh", nil)
	require.NoError(t, err)
	request.AddCookie(&http.Cookie{
		Name:  constants.RefreshTokenCookieName,
		Value: pair.RefreshToken,
	})

	rotated, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	defer rotated.Body.Close()

	require.Equal(t, http.StatusOK, rotated.StatusCode)
	cookie := refreshCookie(rotated)
	require.NotNil(t, cookie)
	assert.NotEqual(t, pair.RefreshToken, cookie.Value)
}

/*
TestHandler_Logout verifies the cookie is cleared and the call is idempotent.
*/
func TestHandler_Logout(t *testing.T) {
	server, h := newHandlerServer(t)
	pair := h.registerAndConfirm(t, registerInputFixture())

	request, err := http.NewRequest(http.MethodPost, server.URL+"/logout", nil)
	require.NoError(t, err)
	request.AddCookie(&http.Cookie{
		Name:  constants.RefreshTokenCookieName,
		Value: pair.RefreshToken,
	})

	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	defer response.Body.Close()

	require.Equal(t, http.StatusNoContent, response.StatusCode)

	cookie := refreshCookie(response)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)

	// Logging out without any cookie is still a 204
	bare := postJSON(t, server.URL+"/logout", map[string]any{})
	assert.Equal(t, http.StatusNoContent, bare.StatusCode)
}
