package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mslide/internal/pkg/errcode"
	"github.com/xxxsen/mslide/test/testutil"
)

func TestAuthRegisterLoginMe(t *testing.T) {
	router, cleanup := setupRouter(t)
	defer cleanup()

	email := testutil.NewID() + "@example.com"
	resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"name":     "Alex",
		"password": "secret-pass",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	var registered struct {
		Token string `json:"token"`
		User  struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	decodeData(t, resp, &registered)
	require.NotEmpty(t, registered.Token)
	require.Equal(t, email, registered.User.Email)
	require.NotContains(t, resp.Body.String(), "password_hash")

	// duplicate email
	resp = doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"name":     "Alex Again",
		"password": "secret-pass",
	})
	require.Equal(t, http.StatusConflict, resp.Code)
	require.Equal(t, errcode.ErrConflict, bodyCode(t, resp))

	// short password
	resp = doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    testutil.NewID() + "@example.com",
		"password": "short",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	require.Equal(t, errcode.ErrUnauthorized, bodyCode(t, resp))

	resp = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "secret-pass",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	var loggedIn struct {
		Token string `json:"token"`
	}
	decodeData(t, resp, &loggedIn)

	resp = doJSON(t, router, http.MethodGet, "/api/v1/auth/me", loggedIn.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var me struct {
		Email string `json:"email"`
	}
	decodeData(t, resp, &me)
	require.Equal(t, email, me.Email)

	resp = doJSON(t, router, http.MethodGet, "/api/v1/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	require.Equal(t, errcode.ErrUnauthorized, bodyCode(t, resp))

	resp = doJSON(t, router, http.MethodGet, "/api/v1/auth/me", "garbage-token", nil)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuthChangePassword(t *testing.T) {
	router, cleanup := setupRouter(t)
	defer cleanup()

	token, email := registerUser(t, router, "Robin")

	resp := doJSON(t, router, http.MethodPut, "/api/v1/auth/password", token, map[string]string{
		"old_password": "not-the-password",
		"new_password": "next-secret-pass",
	})
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = doJSON(t, router, http.MethodPut, "/api/v1/auth/password", token, map[string]string{
		"old_password": "secret-pass",
		"new_password": "next-secret-pass",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "secret-pass",
	})
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "next-secret-pass",
	})
	require.Equal(t, http.StatusOK, resp.Code)
}
