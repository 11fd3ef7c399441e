// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuentasclaras/cuentasclaras/internal/access"
	"github.com/cuentasclaras/cuentasclaras/internal/auth"
	"github.com/cuentasclaras/cuentasclaras/internal/client"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/apperr"
	"github.com/cuentasclaras/cuentasclaras/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type authBackend struct {
	includeUser  bool
	logoutCalls  atomic.Int32
	refreshCalls atomic.Int32
}

func (b *authBackend) router() http.Handler {
	router := chi.NewRouter()

	router.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var input auth.LoginInput
		_ = json.NewDecoder(r.Body).Decode(&input)

		if r.Header.Get("Authorization") != "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "login must be anonymous"})
			return
		}
		if input.Password != "correcta" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
			return
		}

		body := map[string]any{"token": "access-1", "refreshToken": "refresh-1"}
		if b.includeUser {
			body["user"] = access.User{ID: 7, Username: input.Identifier}
		}
		writeJSON(w, http.StatusOK, body)
	})

	router.Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "expired"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": access.User{
			ID:          7,
			Username:    "tesorera",
			Memberships: []access.Membership{{CommunityID: 5, Role: access.RoleTesorero}},
		}})
	})

	router.Post("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		b.logoutCalls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})

	router.Post("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		b.refreshCalls.Add(1)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no session"})
	})

	return router
}

func newService(t *testing.T, b *authBackend) (*auth.Service, *session.Store) {
	t.Helper()

	server := httptest.NewServer(b.router())
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := session.NewStore(context.Background(), nil, logger)
	require.NoError(t, err)

	apiClient, err := client.New(client.Options{BaseURL: server.URL, Session: store, Logger: logger})
	require.NoError(t, err)

	return auth.NewService(apiClient, logger), store
}

/*
TestService_Login stores the tokens and the user returned by the backend.
*/
func TestService_Login(t *testing.T) {
	service, store := newService(t, &authBackend{includeUser: true})

	user, err := service.Login(context.Background(), auth.LoginInput{Identifier: "tesorera", Password: "correcta"})
	require.NoError(t, err)

	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "access-1", store.Token())
	assert.Equal(t, "refresh-1", store.RefreshToken())
	assert.Same(t, user, store.User())
}

/*
TestService_Login_FetchesProfile calls /auth/me when the login response has no user.
*/
func TestService_Login_FetchesProfile(t *testing.T) {
	service, store := newService(t, &authBackend{})

	user, err := service.Login(context.Background(), auth.LoginInput{Identifier: "tesorera", Password: "correcta"})
	require.NoError(t, err)

	assert.Equal(t, []access.Role{access.RoleTesorero}, user.RolesIn(5))
	assert.Equal(t, user, store.User())
}

/*
TestService_Login_Rejected maps bad credentials and bad input without a refresh.
*/
func TestService_Login_Rejected(t *testing.T) {
	backend := &authBackend{}
	service, store := newService(t, backend)

	_, err := service.Login(context.Background(), auth.LoginInput{Identifier: "tesorera", Password: "mala"})
	assert.True(t, apperr.Is(err, apperr.CodeUnauthenticated))
	assert.Equal(t, int32(0), backend.refreshCalls.Load())
	assert.Empty(t, store.Token())

	_, err = service.Login(context.Background(), auth.LoginInput{})
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.CodeValidationFailed, ae.Code)
	assert.Len(t, ae.Details, 2)
}

/*
TestService_Logout clears the session and tells the backend.
*/
func TestService_Logout(t *testing.T) {
	backend := &authBackend{includeUser: true}
	service, store := newService(t, backend)

	_, err := service.Login(context.Background(), auth.LoginInput{Identifier: "tesorera", Password: "correcta"})
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background()))
	assert.Equal(t, int32(1), backend.logoutCalls.Load())
	assert.Empty(t, store.Token())
	assert.Nil(t, store.User())

	// Logging out twice does not reach the backend.
	require.NoError(t, service.Logout(context.Background()))
	assert.Equal(t, int32(1), backend.logoutCalls.Load())
}

/*
TestService_Me_NotSignedIn fails locally without a network call.
*/
func TestService_Me_NotSignedIn(t *testing.T) {
	service, _ := newService(t, &authBackend{})

	_, err := service.Me(context.Background())
	assert.True(t, apperr.Is(err, apperr.CodeUnauthenticated))
}

/*
TestService_CurrentUser_ExpiredSession surfaces REFRESH_FAILED and logs out.
*/
func TestService_CurrentUser_ExpiredSession(t *testing.T) {
	backend := &authBackend{}
	service, store := newService(t, backend)
	store.SetToken(context.Background(), "expired")

	_, err := service.CurrentUser(context.Background())
	assert.True(t, apperr.Is(err, apperr.CodeRefreshFailed))
	assert.Equal(t, int32(1), backend.refreshCalls.Load())
	assert.Empty(t, store.Token())
}
