// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cuentasclaras/cuentasclaras/internal/access"
	"github.com/cuentasclaras/cuentasclaras/internal/client"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/apperr"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/validate"
	"github.com/cuentasclaras/cuentasclaras/internal/session"
)

// Service implements the authentication use cases of the client.
type Service struct {
	client  *client.Client
	session *session.Store
	logger  *slog.Logger
}

// NewService constructs a [Service]. The session is the one the client reads
// its tokens from.
func NewService(apiClient *client.Client, logger *slog.Logger) *Service {
	return &Service{
		client:  apiClient,
		session: apiClient.Session(),
		logger:  logger,
	}
}

/*
Login exchanges credentials for a session.

Description: Validates the input locally, posts it anonymously (a 401 here
means wrong credentials, never a refresh) and stores the returned tokens. When
the backend omits the profile, it is fetched with [Service.Me].

Parameters:
  - ctx: context.Context
  - input: LoginInput

Returns:
  - *access.User: The signed-in principal
  - error: VALIDATION_ERROR, UNAUTHENTICATED or REQUEST_FAILED
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*access.User, error) {

	// ── 1. Local Validation ───────────────────────────────────────────────
	validator := &validate.Validator{}
	validator.
		Required("identifier", input.Identifier).
		MaxLen("identifier", input.Identifier, 254).
		Required("password", input.Password)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// ── 2. Credential Exchange ────────────────────────────────────────────
	var response loginResponse
	err := service.client.Do(ctx, client.Request{
		Method:    http.MethodPost,
		Path:      pathLogin,
		Body:      input,
		Anonymous: true,
	}, &response)
	if err != nil {
		return nil, err
	}

	if response.accessToken() == "" {
		return nil, apperr.RequestFailed(http.StatusBadGateway, "Login response carried no access token", nil)
	}

	// ── 3. Session Replacement ────────────────────────────────────────────
	service.session.Clear(ctx)
	service.session.SetToken(ctx, response.accessToken())
	if response.RefreshToken != "" {
		service.session.SetRefreshToken(ctx, response.RefreshToken)
	}

	user := response.User
	if user == nil {
		user, err = service.Me(ctx)
		if err != nil {
			return nil, err
		}
	} else {
		service.session.SetUser(user)
	}

	service.logger.Info("login_succeeded",
		slog.Int64("user_id", user.ID),
		slog.Int("communities", len(user.Communities())),
	)

	return user, nil
}

/*
Logout ends the session.

Description: The backend is told first so it can revoke the refresh
credential; the local session is cleared whatever the outcome.

Returns:
  - error: The backend failure, after the local session was cleared
*/
func (service *Service) Logout(ctx context.Context) error {
	var err error
	if service.session.Token() != "" {
		err = service.client.Do(ctx, client.Request{Method: http.MethodPost, Path: pathLogout}, nil)

		// An expired session is already logged out on the backend.
		if apperr.Is(err, apperr.CodeRefreshFailed) || apperr.Is(err, apperr.CodeUnauthenticated) {
			err = nil
		}
	}

	service.session.Clear(ctx)

	if err != nil {
		service.logger.Warn("logout_backend_failed", slog.Any("error", err))
	}
	return err
}

// Me loads the profile of the current token and caches it in the session.
func (service *Service) Me(ctx context.Context) (*access.User, error) {
	if service.session.Token() == "" && service.session.RefreshToken() == "" {
		return nil, apperr.Unauthenticated("Not signed in")
	}

	var response client.Envelope[*access.User]
	if err := service.client.Get(ctx, pathMe, nil, &response); err != nil {
		return nil, err
	}

	if response.Data == nil {
		return nil, apperr.RequestFailed(http.StatusBadGateway, "Profile response was empty", errors.New("missing data"))
	}

	service.session.SetUser(response.Data)
	return response.Data, nil
}

// CurrentUser returns the cached profile, loading it when the session holds a
// token but no user yet.
func (service *Service) CurrentUser(ctx context.Context) (*access.User, error) {
	if user := service.session.User(); user != nil {
		return user, nil
	}
	return service.Me(ctx)
}
