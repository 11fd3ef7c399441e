// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cuentasclaras/cuentasclaras/internal/access"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/apperr"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/constants"
	"github.com/cuentasclaras/cuentasclaras/pkg/uuidv7"
)

// # Refresh Episodes

// episode is one refresh call and every request waiting on it.
//
// Once done is closed, token and err are immutable. A settled episode keeps
// answering requests that were sent with the same stale token for as long as
// the session has not changed since, so a slow 401 from the same batch never
// starts a second refresh.
type episode struct {
	done chan struct{}

	// from is the access token the triggering request was sent with.
	from string

	// Written by the refresher before done is closed.
	token string
	err   error

	// Guarded by Client.mu.
	settled        bool
	settledVersion uint64
}

// refreshRequest is the body sent to the refresh endpoint. Cookie-based
// deployments leave it empty and rely on the jar.
type refreshRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

// refreshResponse accepts both token field names the backend has used.
type refreshResponse struct {
	AccessToken  string       `json:"accessToken"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
	User         *access.User `json:"user"`
}

func (r refreshResponse) accessToken() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

/*
refresh obtains a token that replaces stale, joining the current episode when
one applies.

Parameters:
  - ctx: context.Context (bounds the wait only, never the refresh call)
  - stale: string (token the rejected request was sent with)

Returns:
  - string: The token to retry with
  - error: REFRESH_FAILED, or REQUEST_FAILED wrapping ctx.Err()
*/
func (c *Client) refresh(ctx context.Context, stale string) (string, error) {
	c.mu.Lock()

	current := c.episode
	switch {

	// ── 1. Join an in-flight episode ──────────────────────────────────────
	case current != nil && !current.settled:
		c.logger.Debug("refresh_joined")

	// ── 2. Adopt the outcome of this batch's episode ──────────────────────
	case current != nil && current.from == stale && current.settledVersion == c.session.Version():

	default:
		// ── 3. Token already rotated by a previous episode ────────────────
		if token := c.session.Token(); token != "" && token != stale {
			c.mu.Unlock()
			return token, nil
		}

		// ── 4. Become the refresher ───────────────────────────────────────
		current = &episode{done: make(chan struct{}), from: stale}
		c.episode = current
		go c.runRefresh(context.WithoutCancel(ctx), current)
	}

	c.mu.Unlock()

	select {
	case <-current.done:
		return current.token, current.err
	case <-ctx.Done():
		return "", apperr.RequestFailed(0, "Request cancelled while waiting for token refresh", ctx.Err())
	}
}

// runRefresh performs the refresh call and applies its outcome to the session
// before releasing the waiters.
func (c *Client) runRefresh(parent context.Context, ep *episode) {
	ctx, cancel := context.WithTimeout(parent, constants.RefreshTimeout)
	defer cancel()

	c.logger.Info("refresh_started")

	result, err := c.callRefresh(ctx)
	if err != nil {
		c.session.Clear(ctx)
		ep.err = apperr.RefreshFailed(err)

		c.logger.Warn("refresh_failed", slog.Any("error", err))
	} else {
		c.session.SetToken(ctx, result.accessToken())
		if result.RefreshToken != "" {
			c.session.SetRefreshToken(ctx, result.RefreshToken)
		}
		if result.User != nil {
			c.session.SetUser(result.User)
		}
		ep.token = result.accessToken()

		c.logger.Info("refresh_succeeded")
	}

	c.mu.Lock()
	ep.settled = true
	ep.settledVersion = c.session.Version()
	c.mu.Unlock()

	close(ep.done)
}

// callRefresh exchanges the refresh credential for a new access token.
func (c *Client) callRefresh(ctx context.Context) (refreshResponse, error) {
	var result refreshResponse

	body, err := json.Marshal(refreshRequest{RefreshToken: c.session.RefreshToken()})
	if err != nil {
		return result, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.refreshPath, bytes.NewReader(body))
	if err != nil {
		return result, err
	}
	httpReq.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	httpReq.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	httpReq.Header.Set(constants.HeaderXRequestID, uuidv7.New())

	if err := c.exchange(ctx, httpReq, &result); err != nil {
		return result, err
	}

	if result.accessToken() == "" {
		return result, errors.New("refresh response carried no access token")
	}

	return result, nil
}
