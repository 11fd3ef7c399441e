// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements sign-in, sign-out and profile loading on top of the
request pipeline.

Architecture:

  - Service: Orchestrates Login, Logout and Me and keeps the session store in
    step with the backend.
  - The request pipeline owns token refresh; this package never handles a 401
    itself.

A successful login replaces the session wholesale: access token, refresh
credential and user are written together.
*/
package auth

import "github.com/cuentasclaras/cuentasclaras/internal/access"

// # Endpoints

const (
	pathLogin  = "/auth/login"
	pathLogout = "/auth/logout"
	pathMe     = "/auth/me"
)

// LoginInput holds the credentials typed by the user. Identifier is a
// username or an email address.
type LoginInput struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// loginResponse accepts both token field names used by the backend.
type loginResponse struct {
	AccessToken  string       `json:"accessToken"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
	User         *access.User `json:"user"`
}

func (r loginResponse) accessToken() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}
