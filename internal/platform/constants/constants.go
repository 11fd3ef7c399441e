// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire module.

Categories:

  - Client Timing: outbound request and refresh deadlines.
  - Session Storage: the well-known persistence keys.
  - Transport: header names shared by the client and the guard.

Using this package keeps magic strings and numbers out of the core packages.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "cuentas-claras"
	AppVersion = "0.1.0-dev"
)

// # Client Timing

const (
	// DefaultRequestTimeout bounds a single outbound HTTP exchange.
	DefaultRequestTimeout = 30 * time.Second

	// RefreshTimeout bounds one refresh call. The refresh is detached from the
	// caller that triggered it, so it needs its own deadline.
	RefreshTimeout = 15 * time.Second

	// PersistTimeout bounds a single write to the session persister.
	PersistTimeout = 2 * time.Second

	// StartupTimeout bounds config loading, persister connection and policy load.
	StartupTimeout = 30 * time.Second
)

// # Guard Server

const (
	DefaultReadTimeout       = 10 * time.Second
	DefaultWriteTimeout      = 15 * time.Second
	DefaultIdleTimeout       = 60 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second

	// ShutdownTimeout is how long in-flight guard requests may take to finish.
	ShutdownTimeout = 10 * time.Second

	// HealthCheckTimeout bounds each readiness probe dependency check.
	HealthCheckTimeout = 2 * time.Second
)

// # Session Storage

const (
	// StorageKeyAccessToken is the single well-known key the access token is
	// persisted under. Absence of the key means logged out.
	StorageKeyAccessToken = "cuentas_claras:access_token"

	// StorageKeyRefreshToken holds the refresh credential for deployments that
	// do not rely on an HTTP-only cookie.
	StorageKeyRefreshToken = "cuentas_claras:refresh_token"

	// RedisPrefixSession namespaces session keys when Redis is the persister.
	RedisPrefixSession = "session:"
)

// # Transport

const (
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderContentType   = "Content-Type"
	HeaderAccept        = "Accept"

	// BearerScheme is the authorization scheme for access tokens.
	BearerScheme = "Bearer"

	// ContentTypeJSON is used for every request and response body.
	ContentTypeJSON = "application/json"

	// DefaultRefreshPath is the refresh endpoint relative to the API base URL.
	DefaultRefreshPath = "/auth/refresh"
)

// # Authentication

const (
	// AuthIssuer is the expected 'iss' claim of access tokens verified by the guard.
	AuthIssuer = "cuentasclaras.cl"

	// RefreshTokenCookieName is the cookie the backend uses for the refresh credential.
	RefreshTokenCookieName = "refresh_token"
)

// # JSON Field Identifiers

const (
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
)
