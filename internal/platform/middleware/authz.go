// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/cuentasclaras/cuentasclaras/internal/access"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/apperr"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/constants"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/ctxutil"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/request"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/respond"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// ResourceResolver builds the capability context of a request, typically
// from URL parameters. Returning an error aborts the request with it.
type ResourceResolver func(request *http.Request) (access.Resource, error)

// Authenticate extracts and verifies the JWT from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, parse and verify the JWT via [TokenVerifier].
//  4. Inject the [*access.User] rebuilt from the claims into the context.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
			authHeader := req.Header.Get(constants.HeaderAuthorization)

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, req)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			scheme, tokenStr, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, constants.BearerScheme) || tokenStr == "" {
				respond.Error(writer, req, apperr.Unauthenticated("Invalid authorization format"))
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			claims, err := verifier.VerifyToken(tokenStr)
			if err != nil {
				respond.Error(writer, req, apperr.Unauthenticated("Invalid or expired token"))
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithUser(req.Context(), claims.User())
			next.ServeHTTP(writer, req.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
		if ctxutil.GetUser(req.Context()) == nil {
			respond.Error(writer, req, apperr.Unauthenticated("Authentication required"))
			return
		}
		next.ServeHTTP(writer, req)
	})
}

// RequireCapability blocks requests the evaluator denies.
//
// # Usage
//
// Must be registered AFTER [Authenticate]. It implies [RequireAuth]. A nil
// resolver evaluates the action without a resource context (global roles).
//
// # Flow
//  1. Reject anonymous requests with 401.
//  2. Resolve the resource context.
//  3. Ask the evaluator; a denial is a 403 and is logged with its reason.
func RequireCapability(evaluator *access.Evaluator, action access.Action, resolver ResourceResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
			user := ctxutil.GetUser(req.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if user == nil {
				respond.Error(writer, req, apperr.Unauthenticated("Authentication required"))
				return
			}

			// ── 2. Resource Context ───────────────────────────────────────────
			var resource access.Resource
			if resolver != nil {
				resolved, err := resolver(req)
				if err != nil {
					respond.Error(writer, req, err)
					return
				}
				resource = resolved
			}

			// ── 3. Authorization Check ────────────────────────────────────────
			decision := evaluator.Decide(user, action, resource)
			if !decision.Allowed() {
				ctxutil.GetLogger(req.Context()).WarnContext(req.Context(), "capability_denied",
					slog.Int64("user_id", user.ID),
					slog.String("action", string(action)),
					slog.Int64("community_id", resource.CommunityID),
					slog.String("decision", decision.String()),
				)
				respond.Error(writer, req, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, req)
		})
	}
}

// CommunityParam resolves the community from a chi URL parameter, e.g.
// "comunidadID" in "/comunidades/{comunidadID}/multas".
func CommunityParam(name string) ResourceResolver {
	return func(req *http.Request) (access.Resource, error) {
		id, err := request.ID(req, name)
		if err != nil {
			return access.Resource{}, err
		}
		return access.InCommunity(id), nil
	}
}
