// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests
behind the capability guard.

It abstracts away the router's parameter extraction, so resolvers and handlers
share one way of reading IDs and the principal.
*/
package request

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cuentasclaras/cuentasclaras/internal/access"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/apperr"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/ctxutil"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Param retrieves a named URL parameter from the request.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
ID parses a named URL parameter as a positive backend identifier.

Returns:
  - int64: The parsed identifier
  - error: VALIDATION_ERROR when absent, malformed or not positive
*/
func ID(request *http.Request, name string) (int64, error) {
	raw := chi.URLParam(request, name)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.ValidationError("Invalid identifier", apperr.FieldError{
			Field:   name,
			Message: "Must be a positive identifier",
		})
	}
	return id, nil
}

// User returns the authenticated principal, or nil for anonymous requests.
func User(request *http.Request) *access.User {
	return ctxutil.GetUser(request.Context())
}
