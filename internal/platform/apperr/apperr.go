// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for Cuentas Claras.

It provides a rich error type that bridges low-level transport failures and
the messages shown to a user.

Architecture:

  - AppError: A struct containing a machine-readable Code and a user-facing message.
  - Taxonomy: Unauthenticated, Forbidden, AuthExpired, RefreshFailed,
    RequestFailed and ValidationFailed, plus the generic NotFound/Conflict/Internal.
  - Mapping: Explicit mapping between AppError and HTTP status codes, in both
    directions (guard responses and decoded backend responses).

Every error that leaves the request pipeline or a resource service is an
[AppError] so callers can branch on [Is] without parsing strings.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// # Error Codes

const (
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodeForbidden        = "FORBIDDEN"
	CodeAuthExpired      = "AUTH_EXPIRED"
	CodeRefreshFailed    = "REFRESH_FAILED"
	CodeRequestFailed    = "REQUEST_FAILED"
	CodeValidationFailed = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeInternal         = "INTERNAL_ERROR"
)

// AppError is the canonical error type for the Cuentas Claras client.
//
// It carries an HTTP status code, a machine-readable code, a displayable
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for logging only and is never written to a guard response.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "REFRESH_FAILED").
	Code string `json:"code"`
	// Message is a human-readable description safe to show to the user.
	Message string `json:"error"`
	// HTTPStatus is the HTTP status code associated with the failure.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Authentication & Authorization

// Unauthenticated creates a 401 [AppError] for a missing or rejected identity.
func Unauthenticated(msg string) *AppError {
	return &AppError{
		Code:       CodeUnauthenticated,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// AuthExpired marks a 401 that is eligible for a token refresh. It never
// reaches callers of the request pipeline.
func AuthExpired(msg string) *AppError {
	return &AppError{
		Code:       CodeAuthExpired,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// RefreshFailed creates the terminal error surfaced when a token refresh
// fails. Callers must treat it as "session ended".
func RefreshFailed(cause error) *AppError {
	return &AppError{
		Code:       CodeRefreshFailed,
		Message:    "Session expired, please sign in again",
		HTTPStatus: http.StatusUnauthorized,
		Cause:      cause,
	}
}

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Multa") // Returns "Multa not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Conflict creates a 409 [AppError].
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidationFailed,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// # Transport & Server Errors

// RequestFailed creates an [AppError] for a failure unrelated to auth. A zero
// status means the request never produced a response (network error).
func RequestFailed(status int, msg string, cause error) *AppError {
	if status == 0 {
		status = http.StatusBadGateway
	}
	return &AppError{
		Code:       CodeRequestFailed,
		Message:    msg,
		HTTPStatus: status,
		Cause:      cause,
	}
}

// Internal creates a 500 [AppError] wrapping an unexpected error.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Status Mapping

// FromStatus classifies a non-2xx backend response into the taxonomy.
//
// 401 is reported as [CodeAuthExpired]; the request pipeline decides whether
// it is absorbed by a refresh or becomes terminal.
func FromStatus(status int, msg string, details []FieldError) *AppError {
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized:
		return AuthExpired(msg)
	case status == http.StatusForbidden:
		return Forbidden(msg)
	case status == http.StatusNotFound:
		return &AppError{Code: CodeNotFound, Message: msg, HTTPStatus: status}
	case status == http.StatusConflict:
		e := Conflict(msg)
		e.Details = details
		return e
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		e := ValidationError(msg, details...)
		e.HTTPStatus = status
		return e
	default:
		return RequestFailed(status, msg, nil)
	}
}

// # Helpers

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// Is reports whether the outermost [*AppError] in err's chain carries code.
func Is(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
