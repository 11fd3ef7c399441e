// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cuentasclaras/cuentasclaras/internal/platform/apperr"
	"github.com/cuentasclaras/cuentasclaras/pkg/pagination"
)

/*
TestExitCode maps the error taxonomy onto process exit codes.
*/
func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, exitOK},
		{"plain_error", errors.New("boom"), exitError},
		{"refresh_failed", apperr.RefreshFailed(errors.New("expired")), exitUnauthenticated},
		{"wrapped_forbidden", fmt.Errorf("fines: %w", apperr.Forbidden("no")), exitForbidden},
		{"validation", apperr.ValidationError("bad"), exitInvalid},
		{"not_found", apperr.NotFound("Multa"), exitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

/*
TestDescribeError lists field details and points expired sessions to login.
*/
func TestDescribeError(t *testing.T) {
	message := describeError(apperr.ValidationError("Invalid payment", apperr.FieldError{Field: "monto", Message: "Must be positive"}))
	assert.Contains(t, message, "VALIDATION_ERROR")
	assert.Contains(t, message, "- monto: Must be positive")

	assert.Contains(t, describeError(apperr.RefreshFailed(errors.New("expired"))), "cuentas login")
	assert.Equal(t, "error: boom", describeError(errors.New("boom")))
}

func TestFormatCLP(t *testing.T) {
	assert.Equal(t, "$0", formatCLP(0))
	assert.Equal(t, "$950", formatCLP(950))
	assert.Equal(t, "$15.000", formatCLP(15000))
	assert.Equal(t, "$1.234.567", formatCLP(1234567))
	assert.Equal(t, "-$2.500", formatCLP(-2500))
}

func TestParseID(t *testing.T) {
	id, err := parseID("fine-id", "120")
	assert.NoError(t, err)
	assert.Equal(t, int64(120), id)

	for _, raw := range []string{"0", "-3", "abc", ""} {
		_, err := parseID("fine-id", raw)
		assert.True(t, apperr.Is(err, apperr.CodeValidationFailed), raw)
	}
}

func TestPageFooter(t *testing.T) {
	assert.Empty(t, pageFooter(pagination.Meta{}))
	assert.Equal(t, "Page 1 of 3 (55 total), use --page 2 for more", pageFooter(pagination.NewMeta(1, 20, 55)))
	assert.Equal(t, "Page 3 of 3 (55 total)", pageFooter(pagination.NewMeta(3, 20, 55)))
}
