// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuentasclaras/cuentasclaras/internal/platform/apperr"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "motivo", "Ruidos molestos", false},
		{"empty_string", "motivo", "", true},
		{"whitespace_only", "motivo", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Numbers checks identifier and amount rules.
*/
func TestValidator_Numbers(t *testing.T) {
	tests := []struct {
		name    string
		run     func(v *validate.Validator)
		isValid bool
	}{
		{"positive_id", func(v *validate.Validator) { v.ID("comunidad_id", 5) }, true},
		{"zero_id", func(v *validate.Validator) { v.ID("comunidad_id", 0) }, false},
		{"negative_id", func(v *validate.Validator) { v.ID("comunidad_id", -1) }, false},
		{"positive_amount", func(v *validate.Validator) { v.Amount("monto", 15000) }, true},
		{"zero_amount", func(v *validate.Validator) { v.Amount("monto", 0) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			tt.run(v)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Date accepts ISO calendar dates and empty values.
*/
func TestValidator_Date(t *testing.T) {
	assert.False(t, (&validate.Validator{}).Date("fecha", "2026-03-31").HasErrors())
	assert.False(t, (&validate.Validator{}).Date("fecha", "").HasErrors())
	assert.True(t, (&validate.Validator{}).Date("fecha", "31/03/2026").HasErrors())
	assert.True(t, (&validate.Validator{}).Date("fecha", "2026-02-30").HasErrors())
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("username", "tesorera").
		MinLen("username", "tesorera", 3).
		MaxLen("username", "tesorera", 50).
		Email("email", "tesoreria@cuentasclaras.cl").
		OneOf("estado", "pendiente", "pendiente", "pagado").
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("username", "").
		MinLen("username", "a", 5).
		Email("email", "not-an-email").
		Custom("monto", true, "Cannot exceed the outstanding balance").
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	assert.Len(t, ae.Details, 4)
}
