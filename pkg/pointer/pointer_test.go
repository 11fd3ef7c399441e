// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cuentasclaras/cuentasclaras/pkg/pointer"
)

func TestTo(t *testing.T) {
	value := int64(15000)
	amount := pointer.To(value)
	assert.Equal(t, value, *amount)

	// The pointer addresses a copy.
	*amount = 0
	assert.Equal(t, int64(15000), value)
}
