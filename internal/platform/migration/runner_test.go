// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cuentasclaras/cuentasclaras/internal/platform/migration"
)

func TestToPgx5DSN(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://cc:secret@db:5432/cuentas", "pgx5://cc:secret@db:5432/cuentas"},
		{"postgresql://db/cuentas?sslmode=disable", "pgx5://db/cuentas?sslmode=disable"},
		{"pgx5://db/cuentas", "pgx5://db/cuentas"},
		{"host=db dbname=cuentas", "host=db dbname=cuentas"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, migration.ToPgx5DSN(tt.in))
	}
}
