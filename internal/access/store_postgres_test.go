// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuentasclaras/cuentasclaras/internal/access"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/migration"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/postgres"
)

/*
TestPostgresPolicyRepository_Load reads enabled rules with their role and
state arrays. It needs a database at CC_DATABASE_URL.
*/
func TestPostgresPolicyRepository_Load(t *testing.T) {
	dsn := os.Getenv("CC_DATABASE_URL")
	if dsn == "" {
		t.Skip("CC_DATABASE_URL not set")
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, migration.RunUp(dsn, "../../data/migrations", logger))

	pool, err := postgres.NewPool(ctx, dsn, logger)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	const cleanup = `DELETE FROM access.capability_rule WHERE action LIKE 'testing.%'`
	_, err = pool.Exec(ctx, cleanup)
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = pool.Exec(context.Background(), cleanup) })

	_, err = pool.Exec(ctx, `
		INSERT INTO access.capability_rule (action, roles, selfservice, anyauthenticated, states, isenabled) VALUES
			('testing.roles',    ARRAY['admin','tesorero'], FALSE, FALSE, ARRAY['pendiente','vencida'], TRUE),
			('testing.self',     '{}',                      TRUE,  FALSE, '{}',                     TRUE),
			('testing.disabled', ARRAY['admin'],            FALSE, FALSE, '{}',                     FALSE)
	`)
	require.NoError(t, err)

	policy, err := access.NewPostgresPolicyRepository(pool).Load(ctx)
	require.NoError(t, err)

	require.Contains(t, policy, access.Action("testing.roles"))
	assert.Equal(t, []access.Role{access.RoleAdmin, access.RoleTesorero}, policy["testing.roles"].Roles)
	assert.Equal(t, []string{"pendiente", "vencida"}, policy["testing.roles"].States)

	require.Contains(t, policy, access.Action("testing.self"))
	assert.True(t, policy["testing.self"].SelfService)
	assert.Empty(t, policy["testing.self"].Roles)
	assert.Empty(t, policy["testing.self"].States)

	assert.NotContains(t, policy, access.Action("testing.disabled"))

	evaluator := access.NewEvaluator(access.DefaultPolicy().Merge(policy))
	tesorero := &access.User{ID: 7, Roles: []access.Role{access.RoleTesorero}}
	assert.True(t, evaluator.Can(tesorero, "testing.roles", access.Resource{State: "vencida"}))
	assert.False(t, evaluator.Can(tesorero, "testing.roles", access.Resource{State: "pagada"}))
}
