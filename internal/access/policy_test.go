// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuentasclaras/cuentasclaras/internal/access"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/apperr"
)

const overrideDocument = `
rules:
  fines.delete:
    roles: [admin]
  reports.export:
    roles: [contador, tesorero]
  fines.appeal:
    self_service: true
    states: [pendiente]
`

/*
TestDecodePolicy parses the YAML layout, including superadmin-only rows.
*/
func TestDecodePolicy(t *testing.T) {
	policy, err := access.DecodePolicy([]byte(overrideDocument))
	require.NoError(t, err)

	require.Len(t, policy, 3)
	assert.Equal(t, []access.Role{access.RoleAdmin}, policy[access.FinesDelete].Roles)
	assert.True(t, policy[access.FinesAppeal].SelfService)
	assert.Empty(t, policy[access.FinesAppeal].Roles)
	assert.Equal(t, []string{"pendiente"}, policy[access.FinesAppeal].States)
}

/*
TestEncodePolicy_RoundTrip keeps the default table intact through YAML.
*/
func TestEncodePolicy_RoundTrip(t *testing.T) {
	original := access.DefaultPolicy()

	data, err := access.EncodePolicy(original)
	require.NoError(t, err)

	decoded, err := access.DecodePolicy(data)
	require.NoError(t, err)

	assert.Equal(t, original.Actions(), decoded.Actions())
	assert.Equal(t, original[access.FinesAppeal], decoded[access.FinesAppeal])
	assert.Empty(t, decoded[access.FinesDelete].Roles)
}

/*
TestPolicy_Validate rejects unknown roles with field details.
*/
func TestPolicy_Validate(t *testing.T) {
	assert.NoError(t, access.DefaultPolicy().Validate())

	broken := access.Policy{
		access.FinesEdit: {Roles: []access.Role{"administrador"}},
		"":               {Roles: []access.Role{access.RoleAdmin}},
	}

	err := broken.Validate()
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.CodeValidationFailed, ae.Code)
	assert.Len(t, ae.Details, 2)
}

/*
TestLoadPolicy_FileOverlay merges a YAML file onto the defaults and feeds the
result to an evaluator.
*/
func TestLoadPolicy_FileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(overrideDocument), 0o600))

	policy, err := access.LoadPolicy(context.Background(), access.NewFilePolicyRepository(path))
	require.NoError(t, err)

	evaluator := access.NewEvaluator(policy)
	admin := &access.User{ID: 2, Memberships: []access.Membership{{CommunityID: 1, Role: access.RoleAdmin}}}
	contador := &access.User{ID: 3, Roles: []access.Role{access.RoleContador}}

	assert.True(t, evaluator.Can(admin, access.FinesDelete, access.InCommunity(1)))
	assert.True(t, evaluator.Can(contador, "reports.export", access.Resource{}))

	// The override replaced the whole rule: admins lost the appeal role branch.
	assert.False(t, evaluator.Can(admin, access.FinesAppeal, access.InCommunity(1)))

	// Untouched rows keep their defaults.
	assert.True(t, evaluator.Can(admin, access.FinesEdit, access.InCommunity(1)))
}

/*
TestLoadPolicy_InvalidFile surfaces decoding and validation failures.
*/
func TestLoadPolicy_InvalidFile(t *testing.T) {
	dir := t.TempDir()

	missing := access.NewFilePolicyRepository(filepath.Join(dir, "absent.yaml"))
	_, err := access.LoadPolicy(context.Background(), missing)
	assert.Error(t, err)

	badRole := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badRole, []byte("rules:\n  fines.edit:\n    roles: [jefe]\n"), 0o600))

	_, err = access.LoadPolicy(context.Background(), access.NewFilePolicyRepository(badRole))
	assert.True(t, apperr.Is(err, apperr.CodeValidationFailed))
}
