// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuentasclaras/cuentasclaras/internal/access"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/sec"
)

func newService(t *testing.T, issuer string) *sec.TokenService {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return sec.NewTokenServiceFromKeys(key, &key.PublicKey, issuer)
}

/*
TestTokenService_RoundTrip carries memberships through the token.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newService(t, "cuentasclaras.cl")
	user := &access.User{
		ID:          7,
		PersonaID:   70,
		Username:    "tesorera",
		Memberships: []access.Membership{{CommunityID: 5, Role: access.RoleTesorero}},
	}

	token, err := service.GenerateAccessToken(user, time.Minute)
	require.NoError(t, err)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)

	rebuilt := claims.User()
	assert.Equal(t, int64(7), rebuilt.ID)
	assert.Equal(t, int64(70), rebuilt.PersonaID)
	assert.Equal(t, []access.Role{access.RoleTesorero}, rebuilt.RolesIn(5))
	assert.Equal(t, "7", claims.Subject)
	assert.Greater(t, claims.ExpiresIn(time.Now()), time.Duration(0))
}

/*
TestTokenService_Rejects covers expiry, issuer and foreign keys.
*/
func TestTokenService_Rejects(t *testing.T) {
	service := newService(t, "cuentasclaras.cl")
	user := &access.User{ID: 1}

	expired, err := service.GenerateAccessToken(user, -time.Minute)
	require.NoError(t, err)
	_, err = service.VerifyToken(expired)
	assert.Error(t, err)

	otherIssuer, err := newService(t, "evil.example").GenerateAccessToken(user, time.Minute)
	require.NoError(t, err)
	_, err = service.VerifyToken(otherIssuer)
	assert.Error(t, err)

	_, err = service.VerifyToken("not-a-token")
	assert.Error(t, err)
}

/*
TestPeekClaims reads claims without a key, even from an expired token.
*/
func TestPeekClaims(t *testing.T) {
	service := newService(t, "cuentasclaras.cl")

	token, err := service.GenerateAccessToken(&access.User{ID: 3, Username: "conserje"}, -time.Hour)
	require.NoError(t, err)

	claims, err := sec.PeekClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "conserje", claims.Username)
	assert.Equal(t, time.Duration(0), claims.ExpiresIn(time.Now()))

	_, err = sec.PeekClaims("garbage")
	assert.Error(t, err)
}

/*
TestTokenService_VerifyOnly refuses to sign without a private key.
*/
func TestTokenService_VerifyOnly(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	verifier := sec.NewTokenServiceFromKeys(nil, &key.PublicKey, "cuentasclaras.cl")
	_, err = verifier.GenerateAccessToken(&access.User{ID: 1}, time.Minute)
	assert.Error(t, err)
}
