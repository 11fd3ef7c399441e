// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec verifies and issues the RS256 access tokens of the backend.
//
// # Architecture
//
// The HTTP guard uses [TokenService.VerifyToken] to rebuild an [access.User]
// from the token alone, so Go handlers can run the same capability checks as
// the client without a profile lookup. The CLI uses [PeekClaims] to show when
// the stored token expires; it never trusts those claims for access decisions.
package sec

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cuentasclaras/cuentasclaras/internal/access"
)

// AuthClaims represents the payload embedded inside an access token.
//
// Membership and role claims let the guard evaluate community-scoped
// capabilities without querying the database on every request.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom claims are abbreviated to keep the token small.
	UserID       int64               `json:"uid"`
	PersonaID    int64               `json:"pid,omitempty"`
	Username     string              `json:"unm"`
	Email        string              `json:"eml,omitempty"`
	IsSuperadmin bool                `json:"sa,omitempty"`
	Roles        []access.Role       `json:"rol,omitempty"`
	Memberships  []access.Membership `json:"mem,omitempty"`
}

// User rebuilds the principal carried by the token.
func (claims *AuthClaims) User() *access.User {
	return &access.User{
		ID:           claims.UserID,
		PersonaID:    claims.PersonaID,
		Username:     claims.Username,
		Email:        claims.Email,
		IsSuperadmin: claims.IsSuperadmin,
		Roles:        claims.Roles,
		Memberships:  claims.Memberships,
	}
}

// ExpiresIn returns the time left before expiry, or zero when already expired
// or when the token carries no expiry.
func (claims *AuthClaims) ExpiresIn(now time.Time) time.Duration {
	if claims.ExpiresAt == nil {
		return 0
	}
	left := claims.ExpiresAt.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// TokenService handles generation and verification of JWT tokens using RS256.
//
// A service built with a nil private key can only verify.
type TokenService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
}

// NewTokenService reads PEM encoded RSA keys from disk. An empty
// privateKeyPath yields a verify-only service.
func NewTokenService(privateKeyPath, publicKeyPath, issuer string) (*TokenService, error) {
	var privateKey *rsa.PrivateKey
	if privateKeyPath != "" {
		privateKeyData, err := os.ReadFile(privateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("sec: failed to read private key from %s: %w", privateKeyPath, err)
		}

		privateKey, err = jwt.ParseRSAPrivateKeyFromPEM(privateKeyData)
		if err != nil {
			return nil, fmt.Errorf("sec: failed to parse private key: %w", err)
		}
	}

	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read public key from %s: %w", publicKeyPath, err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse public key: %w", err)
	}

	return NewTokenServiceFromKeys(privateKey, publicKey, issuer), nil
}

// NewTokenServiceFromKeys builds a [TokenService] from parsed keys.
func NewTokenServiceFromKeys(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, issuer string) *TokenService {
	return &TokenService{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
	}
}

// GenerateAccessToken signs an access token for user.
func (service *TokenService) GenerateAccessToken(user *access.User, timeToLive time.Duration) (string, error) {
	if service.privateKey == nil {
		return "", errors.New("sec: token service has no private key")
	}

	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		UserID:       user.ID,
		PersonaID:    user.PersonaID,
		Username:     user.Username,
		Email:        user.Email,
		IsSuperadmin: user.IsSuperadmin,
		Roles:        user.Roles,
		Memberships:  user.Memberships,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signedToken, err := token.SignedString(service.privateKey)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature, issuer and expiry of a token.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.publicKey, nil
	}, jwt.WithIssuer(service.issuer), jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	return claims, nil
}

// PeekClaims decodes a token without verifying its signature. The result is
// for display only.
func PeekClaims(tokenString string) (*AuthClaims, error) {
	claims := &AuthClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("sec: malformed token: %w", err)
	}
	return claims, nil
}
