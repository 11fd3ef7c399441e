// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package uuidv7 generates the time-ordered identifiers used as X-Request-ID
// by the client and the guard, so log lines sort by creation time.
package uuidv7

import "github.com/google/uuid"

// New returns a UUIDv7 string. It falls back to a random UUIDv4 when the
// clock-based generator fails, so callers always get an identifier.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
