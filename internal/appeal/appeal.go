// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package appeal manages appeals (apelaciones) raised against fines.
//
// An owner may appeal their own pending or overdue fine; the committee or an
// administrator resolves it.
package appeal

import (
	"time"

	"github.com/cuentasclaras/cuentasclaras/internal/access"
)

// # Lifecycle States

const (
	StatePending  = "pendiente"
	StateAccepted = "aceptada"
	StateRejected = "rechazada"
)

// Appeal is a request to annul or reduce a fine.
type Appeal struct {
	ID             int64      `json:"id"`
	FineID         int64      `json:"multa_id"`
	CommunityID    int64      `json:"comunidad_id"`
	OwnerUserID    int64      `json:"usuario_id,omitempty"`
	OwnerPersonaID int64      `json:"persona_id,omitempty"`
	Reason         string     `json:"motivo"`
	State          string     `json:"estado"`
	Resolution     string     `json:"resolucion,omitempty"`
	ResolvedBy     int64      `json:"resuelto_por,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

// Resource returns the capability context of the appeal.
func (a *Appeal) Resource() access.Resource {
	return access.Resource{
		CommunityID:    a.CommunityID,
		OwnerUserID:    a.OwnerUserID,
		OwnerPersonaID: a.OwnerPersonaID,
		State:          a.State,
	}
}

// CreateInput is the body of a new appeal.
type CreateInput struct {
	FineID int64  `json:"multa_id"`
	Reason string `json:"motivo"`
}

// Resolution is the committee's decision on an appeal.
type Resolution struct {
	Accept  bool   `json:"aceptar"`
	Comment string `json:"comentario"`
}
