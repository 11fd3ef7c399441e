// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package fine manages fines (multas) issued to units of a community.
package fine

import (
	"time"

	"github.com/cuentasclaras/cuentasclaras/internal/access"
)

// # Lifecycle States

const (
	StatePending   = "pendiente"
	StatePaid      = "pagado"
	StateOverdue   = "vencido"
	StateAppealed  = "apelada"
	StateCancelled = "anulada"
)

// Fine is a monetary sanction against a unit. Amounts are whole pesos.
type Fine struct {
	ID             int64     `json:"id"`
	CommunityID    int64     `json:"comunidad_id"`
	UnitID         int64     `json:"unidad_id"`
	OwnerUserID    int64     `json:"usuario_id,omitempty"`
	OwnerPersonaID int64     `json:"persona_id,omitempty"`
	Reason         string    `json:"motivo"`
	Description    string    `json:"descripcion,omitempty"`
	Amount         int64     `json:"monto"`
	AmountPaid     int64     `json:"monto_pagado"`
	State          string    `json:"estado"`
	IssuedOn       string    `json:"fecha"`
	DueOn          string    `json:"fecha_vencimiento,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Resource returns the capability context of the fine.
func (f *Fine) Resource() access.Resource {
	return access.Resource{
		CommunityID:    f.CommunityID,
		OwnerUserID:    f.OwnerUserID,
		OwnerPersonaID: f.OwnerPersonaID,
		State:          f.State,
	}
}

// Balance returns the amount still owed.
func (f *Fine) Balance() int64 {
	if f.AmountPaid >= f.Amount {
		return 0
	}
	return f.Amount - f.AmountPaid
}

// Filter narrows a fine listing. Zero values are ignored.
type Filter struct {
	CommunityID int64
	UnitID      int64
	State       string
}

// CreateInput holds the fields of a new fine.
type CreateInput struct {
	CommunityID int64  `json:"comunidad_id"`
	UnitID      int64  `json:"unidad_id"`
	Reason      string `json:"motivo"`
	Description string `json:"descripcion,omitempty"`
	Amount      int64  `json:"monto"`
	IssuedOn    string `json:"fecha"`
	DueOn       string `json:"fecha_vencimiento,omitempty"`
}

// UpdateInput holds editable fields. Nil pointers are left unchanged.
type UpdateInput struct {
	Reason      *string `json:"motivo,omitempty"`
	Description *string `json:"descripcion,omitempty"`
	Amount      *int64  `json:"monto,omitempty"`
	DueOn       *string `json:"fecha_vencimiento,omitempty"`
}

// Payment registers money received against a fine, e.g. cash at the front desk.
type Payment struct {
	Amount    int64  `json:"monto"`
	Method    string `json:"medio_pago"`
	PaidOn    string `json:"fecha_pago"`
	Reference string `json:"referencia,omitempty"`
}

// Payment methods accepted by the backend.
var PaymentMethods = []string{"efectivo", "transferencia", "cheque", "webpay"}
