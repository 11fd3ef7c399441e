// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package provider lists the suppliers (proveedores) of a community.
//
// Tax and banking details are only shown to roles allowed to see sensitive
// fields; everyone else gets a redacted copy.
package provider

// Provider is a supplier hired by a community.
type Provider struct {
	ID          int64  `json:"id"`
	CommunityID int64  `json:"comunidad_id"`
	Name        string `json:"nombre"`
	Category    string `json:"rubro"`
	Phone       string `json:"telefono,omitempty"`
	Email       string `json:"email,omitempty"`
	Active      bool   `json:"activo"`

	// Sensitive fields.
	TaxID       string `json:"rut,omitempty"`
	Address     string `json:"direccion,omitempty"`
	BankAccount string `json:"cuenta_bancaria,omitempty"`
}

// Redacted returns a copy without the sensitive fields.
func (p Provider) Redacted() Provider {
	p.TaxID = ""
	p.Address = ""
	p.BankAccount = ""
	return p
}
