// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/cuentasclaras/cuentasclaras/internal/platform/apperr"
)

// # Actions

// Action names a capability, "<resource>.<verb>".
type Action string

const (
	FinesView            Action = "fines.view"
	FinesCreate          Action = "fines.create"
	FinesEdit            Action = "fines.edit"
	FinesDelete          Action = "fines.delete"
	FinesRegisterPayment Action = "fines.registerPayment"
	FinesAppeal          Action = "fines.appeal"

	AppealsView    Action = "appeals.view"
	AppealsResolve Action = "appeals.resolve"
	AppealsDelete  Action = "appeals.delete"

	ProvidersView                Action = "providers.view"
	ProvidersEdit                Action = "providers.edit"
	ProvidersViewSensitiveFields Action = "providers.viewSensitiveFields"

	ChargesView   Action = "charges.view"
	ChargesCreate Action = "charges.create"

	PaymentsView      Action = "payments.view"
	PaymentsReconcile Action = "payments.reconcile"

	MetersView        Action = "meters.view"
	MetersRecordUsage Action = "meters.recordReading"

	TicketsView    Action = "tickets.view"
	TicketsCreate  Action = "tickets.create"
	TicketsResolve Action = "tickets.resolve"

	UnitsView   Action = "units.view"
	UnitsManage Action = "units.manage"

	CommunitiesManage Action = "communities.manage"

	ProfileView Action = "profile.view"
)

// # Rules

// Rule is one row of the allow-list table.
//
// Access is granted when a resolved role is listed in Roles, OR when
// AnyAuthenticated is set, OR when SelfService is set and the caller owns the
// record. States, when non-empty, restricts every branch except the superadmin
// override to records in one of the listed states.
type Rule struct {
	Roles            []Role   `json:"roles,omitempty"             yaml:"roles,omitempty"`
	SelfService      bool     `json:"self_service,omitempty"      yaml:"self_service,omitempty"`
	AnyAuthenticated bool     `json:"any_authenticated,omitempty" yaml:"any_authenticated,omitempty"`
	States           []string `json:"states,omitempty"            yaml:"states,omitempty"`
}

func (r Rule) clone() Rule {
	r.Roles = slices.Clone(r.Roles)
	r.States = slices.Clone(r.States)
	return r
}

// allowsRole reports whether any of roles appears in the rule's allow-list.
func (r Rule) allowsRole(roles []Role) bool {
	for _, held := range roles {
		for _, allowed := range r.Roles {
			if held == allowed {
				return true
			}
		}
	}
	return false
}

// allowsState reports whether the record state satisfies the rule. A record
// without a state is not constrained.
func (r Rule) allowsState(state string) bool {
	if len(r.States) == 0 || state == "" {
		return true
	}
	for _, allowed := range r.States {
		if strings.EqualFold(state, allowed) {
			return true
		}
	}
	return false
}

// Policy is the allow-list table. An action without an entry is denied to
// every non-superadmin user.
type Policy map[Action]Rule

// DefaultPolicy returns the built-in allow-list table.
//
// An empty Roles slice with no other branch means superadmin only.
func DefaultPolicy() Policy {
	return Policy{
		FinesView:            {Roles: []Role{RoleAdmin, RoleComite, RoleTesorero, RoleConserje, RoleContador}, SelfService: true},
		FinesCreate:          {Roles: []Role{RoleAdmin, RoleTesorero}},
		FinesEdit:            {Roles: []Role{RoleAdmin, RoleTesorero}},
		FinesDelete:          {},
		FinesRegisterPayment: {Roles: []Role{RoleAdmin, RoleTesorero, RoleConserje}},
		FinesAppeal: {
			Roles:       []Role{RoleAdmin, RoleComite},
			SelfService: true,
			States:      []string{"pendiente", "vencido"},
		},

		AppealsView:    {Roles: []Role{RoleAdmin, RoleComite}, SelfService: true},
		AppealsResolve: {Roles: []Role{RoleAdmin, RoleComite}, States: []string{"pendiente"}},
		AppealsDelete:  {},

		ProvidersView:                {Roles: []Role{RoleAdmin, RoleComite, RoleTesorero, RoleContador, RoleConserje}},
		ProvidersEdit:                {Roles: []Role{RoleAdmin, RoleTesorero}},
		ProvidersViewSensitiveFields: {Roles: []Role{RoleAdmin, RoleComite, RoleTesorero}},

		ChargesView:   {Roles: []Role{RoleAdmin, RoleComite, RoleTesorero, RoleContador}, SelfService: true},
		ChargesCreate: {Roles: []Role{RoleAdmin, RoleTesorero}},

		PaymentsView:      {Roles: []Role{RoleAdmin, RoleTesorero, RoleContador}, SelfService: true},
		PaymentsReconcile: {Roles: []Role{RoleAdmin, RoleTesorero}},

		MetersView:        {Roles: []Role{RoleAdmin, RoleTesorero, RoleConserje}, SelfService: true},
		MetersRecordUsage: {Roles: []Role{RoleAdmin, RoleConserje}},

		TicketsView:    {Roles: []Role{RoleAdmin, RoleComite, RoleConserje}, SelfService: true},
		TicketsCreate:  {Roles: []Role{RoleAdmin, RoleComite, RoleConserje, RolePropietario, RoleResidente, RoleInquilino}},
		TicketsResolve: {Roles: []Role{RoleAdmin, RoleConserje}},

		UnitsView:   {Roles: []Role{RoleAdmin, RoleComite, RoleTesorero, RoleConserje, RoleContador}, SelfService: true},
		UnitsManage: {Roles: []Role{RoleAdmin}},

		CommunitiesManage: {},

		ProfileView: {AnyAuthenticated: true},
	}
}

// Merge returns a copy of p with every rule of overlay replacing the rule of
// the same action. The result shares no slices with either input.
func (p Policy) Merge(overlay Policy) Policy {
	merged := make(Policy, len(p)+len(overlay))
	for action, rule := range p {
		merged[action] = rule.clone()
	}
	for action, rule := range overlay {
		merged[action] = rule.clone()
	}
	return merged
}

// Actions returns the actions present in the table, sorted.
func (p Policy) Actions() []Action {
	actions := make([]Action, 0, len(p))
	for action := range p {
		actions = append(actions, action)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}

// Validate rejects malformed tables: blank action names and unknown roles.
func (p Policy) Validate() error {
	var details []apperr.FieldError
	for _, action := range p.Actions() {
		if strings.TrimSpace(string(action)) == "" {
			details = append(details, apperr.FieldError{Field: "action", Message: "Action name must not be blank"})
			continue
		}
		for _, role := range p[action].Roles {
			if !role.IsKnown() {
				details = append(details, apperr.FieldError{
					Field:   string(action),
					Message: fmt.Sprintf("Unknown role %q", role),
				})
			}
		}
	}

	if len(details) > 0 {
		return apperr.ValidationError("Invalid capability policy", details...)
	}
	return nil
}
