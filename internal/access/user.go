// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package access implements the capability model of Cuentas Claras.

It decides, given a user and an optional resource context, whether a named
action is permitted. Decisions are a pure function of their inputs: no network
access, no session lookups, no caching.

# Architecture

  - User: the principal, with a global superadmin flag, global roles and
    per-community memberships.
  - Policy: the allow-list table, keyed by action. Data, not code.
  - Evaluator: applies a Policy to (user, action, resource) and returns a
    [Decision] that records why access was granted or denied.

The same Policy is consumed by the CLI before rendering privileged commands and
by the HTTP guard in front of Go handlers.
*/
package access

// # Roles

// Role is a role name, either global or scoped to one community.
type Role string

const (
	// Community administrator
	RoleAdmin Role = "admin"

	// Owners' committee member, resolves appeals
	RoleComite Role = "comite"

	// Treasurer, manages charges and payments
	RoleTesorero Role = "tesorero"

	// Building staff, may register cash payments at the front desk
	RoleConserje Role = "conserje"

	// External accountant with read access to finances
	RoleContador Role = "contador"

	// Unit owner
	RolePropietario Role = "propietario"

	// Unit resident
	RoleResidente Role = "residente"

	// Unit tenant
	RoleInquilino Role = "inquilino"
)

// KnownRoles lists every role a policy may reference.
var KnownRoles = []Role{
	RoleAdmin,
	RoleComite,
	RoleTesorero,
	RoleConserje,
	RoleContador,
	RolePropietario,
	RoleResidente,
	RoleInquilino,
}

// IsKnown reports whether r is one of [KnownRoles].
func (r Role) IsKnown() bool {
	for _, known := range KnownRoles {
		if r == known {
			return true
		}
	}
	return false
}

// # Principal

// Membership is a role assignment scoped to one community.
type Membership struct {
	CommunityID int64 `json:"comunidad_id" yaml:"comunidad_id"`
	Role        Role  `json:"rol"          yaml:"rol"`
}

// User is the authenticated principal as returned by the backend profile endpoint.
//
// A user may hold different roles in different communities. IsSuperadmin
// overrides every other check.
type User struct {
	ID           int64        `json:"id"`
	PersonaID    int64        `json:"persona_id,omitempty"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	IsSuperadmin bool         `json:"is_superadmin"`
	Roles        []Role       `json:"roles"`
	Memberships  []Membership `json:"memberships"`
}

// RolesIn returns the roles the user holds in the given community.
func (u *User) RolesIn(communityID int64) []Role {
	var roles []Role
	for _, membership := range u.Memberships {
		if membership.CommunityID == communityID {
			roles = append(roles, membership.Role)
		}
	}
	return roles
}

// Communities returns the IDs of every community the user belongs to, in
// membership order and without duplicates.
func (u *User) Communities() []int64 {
	seen := make(map[int64]struct{}, len(u.Memberships))
	ids := make([]int64, 0, len(u.Memberships))
	for _, membership := range u.Memberships {
		if _, ok := seen[membership.CommunityID]; ok {
			continue
		}
		seen[membership.CommunityID] = struct{}{}
		ids = append(ids, membership.CommunityID)
	}
	return ids
}

// # Resource Context

// Resource is the minimal data about a record needed to evaluate a capability.
//
// Zero values mean "not present": IDs start at 1 on the backend.
type Resource struct {
	// CommunityID scopes role resolution to a membership (comunidad_id).
	CommunityID int64
	// OwnerUserID is the account that owns the record (usuario_id).
	OwnerUserID int64
	// OwnerPersonaID is the person that owns the record (persona_id).
	OwnerPersonaID int64
	// State is the record's lifecycle state (estado).
	State string
}

// InCommunity returns a resource context scoped to a community only.
func InCommunity(communityID int64) Resource {
	return Resource{CommunityID: communityID}
}

// isOwnedBy reports whether the record belongs to the user, by account or by person.
func (r Resource) isOwnedBy(user *User) bool {
	if r.OwnerUserID != 0 && r.OwnerUserID == user.ID {
		return true
	}
	return r.OwnerPersonaID != 0 && user.PersonaID != 0 && r.OwnerPersonaID == user.PersonaID
}
