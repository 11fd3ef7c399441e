// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

// # Decisions

// Decision records the outcome of one capability evaluation and the branch
// that produced it.
type Decision int

const (
	// DenyUnauthenticated: no user.
	DenyUnauthenticated Decision = iota
	// DenyNoRule: the action has no entry in the table.
	DenyNoRule
	// DenyState: the record state is outside the rule's States.
	DenyState
	// DenyRole: no resolved role is allowed and no self-service branch applies.
	DenyRole
	// AllowSuperadmin: global override.
	AllowSuperadmin
	// AllowRole: a resolved role is on the allow-list.
	AllowRole
	// AllowAuthenticated: the action is open to any authenticated user.
	AllowAuthenticated
	// AllowSelfService: the caller owns the record and the action permits it.
	AllowSelfService
)

// Allowed reports whether the decision grants access.
func (d Decision) Allowed() bool {
	return d >= AllowSuperadmin
}

// String returns the decision name used in logs.
func (d Decision) String() string {
	switch d {
	case DenyUnauthenticated:
		return "deny_unauthenticated"
	case DenyNoRule:
		return "deny_no_rule"
	case DenyState:
		return "deny_state"
	case DenyRole:
		return "deny_role"
	case AllowSuperadmin:
		return "allow_superadmin"
	case AllowRole:
		return "allow_role"
	case AllowAuthenticated:
		return "allow_authenticated"
	case AllowSelfService:
		return "allow_self_service"
	default:
		return "unknown"
	}
}

// # Evaluator

// Evaluator applies a [Policy] to capability requests.
//
// # Concurrency
//
// An Evaluator never mutates its table and is safe for concurrent use.
type Evaluator struct {
	policy Policy
}

// NewEvaluator constructs an [Evaluator] over a copy of policy.
func NewEvaluator(policy Policy) *Evaluator {
	return &Evaluator{policy: Policy{}.Merge(policy)}
}

// Policy returns a copy of the table in use.
func (e *Evaluator) Policy() Policy {
	return Policy{}.Merge(e.policy)
}

/*
Decide evaluates (user, action, resource) against the table.

Description: The order is fixed: an absent user is denied, a superadmin is
allowed, an action missing from the table is denied, the state constraint is
applied, then the role branch, then the explicit non-role branches (any
authenticated user, self-service on an owned record).

Parameters:
  - user: *User (nil for anonymous callers)
  - action: Action
  - resource: Resource (zero value when the action is not record-scoped)

Returns:
  - Decision: The outcome and the branch that produced it
*/
func (e *Evaluator) Decide(user *User, action Action, resource Resource) Decision {

	// ── 1. Identity ───────────────────────────────────────────────────────
	if user == nil {
		return DenyUnauthenticated
	}

	// ── 2. Global Override ────────────────────────────────────────────────
	// Evaluated before the table lookup so superadmin-only rows (empty
	// allow-lists) and unknown actions still grant.
	if user.IsSuperadmin {
		return AllowSuperadmin
	}

	// ── 3. Table Lookup (deny by default) ─────────────────────────────────
	rule, ok := e.policy[action]
	if !ok {
		return DenyNoRule
	}

	if !rule.allowsState(resource.State) {
		return DenyState
	}

	// ── 4. Role Branch ────────────────────────────────────────────────────
	if rule.allowsRole(resolveRoles(user, resource)) {
		return AllowRole
	}

	// ── 5. Non-role Branches ──────────────────────────────────────────────
	if rule.AnyAuthenticated {
		return AllowAuthenticated
	}

	if rule.SelfService && resource.isOwnedBy(user) {
		return AllowSelfService
	}

	return DenyRole
}

// Can reports whether user may perform action on resource.
func (e *Evaluator) Can(user *User, action Action, resource Resource) bool {
	return e.Decide(user, action, resource).Allowed()
}

// resolveRoles picks the roles that apply to the request: the membership roles
// for the resource's community, or the user's global roles when the request is
// not community-scoped.
func resolveRoles(user *User, resource Resource) []Role {
	if resource.CommunityID != 0 {
		return user.RolesIn(resource.CommunityID)
	}
	return user.Roles
}
