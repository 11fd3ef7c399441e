// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cuentasclaras/cuentasclaras/internal/platform/dberr"
)

// PostgresPolicyRepository implements [PolicyRepository] using pgx.
//
// Rules live in access.capability_rule so administrators can edit the table
// without a release. See data/migrations/000001_capability_rule.up.sql.
type PostgresPolicyRepository struct {
	db *pgxpool.Pool
}

// NewPostgresPolicyRepository constructs a PostgreSQL backed policy source.
func NewPostgresPolicyRepository(db *pgxpool.Pool) *PostgresPolicyRepository {
	return &PostgresPolicyRepository{db: db}
}

/*
Load returns every enabled rule.

Parameters:
  - context: context.Context

Returns:
  - Policy: Rules keyed by action
  - error: Database retrieval failures
*/
func (repository *PostgresPolicyRepository) Load(context context.Context) (Policy, error) {
	const query = `
		SELECT action, roles, selfservice, anyauthenticated, states
		FROM access.capability_rule
		WHERE isenabled
		ORDER BY action
	`

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "load_capability_rules")
	}
	defer rows.Close()

	policy := Policy{}
	for rows.Next() {
		var (
			action string
			roles  []string
			rule   Rule
		)

		if err := rows.Scan(&action, &roles, &rule.SelfService, &rule.AnyAuthenticated, &rule.States); err != nil {
			return nil, dberr.Wrap(err, "scan_capability_rule")
		}

		for _, role := range roles {
			rule.Roles = append(rule.Roles, Role(role))
		}
		policy[Action(action)] = rule
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_capability_rules")
	}

	return policy, nil
}
