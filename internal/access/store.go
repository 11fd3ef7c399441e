// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

import "context"

// # Policy Data Access

// PolicyRepository defines the contract for externally editable allow-list tables.
type PolicyRepository interface {

	/*
		Load returns the rules stored in the source.

		Parameters:
		  - context: context.Context

		Returns:
		  - Policy: Rules keyed by action (may be partial; callers merge onto defaults)
		  - error: Retrieval or decoding failures
	*/
	Load(context context.Context) (Policy, error)
}

/*
LoadPolicy builds the effective table: the built-in defaults overlaid with
every repository in order, validated as a whole.

Parameters:
  - context: context.Context
  - repositories: ...PolicyRepository (later sources win)

Returns:
  - Policy: The effective table
  - error: Source or validation failures
*/
func LoadPolicy(context context.Context, repositories ...PolicyRepository) (Policy, error) {
	policy := DefaultPolicy()

	for _, repository := range repositories {
		overlay, err := repository.Load(context)
		if err != nil {
			return nil, err
		}
		policy = policy.Merge(overlay)
	}

	if err := policy.Validate(); err != nil {
		return nil, err
	}

	return policy, nil
}
