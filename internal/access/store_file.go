// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// policyDocument is the on-disk layout of a policy file.
//
//	rules:
//	  fines.edit:
//	    roles: [admin, tesorero]
//	  fines.appeal:
//	    roles: [admin, comite]
//	    self_service: true
//	    states: [pendiente, vencido]
type policyDocument struct {
	Rules Policy `yaml:"rules"`
}

// FilePolicyRepository implements [PolicyRepository] over a YAML file.
type FilePolicyRepository struct {
	path string
}

// NewFilePolicyRepository creates a YAML-backed policy source.
func NewFilePolicyRepository(path string) *FilePolicyRepository {
	return &FilePolicyRepository{path: path}
}

// Load reads and decodes the policy file.
func (repository *FilePolicyRepository) Load(_ context.Context) (Policy, error) {
	data, err := os.ReadFile(repository.path)
	if err != nil {
		return nil, fmt.Errorf("access: read policy file %s: %w", repository.path, err)
	}

	return DecodePolicy(data)
}

// DecodePolicy parses a YAML policy document.
func DecodePolicy(data []byte) (Policy, error) {
	var document policyDocument
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("access: decode policy: %w", err)
	}

	if document.Rules == nil {
		return Policy{}, nil
	}
	return document.Rules, nil
}

// EncodePolicy renders a policy as a YAML document accepted by [DecodePolicy].
func EncodePolicy(policy Policy) ([]byte, error) {
	data, err := yaml.Marshal(policyDocument{Rules: policy})
	if err != nil {
		return nil, fmt.Errorf("access: encode policy: %w", err)
	}
	return data, nil
}
