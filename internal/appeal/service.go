// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package appeal

import (
	"context"
	"log/slog"

	"github.com/cuentasclaras/cuentasclaras/internal/access"
	"github.com/cuentasclaras/cuentasclaras/internal/fine"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/apperr"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/validate"
	"github.com/cuentasclaras/cuentasclaras/pkg/pagination"
)

// FineReader loads the fine an appeal is raised against.
type FineReader interface {
	Get(ctx context.Context, id int64) (*fine.Fine, error)
}

// Service implements the appeal use cases.
type Service struct {
	repository Repository
	fines      FineReader
	evaluator  *access.Evaluator
	principal  fine.Principal
	logger     *slog.Logger
}

// NewService constructs a [Service].
func NewService(repository Repository, fines FineReader, evaluator *access.Evaluator, principal fine.Principal, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		fines:      fines,
		evaluator:  evaluator,
		principal:  principal,
		logger:     logger,
	}
}

// List returns a page of appeals, optionally narrowed to a community and state.
func (service *Service) List(ctx context.Context, communityID int64, state string, params pagination.Params) (pagination.Page[Appeal], error) {
	if state != "" {
		if err := (&validate.Validator{}).OneOf("estado", state, StatePending, StateAccepted, StateRejected).Err(); err != nil {
			return pagination.Page[Appeal]{}, err
		}
	}
	return service.repository.List(ctx, communityID, state, params)
}

/*
Create appeals a fine.

Description: Checks fines.appeal against the fine itself, so the owner of a
pending or overdue fine passes through the self-service branch even without a
role in the community.

Parameters:
  - ctx: context.Context
  - input: CreateInput

Returns:
  - *Appeal: The created appeal
  - error: VALIDATION_ERROR, FORBIDDEN, NOT_FOUND or pipeline errors
*/
func (service *Service) Create(ctx context.Context, input CreateInput) (*Appeal, error) {
	validator := &validate.Validator{}
	validator.
		ID("multa_id", input.FineID).
		Required("motivo", input.Reason).
		MinLen("motivo", input.Reason, 10).
		MaxLen("motivo", input.Reason, 2000)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	target, err := service.fines.Get(ctx, input.FineID)
	if err != nil {
		return nil, err
	}

	if err := service.authorize(access.FinesAppeal, target.Resource()); err != nil {
		return nil, err
	}

	created, err := service.repository.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	service.logger.Info("appeal_created", slog.Int64("fine_id", input.FineID))
	return created, nil
}

/*
Resolve accepts or rejects a pending appeal.

Parameters:
  - ctx: context.Context
  - id: int64
  - resolution: Resolution

Returns:
  - *Appeal: The resolved appeal
  - error: VALIDATION_ERROR, FORBIDDEN, CONFLICT or pipeline errors
*/
func (service *Service) Resolve(ctx context.Context, id int64, resolution Resolution) (*Appeal, error) {
	validator := &validate.Validator{}
	validator.
		ID("id", id).
		Required("comentario", resolution.Comment).
		MaxLen("comentario", resolution.Comment, 2000)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	current, err := service.repository.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := service.authorize(access.AppealsResolve, current.Resource()); err != nil {
		return nil, err
	}

	if current.State != StatePending {
		return nil, apperr.Conflict("Appeal has already been resolved")
	}

	resolved, err := service.repository.Resolve(ctx, id, resolution)
	if err != nil {
		return nil, err
	}

	service.logger.Info("appeal_resolved",
		slog.Int64("appeal_id", id),
		slog.Bool("accepted", resolution.Accept),
	)
	return resolved, nil
}

func (service *Service) authorize(action access.Action, resource access.Resource) error {
	user := service.principal.User()
	if user == nil {
		return apperr.Unauthenticated("Sign in to continue")
	}

	decision := service.evaluator.Decide(user, action, resource)
	if decision.Allowed() {
		return nil
	}

	service.logger.Debug("capability_denied",
		slog.String("action", string(action)),
		slog.Int64("community_id", resource.CommunityID),
		slog.String("decision", decision.String()),
	)
	return apperr.Forbidden("You are not allowed to perform this action")
}
