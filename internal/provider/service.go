// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package provider

import (
	"context"
	"log/slog"

	"github.com/cuentasclaras/cuentasclaras/internal/access"
	"github.com/cuentasclaras/cuentasclaras/internal/fine"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/apperr"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/validate"
	"github.com/cuentasclaras/cuentasclaras/pkg/pagination"
)

// Service implements the provider directory use cases.
type Service struct {
	repository Repository
	evaluator  *access.Evaluator
	principal  fine.Principal
	logger     *slog.Logger
}

// NewService constructs a [Service].
func NewService(repository Repository, evaluator *access.Evaluator, principal fine.Principal, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		evaluator:  evaluator,
		principal:  principal,
		logger:     logger,
	}
}

/*
List returns the providers of a community.

Description: Requires providers.view in the community. Rows are redacted
unless the caller also holds providers.viewSensitiveFields there, whatever the
backend returned.

Parameters:
  - ctx: context.Context
  - communityID: int64
  - params: pagination.Params

Returns:
  - pagination.Page[Provider]: Possibly redacted rows
  - error: VALIDATION_ERROR, UNAUTHENTICATED, FORBIDDEN or pipeline errors
*/
func (service *Service) List(ctx context.Context, communityID int64, params pagination.Params) (pagination.Page[Provider], error) {
	if err := (&validate.Validator{}).ID("comunidad_id", communityID).Err(); err != nil {
		return pagination.Page[Provider]{}, err
	}

	user := service.principal.User()
	if user == nil {
		return pagination.Page[Provider]{}, apperr.Unauthenticated("Sign in to continue")
	}

	community := access.InCommunity(communityID)
	if decision := service.evaluator.Decide(user, access.ProvidersView, community); !decision.Allowed() {
		service.logger.Debug("capability_denied",
			slog.String("action", string(access.ProvidersView)),
			slog.Int64("community_id", communityID),
			slog.String("decision", decision.String()),
		)
		return pagination.Page[Provider]{}, apperr.Forbidden("You are not allowed to view providers")
	}

	page, err := service.repository.List(ctx, communityID, params)
	if err != nil {
		return pagination.Page[Provider]{}, err
	}

	if !service.evaluator.Can(user, access.ProvidersViewSensitiveFields, community) {
		for i := range page.Data {
			page.Data[i] = page.Data[i].Redacted()
		}
	}

	return page, nil
}
