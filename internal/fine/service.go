// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package fine

import (
	"context"
	"log/slog"

	"github.com/cuentasclaras/cuentasclaras/internal/access"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/apperr"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/validate"
	"github.com/cuentasclaras/cuentasclaras/pkg/pagination"
)

// Principal supplies the signed-in user. [session.Store] satisfies it.
type Principal interface {
	User() *access.User
}

// Service implements the fine use cases.
//
// Every mutation is checked against the capability table first. The check
// only saves a round trip: a 403 from the backend is still authoritative.
type Service struct {
	repository Repository
	evaluator  *access.Evaluator
	principal  Principal
	logger     *slog.Logger
}

// NewService constructs a [Service].
func NewService(repository Repository, evaluator *access.Evaluator, principal Principal, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		evaluator:  evaluator,
		principal:  principal,
		logger:     logger,
	}
}

// List returns a page of fines. The backend scopes rows to what the caller may see.
func (service *Service) List(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[Fine], error) {
	if filter.State != "" {
		if err := (&validate.Validator{}).OneOf("estado", filter.State, StatePending, StatePaid, StateOverdue, StateAppealed, StateCancelled).Err(); err != nil {
			return pagination.Page[Fine]{}, err
		}
	}
	return service.repository.List(ctx, filter, params)
}

// Get fetches one fine.
func (service *Service) Get(ctx context.Context, id int64) (*Fine, error) {
	if err := (&validate.Validator{}).ID("id", id).Err(); err != nil {
		return nil, err
	}
	return service.repository.Get(ctx, id)
}

/*
Create issues a new fine.

Parameters:
  - ctx: context.Context
  - input: CreateInput

Returns:
  - *Fine: The created fine
  - error: VALIDATION_ERROR, FORBIDDEN or pipeline errors
*/
func (service *Service) Create(ctx context.Context, input CreateInput) (*Fine, error) {
	validator := &validate.Validator{}
	validator.
		ID("comunidad_id", input.CommunityID).
		ID("unidad_id", input.UnitID).
		Required("motivo", input.Reason).
		MaxLen("motivo", input.Reason, 200).
		Amount("monto", input.Amount).
		Required("fecha", input.IssuedOn).
		Date("fecha", input.IssuedOn).
		Date("fecha_vencimiento", input.DueOn)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.authorize(access.FinesCreate, access.InCommunity(input.CommunityID)); err != nil {
		return nil, err
	}

	return service.repository.Create(ctx, input)
}

// Update edits a fine after checking fines.edit against its community.
func (service *Service) Update(ctx context.Context, id int64, input UpdateInput) (*Fine, error) {
	validator := &validate.Validator{}
	validator.ID("id", id)
	if input.Reason != nil {
		validator.Required("motivo", *input.Reason).MaxLen("motivo", *input.Reason, 200)
	}
	if input.Amount != nil {
		validator.Amount("monto", *input.Amount)
	}
	if input.DueOn != nil {
		validator.Date("fecha_vencimiento", *input.DueOn)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	current, err := service.repository.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := service.authorize(access.FinesEdit, access.InCommunity(current.CommunityID)); err != nil {
		return nil, err
	}

	return service.repository.Update(ctx, id, input)
}

// Delete removes a fine. The default table reserves this to superadmins.
func (service *Service) Delete(ctx context.Context, id int64) error {
	current, err := service.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := service.authorize(access.FinesDelete, current.Resource()); err != nil {
		return err
	}

	if err := service.repository.Delete(ctx, id); err != nil {
		return err
	}

	service.logger.Info("fine_deleted", slog.Int64("fine_id", id), slog.Int64("community_id", current.CommunityID))
	return nil
}

/*
RegisterPayment records a payment against a fine.

Description: The amount must not exceed the outstanding balance, and a fine
that is already paid or cancelled cannot take payments.

Parameters:
  - ctx: context.Context
  - id: int64
  - payment: Payment

Returns:
  - *Fine: The updated fine
  - error: VALIDATION_ERROR, CONFLICT, FORBIDDEN or pipeline errors
*/
func (service *Service) RegisterPayment(ctx context.Context, id int64, payment Payment) (*Fine, error) {
	validator := &validate.Validator{}
	validator.
		ID("id", id).
		Amount("monto", payment.Amount).
		OneOf("medio_pago", payment.Method, PaymentMethods...).
		Required("fecha_pago", payment.PaidOn).
		Date("fecha_pago", payment.PaidOn)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	current, err := service.repository.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := service.authorize(access.FinesRegisterPayment, access.InCommunity(current.CommunityID)); err != nil {
		return nil, err
	}

	if current.State == StatePaid || current.State == StateCancelled {
		return nil, apperr.Conflict("Fine no longer accepts payments")
	}

	if err := (&validate.Validator{}).Custom("monto", payment.Amount > current.Balance(), "Cannot exceed the outstanding balance").Err(); err != nil {
		return nil, err
	}

	updated, err := service.repository.RegisterPayment(ctx, id, payment)
	if err != nil {
		return nil, err
	}

	service.logger.Info("fine_payment_registered",
		slog.Int64("fine_id", id),
		slog.Int64("amount", payment.Amount),
		slog.String("method", payment.Method),
	)
	return updated, nil
}

// Can reports whether the signed-in user may perform action on f. UI code
// uses it to decide which controls to show.
func (service *Service) Can(action access.Action, f *Fine) bool {
	return service.evaluator.Can(service.principal.User(), action, f.Resource())
}

// authorize turns a denied capability into the FORBIDDEN boundary error.
func (service *Service) authorize(action access.Action, resource access.Resource) error {
	user := service.principal.User()
	decision := service.evaluator.Decide(user, action, resource)
	if decision.Allowed() {
		return nil
	}

	if user == nil {
		return apperr.Unauthenticated("Sign in to continue")
	}

	service.logger.Debug("capability_denied",
		slog.String("action", string(action)),
		slog.Int64("community_id", resource.CommunityID),
		slog.String("decision", decision.String()),
	)
	return apperr.Forbidden("You are not allowed to perform this action")
}
