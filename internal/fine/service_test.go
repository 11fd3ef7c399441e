// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package fine_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuentasclaras/cuentasclaras/internal/access"
	"github.com/cuentasclaras/cuentasclaras/internal/fine"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/apperr"
	"github.com/cuentasclaras/cuentasclaras/pkg/pagination"
	"github.com/cuentasclaras/cuentasclaras/pkg/pointer"
)

// memoryRepository is an in-process [fine.Repository].
type memoryRepository struct {
	fines    map[int64]*fine.Fine
	nextID   int64
	payments int
	deleted  []int64
}

func newMemoryRepository(fines ...*fine.Fine) *memoryRepository {
	repository := &memoryRepository{fines: make(map[int64]*fine.Fine), nextID: 100}
	for _, f := range fines {
		repository.fines[f.ID] = f
	}
	return repository
}

func (r *memoryRepository) List(_ context.Context, filter fine.Filter, params pagination.Params) (pagination.Page[fine.Fine], error) {
	var rows []fine.Fine
	for _, f := range r.fines {
		if filter.CommunityID != 0 && f.CommunityID != filter.CommunityID {
			continue
		}
		rows = append(rows, *f)
	}
	params = params.Normalize()
	return pagination.Page[fine.Fine]{Data: rows, Meta: pagination.NewMeta(params.Page, params.Limit, len(rows))}, nil
}

func (r *memoryRepository) Get(_ context.Context, id int64) (*fine.Fine, error) {
	f, ok := r.fines[id]
	if !ok {
		return nil, apperr.NotFound("Multa")
	}
	copied := *f
	return &copied, nil
}

func (r *memoryRepository) Create(_ context.Context, input fine.CreateInput) (*fine.Fine, error) {
	r.nextID++
	f := &fine.Fine{ID: r.nextID, CommunityID: input.CommunityID, UnitID: input.UnitID, Reason: input.Reason, Amount: input.Amount, State: fine.StatePending}
	r.fines[f.ID] = f
	return f, nil
}

func (r *memoryRepository) Update(_ context.Context, id int64, input fine.UpdateInput) (*fine.Fine, error) {
	f := r.fines[id]
	if input.Amount != nil {
		f.Amount = *input.Amount
	}
	if input.Reason != nil {
		f.Reason = *input.Reason
	}
	return f, nil
}

func (r *memoryRepository) Delete(_ context.Context, id int64) error {
	r.deleted = append(r.deleted, id)
	delete(r.fines, id)
	return nil
}

func (r *memoryRepository) RegisterPayment(_ context.Context, id int64, payment fine.Payment) (*fine.Fine, error) {
	r.payments++
	f := r.fines[id]
	f.AmountPaid += payment.Amount
	if f.Balance() == 0 {
		f.State = fine.StatePaid
	}
	return f, nil
}

// principal is a fixed signed-in user.
type principal struct{ user *access.User }

func (p principal) User() *access.User { return p.user }

func member(role access.Role, community int64) *access.User {
	return &access.User{ID: 10, Memberships: []access.Membership{{CommunityID: community, Role: role}}}
}

func newService(repository fine.Repository, user *access.User) *fine.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return fine.NewService(repository, access.NewEvaluator(access.DefaultPolicy()), principal{user}, logger)
}

func pendingFine() *fine.Fine {
	return &fine.Fine{ID: 1, CommunityID: 5, UnitID: 12, OwnerUserID: 42, Amount: 30000, State: fine.StatePending}
}

/*
TestService_RegisterPayment covers the allow-list, balance and state checks.
*/
func TestService_RegisterPayment(t *testing.T) {
	payment := fine.Payment{Amount: 10000, Method: "efectivo", PaidOn: "2026-03-01"}

	tests := []struct {
		name     string
		user     *access.User
		fine     *fine.Fine
		payment  fine.Payment
		code     string
		recorded bool
	}{
		{"conserje_allowed", member(access.RoleConserje, 5), pendingFine(), payment, "", true},
		{"comite_forbidden", member(access.RoleComite, 5), pendingFine(), payment, apperr.CodeForbidden, false},
		{"other_community", member(access.RoleTesorero, 7), pendingFine(), payment, apperr.CodeForbidden, false},
		{"anonymous", nil, pendingFine(), payment, apperr.CodeUnauthenticated, false},
		{"over_balance", member(access.RoleTesorero, 5), pendingFine(), fine.Payment{Amount: 40000, Method: "efectivo", PaidOn: "2026-03-01"}, apperr.CodeValidationFailed, false},
		{"bad_method", member(access.RoleTesorero, 5), pendingFine(), fine.Payment{Amount: 1000, Method: "bitcoin", PaidOn: "2026-03-01"}, apperr.CodeValidationFailed, false},
		{"already_paid", member(access.RoleTesorero, 5), &fine.Fine{ID: 1, CommunityID: 5, Amount: 100, AmountPaid: 100, State: fine.StatePaid}, payment, apperr.CodeConflict, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repository := newMemoryRepository(tt.fine)
			service := newService(repository, tt.user)

			updated, err := service.RegisterPayment(context.Background(), 1, tt.payment)

			if tt.code == "" {
				require.NoError(t, err)
				assert.Equal(t, int64(20000), updated.Balance())
			} else {
				assert.True(t, apperr.Is(err, tt.code), "got %v", err)
			}
			assert.Equal(t, tt.recorded, repository.payments == 1)
		})
	}
}

/*
TestService_Create validates input before checking fines.create.
*/
func TestService_Create(t *testing.T) {
	input := fine.CreateInput{CommunityID: 5, UnitID: 12, Reason: "Ruidos molestos", Amount: 25000, IssuedOn: "2026-03-01"}

	created, err := newService(newMemoryRepository(), member(access.RoleTesorero, 5)).Create(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, fine.StatePending, created.State)

	_, err = newService(newMemoryRepository(), member(access.RoleConserje, 5)).Create(context.Background(), input)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))

	_, err = newService(newMemoryRepository(), member(access.RoleTesorero, 5)).Create(context.Background(), fine.CreateInput{})
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.CodeValidationFailed, ae.Code)
	assert.GreaterOrEqual(t, len(ae.Details), 5)
}

/*
TestService_Delete is reserved to superadmins by the default table.
*/
func TestService_Delete(t *testing.T) {
	repository := newMemoryRepository(pendingFine())

	err := newService(repository, member(access.RoleAdmin, 5)).Delete(context.Background(), 1)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
	assert.Empty(t, repository.deleted)

	err = newService(repository, &access.User{ID: 1, IsSuperadmin: true}).Delete(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, repository.deleted)
}

/*
TestService_Update checks fines.edit against the stored fine's community.
*/
func TestService_Update(t *testing.T) {
	input := fine.UpdateInput{Amount: pointer.To(int64(45000)), Reason: pointer.To("Ruidos molestos")}

	updated, err := newService(newMemoryRepository(pendingFine()), member(access.RoleTesorero, 5)).
		Update(context.Background(), 1, input)
	require.NoError(t, err)
	assert.Equal(t, int64(45000), updated.Amount)
	assert.Equal(t, "Ruidos molestos", updated.Reason)

	_, err = newService(newMemoryRepository(pendingFine()), member(access.RoleTesorero, 6)).
		Update(context.Background(), 1, input)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))

	_, err = newService(newMemoryRepository(pendingFine()), member(access.RoleTesorero, 5)).
		Update(context.Background(), 1, fine.UpdateInput{Amount: pointer.To(int64(0))})
	assert.True(t, apperr.Is(err, apperr.CodeValidationFailed))
}

/*
TestService_Can exposes the owner branch for UI decisions.
*/
func TestService_Can(t *testing.T) {
	owner := &access.User{ID: 42}
	service := newService(newMemoryRepository(), owner)

	assert.True(t, service.Can(access.FinesAppeal, pendingFine()))
	assert.True(t, service.Can(access.FinesView, pendingFine()))
	assert.False(t, service.Can(access.FinesEdit, pendingFine()))

	paid := pendingFine()
	paid.State = fine.StatePaid
	assert.False(t, service.Can(access.FinesAppeal, paid))
}

/*
TestService_List rejects unknown states locally.
*/
func TestService_List(t *testing.T) {
	service := newService(newMemoryRepository(pendingFine()), member(access.RoleTesorero, 5))

	page, err := service.List(context.Background(), fine.Filter{CommunityID: 5}, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)

	_, err = service.List(context.Background(), fine.Filter{State: "perdonada"}, pagination.Params{})
	assert.True(t, apperr.Is(err, apperr.CodeValidationFailed))
}
