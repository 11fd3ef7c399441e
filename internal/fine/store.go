// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package fine

import (
	"context"

	"github.com/cuentasclaras/cuentasclaras/pkg/pagination"
)

// Repository is the data access contract for fines.
type Repository interface {
	List(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[Fine], error)
	Get(ctx context.Context, id int64) (*Fine, error)
	Create(ctx context.Context, input CreateInput) (*Fine, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*Fine, error)
	Delete(ctx context.Context, id int64) error
	RegisterPayment(ctx context.Context, id int64, payment Payment) (*Fine, error)
}
