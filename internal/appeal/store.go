// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package appeal

import (
	"context"

	"github.com/cuentasclaras/cuentasclaras/pkg/pagination"
)

type Repository interface {
	List(ctx context.Context, communityID int64, state string, params pagination.Params) (pagination.Page[Appeal], error)
	Get(ctx context.Context, id int64) (*Appeal, error)
	Create(ctx context.Context, input CreateInput) (*Appeal, error)
	Resolve(ctx context.Context, id int64, resolution Resolution) (*Appeal, error)
}
