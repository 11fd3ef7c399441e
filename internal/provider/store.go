// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package provider

import (
	"context"
	"fmt"

	"github.com/cuentasclaras/cuentasclaras/internal/client"
	"github.com/cuentasclaras/cuentasclaras/pkg/pagination"
)

type Repository interface {
	List(ctx context.Context, communityID int64, params pagination.Params) (pagination.Page[Provider], error)
}

// HTTPRepository implements [Repository] against the REST backend.
type HTTPRepository struct {
	client *client.Client
}

func NewHTTPRepository(apiClient *client.Client) *HTTPRepository {
	return &HTTPRepository{client: apiClient}
}

func (repository *HTTPRepository) List(ctx context.Context, communityID int64, params pagination.Params) (pagination.Page[Provider], error) {
	var page pagination.Page[Provider]
	path := fmt.Sprintf("/comunidades/%d/proveedores", communityID)
	if err := repository.client.Get(ctx, path, params.Values(), &page); err != nil {
		return pagination.Page[Provider]{}, err
	}
	return page, nil
}
