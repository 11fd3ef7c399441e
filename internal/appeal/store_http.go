// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package appeal

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cuentasclaras/cuentasclaras/internal/client"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/apperr"
	"github.com/cuentasclaras/cuentasclaras/pkg/pagination"
)

// HTTPRepository implements [Repository] against the REST backend.
type HTTPRepository struct {
	client *client.Client
}

func NewHTTPRepository(apiClient *client.Client) *HTTPRepository {
	return &HTTPRepository{client: apiClient}
}

func (repository *HTTPRepository) List(ctx context.Context, communityID int64, state string, params pagination.Params) (pagination.Page[Appeal], error) {
	query := params.Values()
	if communityID != 0 {
		query.Set("comunidad_id", strconv.FormatInt(communityID, 10))
	}
	if state != "" {
		query.Set("estado", state)
	}

	var page pagination.Page[Appeal]
	if err := repository.client.Get(ctx, "/apelaciones", query, &page); err != nil {
		return pagination.Page[Appeal]{}, err
	}
	return page, nil
}

func (repository *HTTPRepository) Get(ctx context.Context, id int64) (*Appeal, error) {
	var response client.Envelope[*Appeal]
	if err := repository.client.Get(ctx, fmt.Sprintf("/apelaciones/%d", id), nil, &response); err != nil {
		return nil, err
	}
	if response.Data == nil {
		return nil, apperr.NotFound("Apelación")
	}
	return response.Data, nil
}

func (repository *HTTPRepository) Create(ctx context.Context, input CreateInput) (*Appeal, error) {
	var response client.Envelope[*Appeal]
	if err := repository.client.Post(ctx, "/apelaciones", input, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

func (repository *HTTPRepository) Resolve(ctx context.Context, id int64, resolution Resolution) (*Appeal, error) {
	var response client.Envelope[*Appeal]
	if err := repository.client.Post(ctx, fmt.Sprintf("/apelaciones/%d/resolver", id), resolution, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}
