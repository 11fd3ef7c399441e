// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package fine

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

// NewHTTPRepository creates a [HTTPRepository].
func NewHTTPRepository(apiClient *client.Client) *HTTPRepository {
	return &HTTPRepository{client: apiClient}
}

/*
List fetches one page of fines.

Description: A community filter uses the community-scoped endpoint; other
filters are sent as query parameters.

Parameters:
  - ctx: context.Context
  - filter: Filter
  - params: pagination.Params

Returns:
  - pagination.Page[Fine]: Rows and metadata
  - error: Pipeline errors
*/
func (repository *HTTPRepository) List(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[Fine], error) {
	path := "/multas"
	if filter.CommunityID != 0 {
		path = fmt.Sprintf("/comunidades/%d/multas", filter.CommunityID)
	}

	query := params.Values()
	if filter.UnitID != 0 {
		query.Set("unidad_id", strconv.FormatInt(filter.UnitID, 10))
	}
	if filter.State != "" {
		query.Set("estado", filter.State)
	}

	var page pagination.Page[Fine]
	if err := repository.client.Get(ctx, path, query, &page); err != nil {
		return pagination.Page[Fine]{}, err
	}
	return page, nil
}

// Get fetches a single fine.
func (repository *HTTPRepository) Get(ctx context.Context, id int64) (*Fine, error) {
	var response client.Envelope[*Fine]
	if err := repository.client.Get(ctx, fmt.Sprintf("/multas/%d", id), nil, &response); err != nil {
		return nil, err
	}
	if response.Data == nil {
		return nil, apperr.NotFound("Multa")
	}
	return response.Data, nil
}

// Create issues a new fine.
func (repository *HTTPRepository) Create(ctx context.Context, input CreateInput) (*Fine, error) {
	var response client.Envelope[*Fine]
	if err := repository.client.Post(ctx, "/multas", input, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// Update edits a fine.
func (repository *HTTPRepository) Update(ctx context.Context, id int64, input UpdateInput) (*Fine, error) {
	var response client.Envelope[*Fine]
	if err := repository.client.Put(ctx, fmt.Sprintf("/multas/%d", id), input, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// Delete removes a fine.
func (repository *HTTPRepository) Delete(ctx context.Context, id int64) error {
	return repository.client.Delete(ctx, fmt.Sprintf("/multas/%d", id), nil)
}

// RegisterPayment records a payment and returns the updated fine.
func (repository *HTTPRepository) RegisterPayment(ctx context.Context, id int64, payment Payment) (*Fine, error) {
	var response client.Envelope[*Fine]
	if err := repository.client.Post(ctx, fmt.Sprintf("/multas/%d/pagos", id), payment, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}
