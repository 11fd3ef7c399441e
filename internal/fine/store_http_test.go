// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package fine_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuentasclaras/cuentasclaras/internal/client"
	"github.com/cuentasclaras/cuentasclaras/internal/fine"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/apperr"
	"github.com/cuentasclaras/cuentasclaras/internal/session"
	"github.com/cuentasclaras/cuentasclaras/pkg/pagination"
)

func newHTTPRepository(t *testing.T, router http.Handler) *fine.HTTPRepository {
	t.Helper()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := session.NewStore(context.Background(), nil, logger)
	require.NoError(t, err)
	store.SetToken(context.Background(), "valid")

	apiClient, err := client.New(client.Options{BaseURL: server.URL + "/api", Session: store, Logger: logger})
	require.NoError(t, err)

	return fine.NewHTTPRepository(apiClient)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

/*
TestHTTPRepository_Endpoints maps each operation onto its REST route.
*/
func TestHTTPRepository_Endpoints(t *testing.T) {
	var lastQuery string
	var lastPayment fine.Payment

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		r.Get("/comunidades/{comunidadID}/multas", func(w http.ResponseWriter, r *http.Request) {
			lastQuery = r.URL.RawQuery
			writeJSON(w, http.StatusOK, map[string]any{
				"data": []fine.Fine{{ID: 1, CommunityID: 5, State: fine.StatePending}},
				"meta": pagination.NewMeta(1, 20, 1),
			})
		})
		r.Get("/multas/{id}", func(w http.ResponseWriter, r *http.Request) {
			if chi.URLParam(r, "id") != "1" {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "Multa not found"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"data": fine.Fine{ID: 1, CommunityID: 5, Amount: 30000}})
		})
		r.Post("/multas/{id}/pagos", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&lastPayment)
			writeJSON(w, http.StatusCreated, map[string]any{"data": fine.Fine{ID: 1, Amount: 30000, AmountPaid: lastPayment.Amount}})
		})
		r.Delete("/multas/{id}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})

	repository := newHTTPRepository(t, router)
	ctx := context.Background()

	page, err := repository.List(ctx, fine.Filter{CommunityID: 5, State: fine.StatePending}, pagination.Params{Page: 2})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, 1, page.Meta.Total)
	assert.Contains(t, lastQuery, "estado=pendiente")
	assert.Contains(t, lastQuery, "page=2")

	got, err := repository.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), got.Amount)

	_, err = repository.Get(ctx, 9)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	paid, err := repository.RegisterPayment(ctx, 1, fine.Payment{Amount: 5000, Method: "efectivo", PaidOn: "2026-03-01"})
	require.NoError(t, err)
	assert.Equal(t, int64(25000), paid.Balance())
	assert.Equal(t, "efectivo", lastPayment.Method)

	assert.NoError(t, repository.Delete(ctx, 1))
}
