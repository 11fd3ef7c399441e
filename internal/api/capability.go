// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cuentasclaras/cuentasclaras/internal/access"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/ctxutil"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/middleware"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/request"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/respond"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/validate"
	"github.com/cuentasclaras/cuentasclaras/pkg/slice"
)

// CapabilityHandler answers capability questions for the authenticated
// caller, so other services can share one allow-list table.
type CapabilityHandler struct {
	evaluator *access.Evaluator
}

// NewCapabilityHandler constructs a [CapabilityHandler] over evaluator.
func NewCapabilityHandler(evaluator *access.Evaluator) *CapabilityHandler {
	return &CapabilityHandler{evaluator: evaluator}
}

// Routes mounts the capability endpoints.
//
//	POST /capabilities/check           any authenticated caller
//	GET  /comunidades/{comunidadID}/capabilities
//	GET  /policy                        communities.manage (superadmin)
func (handler *CapabilityHandler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/capabilities/check", handler.check)
		r.Get("/comunidades/{comunidadID}/capabilities", handler.listInCommunity)
	})

	router.With(middleware.RequireCapability(handler.evaluator, access.CommunitiesManage, nil)).
		Get("/policy", handler.policy)

	return router
}

// checkRequest is the capability context sent by the caller.
type checkRequest struct {
	Action         access.Action `json:"action"`
	CommunityID    int64         `json:"comunidad_id"`
	OwnerUserID    int64         `json:"usuario_id"`
	OwnerPersonaID int64         `json:"persona_id"`
	State          string        `json:"estado"`
}

type checkResponse struct {
	Action   access.Action `json:"action"`
	Allowed  bool          `json:"allowed"`
	Decision string        `json:"decision"`
}

// check handles POST /capabilities/check.
func (handler *CapabilityHandler) check(writer http.ResponseWriter, req *http.Request) {
	var input checkRequest
	if err := request.DecodeJSON(req, &input); err != nil {
		respond.Error(writer, req, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("action", string(input.Action))
	if err := validator.Err(); err != nil {
		respond.Error(writer, req, err)
		return
	}

	user := request.User(req)
	decision := handler.evaluator.Decide(user, input.Action, access.Resource{
		CommunityID:    input.CommunityID,
		OwnerUserID:    input.OwnerUserID,
		OwnerPersonaID: input.OwnerPersonaID,
		State:          input.State,
	})

	ctxutil.GetLogger(req.Context()).DebugContext(req.Context(), "capability_checked",
		slog.Int64("user_id", user.ID),
		slog.String("action", string(input.Action)),
		slog.String("decision", decision.String()),
	)

	respond.OK(writer, checkResponse{Action: input.Action, Allowed: decision.Allowed(), Decision: decision.String()})
}

// listInCommunity handles GET /comunidades/{comunidadID}/capabilities.
// It returns the actions the caller may perform at community scope.
func (handler *CapabilityHandler) listInCommunity(writer http.ResponseWriter, req *http.Request) {
	communityID, err := request.ID(req, "comunidadID")
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	user := request.User(req)
	resource := access.InCommunity(communityID)

	allowed := slice.Filter(handler.evaluator.Policy().Actions(), func(action access.Action) bool {
		return handler.evaluator.Can(user, action, resource)
	})

	respond.OK(writer, map[string]any{
		"comunidad_id": communityID,
		"actions":      allowed,
	})
}

// policy handles GET /policy.
func (handler *CapabilityHandler) policy(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, handler.evaluator.Policy())
}
