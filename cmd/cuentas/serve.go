// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/cuentasclaras/cuentasclaras/internal/access"
	"github.com/cuentasclaras/cuentasclaras/internal/api"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/constants"
	pgstore "github.com/cuentasclaras/cuentasclaras/internal/platform/postgres"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/sec"
)

func newServeCommand(application *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the capability guard server",
		Long: `Run an HTTP server that answers capability questions with the same
allow-list table the client uses. Callers authenticate with the backend's
access tokens (CC_JWT_PUBLIC_KEY verifies them).

Endpoints:
  GET  /health, /ready
  POST /api/v1/capabilities/check
  GET  /api/v1/comunidades/{id}/capabilities
  GET  /api/v1/policy   (superadmin)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log := application.cfg, application.log
			if !cfg.Debug {
				log = newLogger(application.stderr, slog.LevelInfo)
				application.log = log
			}

			// ── 1. Capability Table ───────────────────────────────────────────
			startupCtx, cancel := context.WithTimeout(cmd.Context(), constants.StartupTimeout)
			policy, err := application.loadPolicy(startupCtx)
			cancel()
			if err != nil {
				return err
			}

			// ── 2. Token Verification ─────────────────────────────────────────
			if cfg.JWTPublicKeyPath == "" {
				return errors.New("CC_JWT_PUBLIC_KEY is required to serve")
			}
			verifier, err := sec.NewTokenService("", cfg.JWTPublicKeyPath, cfg.JWTIssuer)
			if err != nil {
				return err
			}

			// ── 3. Health Checks ──────────────────────────────────────────────
			var checks []api.HealthCheck
			if application.pool != nil {
				pool := application.pool
				checks = append(checks, api.HealthCheck{Name: "postgres", Check: func(ctx context.Context) error {
					return pgstore.Ping(ctx, pool)
				}})
			}
			liveness, readiness := api.NewHealthHandlers(checks, log)

			// ── 4. HTTP Server ────────────────────────────────────────────────
			server := api.NewServer(cfg.GuardAddr, log, verifier, api.Handlers{
				Liveness:   liveness,
				Readiness:  readiness,
				Capability: api.NewCapabilityHandler(access.NewEvaluator(policy)),
			})

			serverErr := make(chan error, 1)
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// ── 5. Graceful Shutdown ──────────────────────────────────────────
			select {
			case <-cmd.Context().Done():
				log.Info("shutdown_signal_received")
			case err := <-serverErr:
				return err
			}

			if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
				log.Error("shutdown_failed", slog.Any("error", err))
				return err
			}
			return nil
		},
	}
}
