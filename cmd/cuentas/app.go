// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	"github.com/cuentasclaras/cuentasclaras/internal/access"
	"github.com/cuentasclaras/cuentasclaras/internal/appeal"
	"github.com/cuentasclaras/cuentasclaras/internal/auth"
	"github.com/cuentasclaras/cuentasclaras/internal/client"
	"github.com/cuentasclaras/cuentasclaras/internal/fine"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/config"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/constants"
	pgstore "github.com/cuentasclaras/cuentasclaras/internal/platform/postgres"
	redisstore "github.com/cuentasclaras/cuentasclaras/internal/platform/redis"
	"github.com/cuentasclaras/cuentasclaras/internal/provider"
	"github.com/cuentasclaras/cuentasclaras/internal/session"
)

// app holds the wired dependencies of one command invocation.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	stderr io.Writer

	closers []func()

	pool      *pgxpool.Pool
	session   *session.Store
	client    *client.Client
	evaluator *access.Evaluator

	auth      *auth.Service
	fines     *fine.Service
	appeals   *appeal.Service
	providers *provider.Service

	// quietClear suppresses the expiry notice when the user asked to sign out.
	quietClear bool
}

// # Logger & Configuration

// newLogger builds the JSON logger. Interactive commands log warnings only,
// so their output stays readable.
func newLogger(writer io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// load reads the configuration and sets up the logger.
func (a *app) load() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}

	a.cfg = cfg
	a.log = newLogger(a.stderr, level)
	slog.SetDefault(a.log)

	a.log.Debug("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("api_base_url", cfg.APIBaseURL),
		slog.String("session_backend", cfg.SessionBackend),
	)
	return nil
}

// # Wiring

// wire builds everything a backend-facing command needs.
func (a *app) wire(ctx context.Context) error {
	startupCtx, cancel := context.WithTimeout(ctx, constants.StartupTimeout)
	defer cancel()

	// ── 1. Session ────────────────────────────────────────────────────────
	persister, err := a.openPersister(startupCtx)
	if err != nil {
		return err
	}

	store, err := session.NewStore(startupCtx, persister, a.log)
	if err != nil {
		return err
	}
	a.session = store
	a.closers = append(a.closers, store.Subscribe(a.onSessionChange(store.Snapshot())))

	// ── 2. Capability Table ───────────────────────────────────────────────
	policy, err := a.loadPolicy(startupCtx)
	if err != nil {
		return err
	}
	a.evaluator = access.NewEvaluator(policy)

	// ── 3. Request Pipeline ───────────────────────────────────────────────
	var limiter *rate.Limiter
	if a.cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(a.cfg.RateLimitRPS), a.cfg.RateLimitBurst)
	}

	apiClient, err := client.New(client.Options{
		BaseURL:     a.cfg.APIBaseURL,
		Session:     store,
		Timeout:     a.cfg.RequestTimeout,
		RefreshPath: a.cfg.RefreshPath,
		Limiter:     limiter,
		Logger:      a.log,
	})
	if err != nil {
		return err
	}
	a.client = apiClient

	// ── 4. Resource Services ──────────────────────────────────────────────
	fineRepository := fine.NewHTTPRepository(apiClient)

	a.auth = auth.NewService(apiClient, a.log)
	a.fines = fine.NewService(fineRepository, a.evaluator, store, a.log)
	a.appeals = appeal.NewService(appeal.NewHTTPRepository(apiClient), fineRepository, a.evaluator, store, a.log)
	a.providers = provider.NewService(provider.NewHTTPRepository(apiClient), a.evaluator, store, a.log)

	return nil
}

// openPersister selects the session backend from the configuration.
func (a *app) openPersister(ctx context.Context) (session.Persister, error) {
	switch a.cfg.SessionBackend {
	case config.SessionBackendRedis:
		rdb, err := redisstore.NewClient(ctx, a.cfg.RedisURL, a.log)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() {
			if err := rdb.Close(); err != nil {
				a.log.Error("redis_close_failed", slog.Any("error", err))
			}
		})
		return session.NewRedisPersister(rdb, constants.RedisPrefixSession), nil

	case config.SessionBackendMemory:
		return session.NewMemoryPersister(), nil

	default:
		path, err := a.cfg.SessionFilePath()
		if err != nil {
			return nil, err
		}
		return session.NewFilePersister(path), nil
	}
}

// loadPolicy overlays the optional YAML file and Postgres table on the
// built-in defaults. Postgres wins over the file.
func (a *app) loadPolicy(ctx context.Context) (access.Policy, error) {
	var repositories []access.PolicyRepository

	if a.cfg.PolicyFile != "" {
		repositories = append(repositories, access.NewFilePolicyRepository(a.cfg.PolicyFile))
	}

	if a.cfg.DatabaseURL != "" {
		pool, err := a.openPool(ctx)
		if err != nil {
			return nil, err
		}
		repositories = append(repositories, access.NewPostgresPolicyRepository(pool))
	}

	policy, err := access.LoadPolicy(ctx, repositories...)
	if err != nil {
		return nil, fmt.Errorf("load capability policy: %w", err)
	}

	a.log.Debug("capability_policy_loaded", slog.Int("rules", len(policy)), slog.Int("sources", len(repositories)))
	return policy, nil
}

func (a *app) openPool(ctx context.Context) (*pgxpool.Pool, error) {
	if a.pool != nil {
		return a.pool, nil
	}

	pool, err := pgstore.NewPool(ctx, a.cfg.DatabaseURL, a.log)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	a.pool = pool
	a.closers = append(a.closers, pool.Close)
	return pool, nil
}

// onSessionChange tells the user when a session ends without them asking,
// which is how an expired refresh credential surfaces.
func (a *app) onSessionChange(initial session.Snapshot) session.Listener {
	authenticated := initial.Authenticated()
	return func(snapshot session.Snapshot) {
		if authenticated && !snapshot.Authenticated() && !a.quietClear {
			fmt.Fprintln(a.stderr, "Your session has expired.")
		}
		authenticated = snapshot.Authenticated()
	}
}

// currentUser returns the profile, loading it from the backend when the
// persisted session only holds tokens.
func (a *app) currentUser(ctx context.Context) (*access.User, error) {
	return a.auth.CurrentUser(ctx)
}

// close releases connections in reverse order.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func newApp() *app {
	return &app{stderr: os.Stderr}
}
