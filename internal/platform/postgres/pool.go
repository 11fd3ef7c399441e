// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package postgres provides the PostgreSQL connection pool used to read the
// capability allow-list table.
//
// # Architecture
//
// The client only ever reads a handful of rows at startup, so the pool is
// kept small and short-lived. Repositories receive the pool via their
// constructors.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool settings sized for a read-mostly, startup-time workload.
const (
	maxConns         = 4
	minConns         = 0
	maxConnIdleTime  = 2 * time.Minute
	connectTimeout   = 5 * time.Second
	pingTimeout      = 2 * time.Second
	statementTimeout = 10 * time.Second
	applicationName  = "cuentasclaras-client"
)

// NewPool creates and validates a PostgreSQL connection pool.
//
// # Parameters
//   - ctx: Context for the initial connection attempt.
//   - dsn: A libpq-compatible connection string or postgres:// URL.
//   - logger: Structured logger for pool-level events.
func NewPool(ctx context.Context, dsn string, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid DSN: %w", err)
	}

	poolConfig.MaxConns = maxConns
	poolConfig.MinConns = minConns
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout
	poolConfig.ConnConfig.RuntimeParams["application_name"] = applicationName

	// Every physical connection gets a statement timeout so a locked table
	// cannot stall startup.
	poolConfig.AfterConnect = func(ctx context.Context, connection *pgx.Conn) error {
		query := fmt.Sprintf("SET statement_timeout = '%ds'", int(statementTimeout.Seconds()))
		_, err := connection.Exec(ctx, query)
		return err
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create pool: %w", err)
	}

	if err := Ping(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("postgres_pool_connected",
		slog.String("host", poolConfig.ConnConfig.Host),
		slog.Int("max_conns", int(poolConfig.MaxConns)),
	)

	return pool, nil
}

// Ping verifies that the pool can reach the database.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("postgres: ping failed: %w", err)
	}

	return nil
}
