// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis provides the managed client behind the Redis session persister.

It is used when several client processes (front-desk kiosks, a backend-for-
frontend) must share one session instead of each keeping a local file.

Core Responsibilities:

  - Connectivity: Parses CC_REDIS_URL and validates the connection at startup.
  - Pooling: A small pool, since session traffic is a few keys per login.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Default timeouts for session reads and writes.
const (
	dialTimeout  = 3 * time.Second
	readTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
	pingTimeout  = 2 * time.Second
)

// NewClient connects to the session Redis and pings it once, so a bad
// CC_REDIS_URL fails the command instead of the first session write.
func NewClient(context stdctx.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	// Session traffic is a handful of keys per login.
	options.PoolSize, options.MinIdleConns, options.MaxIdleConns = 4, 0, 2
	options.DialTimeout, options.ReadTimeout, options.WriteTimeout = dialTimeout, readTimeout, writeTimeout

	client := redis.NewClient(options)
	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Debug("redis_client_connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
	)

	return client, nil
}

// Ping verifies that the Redis client is healthy.
func Ping(context stdctx.Context, client *redis.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}

	return nil
}
