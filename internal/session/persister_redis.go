// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPersister stores session keys in Redis under a namespace prefix.
//
// Keys never expire: the backend decides when a token is no longer valid and
// the request pipeline clears the session when a refresh fails.
type RedisPersister struct {
	client *redis.Client
	prefix string
}

// NewRedisPersister creates a [RedisPersister]. The prefix separates several
// sessions (kiosks, operators) sharing one Redis.
func NewRedisPersister(client *redis.Client, prefix string) *RedisPersister {
	return &RedisPersister{client: client, prefix: prefix}
}

func (persister *RedisPersister) key(key string) string {
	return persister.prefix + key
}

/*
Get retrieves the value stored under key.

Parameters:
  - ctx: context.Context
  - key: string

Returns:
  - string: The stored value
  - error: ErrNotFound when absent, connectivity errors otherwise
*/
func (persister *RedisPersister) Get(ctx context.Context, key string) (string, error) {
	value, err := persister.client.Get(ctx, persister.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("redis_session_get_failed: %w", err)
	}
	return value, nil
}

// Set implements [Persister].
func (persister *RedisPersister) Set(ctx context.Context, key, value string) error {
	if err := persister.client.Set(ctx, persister.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}
	return nil
}

// Delete implements [Persister].
func (persister *RedisPersister) Delete(ctx context.Context, key string) error {
	if err := persister.client.Del(ctx, persister.key(key)).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}
	return nil
}
