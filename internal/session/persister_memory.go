// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"sync"
)

// MemoryPersister keeps values in process memory. Nothing survives a restart.
type MemoryPersister struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryPersister creates an empty [MemoryPersister].
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{values: make(map[string]string)}
}

// Get implements [Persister].
func (persister *MemoryPersister) Get(_ context.Context, key string) (string, error) {
	persister.mu.RLock()
	defer persister.mu.RUnlock()

	value, ok := persister.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set implements [Persister].
func (persister *MemoryPersister) Set(_ context.Context, key, value string) error {
	persister.mu.Lock()
	defer persister.mu.Unlock()

	persister.values[key] = value
	return nil
}

// Delete implements [Persister].
func (persister *MemoryPersister) Delete(_ context.Context, key string) error {
	persister.mu.Lock()
	defer persister.mu.Unlock()

	delete(persister.values, key)
	return nil
}
