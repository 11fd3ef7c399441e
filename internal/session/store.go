// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session holds the access token, the refresh credential and the
authenticated user shared by every other package.

# Architecture

  - Store: in-memory state guarded by a mutex. It is the source of truth for
    the request pipeline and the capability checks.
  - Persister: durable storage for the tokens, so a restart does not force a
    new login. The user profile is never persisted; it is fetched again.

The store performs no network calls of its own. A failed write to the
persister is logged and otherwise ignored: the in-memory value stays
authoritative and the caller never sees an error.
*/
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cuentasclaras/cuentasclaras/internal/access"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/constants"
)

// # Persistence Contract

// ErrNotFound is returned by a [Persister] when a key has never been written
// or has been deleted.
var ErrNotFound = errors.New("session: key not found")

// Persister is the durable key/value storage behind a [Store].
type Persister interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// # Snapshot & Listeners

// Snapshot is an immutable copy of the session handed to listeners.
type Snapshot struct {
	Token        string
	RefreshToken string
	User         *access.User
	Version      uint64
}

// Authenticated reports whether an access token is present.
func (s Snapshot) Authenticated() bool {
	return s.Token != ""
}

// Listener is invoked synchronously after every mutation.
type Listener func(Snapshot)

// # Store

// Store is the single, injectable session state object.
//
// # Concurrency
//
// All methods are safe for concurrent use. Listeners run on the goroutine that
// performed the mutation, after the lock has been released.
type Store struct {
	mu           sync.RWMutex
	token        string
	refreshToken string
	user         *access.User
	version      uint64

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int

	// writeMu serialises mutations so persister writes land in version order.
	writeMu sync.Mutex

	persister Persister
	logger    *slog.Logger
}

/*
NewStore loads the persisted tokens and returns a ready [Store].

Description: An absent key means logged out. Any other read failure aborts
startup, since silently starting logged out would hide a broken backend.

Parameters:
  - ctx: context.Context
  - persister: Persister (a MemoryPersister when nil)
  - logger: *slog.Logger

Returns:
  - *Store: The initialized store
  - error: Read failures other than ErrNotFound
*/
func NewStore(ctx context.Context, persister Persister, logger *slog.Logger) (*Store, error) {
	if persister == nil {
		persister = NewMemoryPersister()
	}
	if logger == nil {
		logger = slog.Default()
	}

	store := &Store{
		listeners: make(map[int]Listener),
		persister: persister,
		logger:    logger,
	}

	token, err := load(ctx, persister, constants.StorageKeyAccessToken)
	if err != nil {
		return nil, err
	}

	refreshToken, err := load(ctx, persister, constants.StorageKeyRefreshToken)
	if err != nil {
		return nil, err
	}

	store.token = token
	store.refreshToken = refreshToken

	logger.Debug("session_loaded", slog.Bool("authenticated", token != ""))

	return store, nil
}

func load(ctx context.Context, persister Persister, key string) (string, error) {
	value, err := persister.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("session: load %s: %w", key, err)
	}
	return value, nil
}

// # Accessors

// Token returns the current access token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// RefreshToken returns the stored refresh credential, or "" when the backend
// relies on a cookie only.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// User returns the cached profile. A token without a user is a legal state.
func (s *Store) User() *access.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Version increments every time the access token changes.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Snapshot returns a consistent copy of the whole session.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Token:        s.token,
		RefreshToken: s.refreshToken,
		User:         s.user,
		Version:      s.version,
	}
}

// # Mutations

// SetToken replaces the access token. An empty token clears it and deletes
// the persisted key.
func (s *Store) SetToken(ctx context.Context, token string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.token = token
	s.version++
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, constants.StorageKeyAccessToken, token)
	s.notify(snapshot)
}

// SetRefreshToken replaces the stored refresh credential. An empty value
// clears it and deletes the persisted key.
func (s *Store) SetRefreshToken(ctx context.Context, token string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.refreshToken = token
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, constants.StorageKeyRefreshToken, token)
	s.notify(snapshot)
}

// SetUser replaces the cached profile. It is kept in memory only.
func (s *Store) SetUser(user *access.User) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.user = user
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

// Clear logs out: token, refresh credential and user are cleared together and
// listeners are notified once.
func (s *Store) Clear(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	hadToken := s.token != ""
	s.token = ""
	s.refreshToken = ""
	s.user = nil
	if hadToken {
		s.version++
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, constants.StorageKeyAccessToken, "")
	s.persist(ctx, constants.StorageKeyRefreshToken, "")
	s.notify(snapshot)

	s.logger.Info("session_cleared")
}

// persist writes or deletes key. Failures are logged, never returned.
func (s *Store) persist(ctx context.Context, key, value string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.PersistTimeout)
	defer cancel()

	var err error
	if value == "" {
		err = s.persister.Delete(ctx, key)
	} else {
		err = s.persister.Set(ctx, key, value)
	}

	if err != nil {
		s.logger.Warn("session_persist_failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}
}

// # Subscriptions

// Subscribe registers fn for every subsequent mutation and returns a function
// that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

func (s *Store) notify(snapshot Snapshot) {
	s.listenersMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}
