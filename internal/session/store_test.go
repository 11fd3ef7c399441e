// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuentasclaras/cuentasclaras/internal/access"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/constants"
	"github.com/cuentasclaras/cuentasclaras/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// brokenPersister fails every write and reports nothing stored.
type brokenPersister struct{}

func (brokenPersister) Get(context.Context, string) (string, error) { return "", session.ErrNotFound }
func (brokenPersister) Set(context.Context, string, string) error {
	return errors.New("disk full")
}
func (brokenPersister) Delete(context.Context, string) error { return errors.New("disk full") }

/*
TestStore_FilePersistenceRoundTrip reloads the token through a brand new store.
*/
func TestStore_FilePersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	first, err := session.NewStore(ctx, session.NewFilePersister(path), discardLogger())
	require.NoError(t, err)
	assert.Empty(t, first.Token())

	first.SetToken(ctx, "abc")
	first.SetRefreshToken(ctx, "refresh-1")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// 1. A fresh store sees the persisted values
	second, err := session.NewStore(ctx, session.NewFilePersister(path), discardLogger())
	require.NoError(t, err)
	assert.Equal(t, "abc", second.Token())
	assert.Equal(t, "refresh-1", second.RefreshToken())
	assert.Nil(t, second.User())

	// 2. Clearing removes the key from storage
	second.SetToken(ctx, "")
	_, err = session.NewFilePersister(path).Get(ctx, constants.StorageKeyAccessToken)
	assert.ErrorIs(t, err, session.ErrNotFound)

	third, err := session.NewStore(ctx, session.NewFilePersister(path), discardLogger())
	require.NoError(t, err)
	assert.Empty(t, third.Token())
	assert.Equal(t, "refresh-1", third.RefreshToken())
}

/*
TestStore_CorruptFile aborts startup instead of silently logging out.
*/
func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := session.NewStore(context.Background(), session.NewFilePersister(path), discardLogger())
	assert.Error(t, err)
}

/*
TestStore_ListenersAreSynchronous checks that every mutation is observed before
the mutating call returns.
*/
func TestStore_ListenersAreSynchronous(t *testing.T) {
	ctx := context.Background()
	store, err := session.NewStore(ctx, session.NewMemoryPersister(), discardLogger())
	require.NoError(t, err)

	var seen []session.Snapshot
	unsubscribe := store.Subscribe(func(snapshot session.Snapshot) {
		seen = append(seen, snapshot)
	})

	store.SetToken(ctx, "t1")
	require.Len(t, seen, 1)
	assert.Equal(t, "t1", seen[0].Token)
	assert.True(t, seen[0].Authenticated())

	user := &access.User{ID: 7, Username: "tesorera"}
	store.SetUser(user)
	require.Len(t, seen, 2)
	assert.Same(t, user, seen[1].User)

	store.Clear(ctx)
	require.Len(t, seen, 3)
	assert.False(t, seen[2].Authenticated())
	assert.Nil(t, seen[2].User)

	unsubscribe()
	unsubscribe()
	store.SetToken(ctx, "t2")
	assert.Len(t, seen, 3)
}

/*
TestStore_Version increments only when the access token changes.
*/
func TestStore_Version(t *testing.T) {
	ctx := context.Background()
	store, err := session.NewStore(ctx, nil, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, uint64(0), store.Version())

	store.SetToken(ctx, "a")
	store.SetUser(&access.User{ID: 1})
	store.SetRefreshToken(ctx, "r")
	assert.Equal(t, uint64(1), store.Version())

	store.Clear(ctx)
	assert.Equal(t, uint64(2), store.Version())

	// Clearing an already empty session leaves the version alone.
	store.Clear(ctx)
	assert.Equal(t, uint64(2), store.Version())
}

/*
TestStore_TokenWithoutUser is a legal state during the initial profile load.
*/
func TestStore_TokenWithoutUser(t *testing.T) {
	ctx := context.Background()
	persister := session.NewMemoryPersister()
	require.NoError(t, persister.Set(ctx, constants.StorageKeyAccessToken, "persisted"))

	store, err := session.NewStore(ctx, persister, discardLogger())
	require.NoError(t, err)

	snapshot := store.Snapshot()
	assert.Equal(t, "persisted", snapshot.Token)
	assert.Nil(t, snapshot.User)
}

/*
TestStore_PersistFailureIsLogged keeps the in-memory value authoritative when
the persister rejects a write.
*/
func TestStore_PersistFailureIsLogged(t *testing.T) {
	ctx := context.Background()
	store, err := session.NewStore(ctx, brokenPersister{}, discardLogger())
	require.NoError(t, err)

	store.SetToken(ctx, "still-here")
	assert.Equal(t, "still-here", store.Token())

	store.Clear(ctx)
	assert.Empty(t, store.Token())
}
