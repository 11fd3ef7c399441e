// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FilePersister stores every key in one JSON object on disk.
//
// Writes go to a temporary file in the same directory and are renamed over the
// target, so a crash never leaves a truncated session file behind. The file is
// created with 0600 permissions since it holds bearer credentials.
type FilePersister struct {
	mu   sync.Mutex
	path string
}

// NewFilePersister creates a [FilePersister] for path. The file is created on
// the first write.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

// Path returns the backing file.
func (persister *FilePersister) Path() string {
	return persister.path
}

/*
Get reads key from the file.

Returns:
  - string: The stored value
  - error: ErrNotFound when the file or the key is absent
*/
func (persister *FilePersister) Get(_ context.Context, key string) (string, error) {
	persister.mu.Lock()
	defer persister.mu.Unlock()

	values, err := persister.read()
	if err != nil {
		return "", err
	}

	value, ok := values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set implements [Persister].
func (persister *FilePersister) Set(_ context.Context, key, value string) error {
	persister.mu.Lock()
	defer persister.mu.Unlock()

	values, err := persister.read()
	if err != nil {
		return err
	}

	values[key] = value
	return persister.write(values)
}

// Delete implements [Persister]. Deleting an absent key is not an error.
func (persister *FilePersister) Delete(_ context.Context, key string) error {
	persister.mu.Lock()
	defer persister.mu.Unlock()

	values, err := persister.read()
	if err != nil {
		return err
	}

	if _, ok := values[key]; !ok {
		return nil
	}

	delete(values, key)
	return persister.write(values)
}

func (persister *FilePersister) read() (map[string]string, error) {
	data, err := os.ReadFile(persister.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("session_file_read_failed: %w", err)
	}

	values := make(map[string]string)
	if len(data) == 0 {
		return values, nil
	}

	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("session_file_decode_failed: %w", err)
	}
	return values, nil
}

func (persister *FilePersister) write(values map[string]string) error {
	dir := filepath.Dir(persister.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("session_file_mkdir_failed: %w", err)
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("session_file_encode_failed: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("session_file_write_failed: %w", err)
	}
	tempPath := temp.Name()

	// ── 1. Write & Flush ──────────────────────────────────────────────────
	if err := temp.Chmod(0o600); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("session_file_chmod_failed: %w", err)
	}

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("session_file_write_failed: %w", err)
	}

	if err := temp.Sync(); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("session_file_sync_failed: %w", err)
	}

	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("session_file_close_failed: %w", err)
	}

	// ── 2. Atomic Replace ─────────────────────────────────────────────────
	if err := os.Rename(tempPath, persister.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("session_file_rename_failed: %w", err)
	}

	return nil
}
