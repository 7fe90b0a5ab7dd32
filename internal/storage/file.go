// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the durable key-value substrate for mzansi.
package storage

import (
	"os"
	"path/filepath"

	"github.com/mzansigpt/mzansi-tui/internal/util"
)

// =============================================================================
// FILE BACKEND
// =============================================================================

// FileBackend stores each record as a JSON file under a base directory.
// This is the default substrate: <dir>/user.json, <dir>/conversations.json.
type FileBackend struct {
	// BaseDir is the directory holding the record files.
	BaseDir string
}

// OpenFile creates a file backend rooted at dir, creating it if needed.
func OpenFile(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileBackend{BaseDir: dir}, nil
}

// Get returns the raw record for key, or ErrRecordNotFound.
func (b *FileBackend) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(b.filePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return data, nil
}

// Set writes the raw record for key.
// RELIABILITY: Atomic write with fsync prevents data loss on crash.
func (b *FileBackend) Set(key string, value []byte) error {
	return util.AtomicWriteFile(b.filePath(key), value, 0644)
}

// Delete removes the record for key. Absent keys are a no-op.
func (b *FileBackend) Delete(key string) error {
	if err := os.Remove(b.filePath(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Close is a no-op for the file backend.
func (b *FileBackend) Close() error {
	return nil
}

// filePath returns the file path for a record key.
func (b *FileBackend) filePath(key string) string {
	return filepath.Join(b.BaseDir, key+".json")
}
