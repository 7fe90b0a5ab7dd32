// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the durable key-value substrate for mzansi.
package storage

// Record keys. The substrate holds exactly two independent records: the
// active identity and the full conversation set.
const (
	KeyUser          = "user"
	KeyConversations = "conversations"
)

// Backend abstracts the durable key-value substrate (JSON files, SQLite).
type Backend interface {
	// Get returns the raw record for key, or ErrRecordNotFound.
	Get(key string) ([]byte, error)

	// Set writes the raw record for key, replacing any previous value.
	Set(key string, value []byte) error

	// Delete removes the record for key. Deleting an absent key is a no-op.
	Delete(key string) error

	// Close releases backend resources.
	Close() error
}

// Open creates a backend of the given kind ("json" or "sqlite") rooted at dir.
func Open(kind, dir string) (Backend, error) {
	switch kind {
	case "sqlite":
		return OpenSQLite(dir)
	default:
		return OpenFile(dir)
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrRecordNotFound is returned when a record doesn't exist.
// Use errors.Is(err, ErrRecordNotFound) to check for this error.
var ErrRecordNotFound = &StoreError{Message: "record not found"}

// StoreError represents a storage-related error.
// It implements the error interface and can be compared using errors.Is.
type StoreError struct {
	Message string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing store errors.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// CorruptRecordError indicates a record that exists but cannot be decoded.
// Callers recover by discarding the record and starting from an empty state;
// the malformed bytes never surface as a fatal error.
type CorruptRecordError struct {
	Key string
	Err error
}

// Error implements the error interface.
func (e *CorruptRecordError) Error() string {
	return "corrupt record " + e.Key + ": " + e.Err.Error()
}

// Unwrap returns the underlying decode error.
func (e *CorruptRecordError) Unwrap() error {
	return e.Err
}
