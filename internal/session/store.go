// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the active identity and its durable record.
package session

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/mzansigpt/mzansi-tui/internal/model"
	"github.com/mzansigpt/mzansi-tui/internal/storage"
)

// =============================================================================
// ERRORS
// =============================================================================

// ValidationError reports missing credential fields on login or signup.
// It is surfaced to the caller synchronously and rendered inline; it is a
// user mistake, not a system fault, and is never logged as one.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// =============================================================================
// SESSION STORE
// =============================================================================

// Store owns the active Identity, or the absence of one. Identity existence
// is exactly what "authenticated" means; the rest of the application is
// unreachable without it.
type Store struct {
	mu       sync.Mutex
	identity *model.Identity

	backend storage.Backend
	flusher *storage.Flusher

	logf func(format string, args ...any)

	subscribers map[int]func()
	nextSubID   int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger injects the logger for recovered persistence faults.
func WithLogger(logf func(format string, args ...any)) Option {
	return func(s *Store) { s.logf = logf }
}

// New creates a session store backed by b and rehydrates the identity from
// the durable "user" record. A malformed record is logged and discarded so
// the store fails open to the logged-out state, never to a corrupted
// authenticated one.
func New(b storage.Backend, opts ...Option) *Store {
	s := &Store{
		backend:     b,
		logf:        defaultLogf,
		subscribers: make(map[int]func()),
	}
	for _, opt := range opts {
		opt(s)
	}

	id, err := storage.LoadIdentity(b)
	switch {
	case err == nil:
		s.identity = id
	case errors.Is(err, storage.ErrRecordNotFound):
		// No stored identity: start logged out.
	default:
		var corrupt *storage.CorruptRecordError
		if errors.As(err, &corrupt) {
			s.logf("failed to parse stored user: %v", err)
			b.Delete(storage.KeyUser)
		} else {
			s.logf("failed to load stored user: %v", err)
		}
	}

	s.flusher = storage.NewFlusher(s.persist, s.logf)
	return s
}

// persist writes the current identity through, or clears the record when
// logged out. Runs on the flusher's loop.
func (s *Store) persist() error {
	s.mu.Lock()
	id := s.identity
	if id != nil {
		copied := *id
		id = &copied
	}
	s.mu.Unlock()

	if id == nil {
		return storage.DeleteIdentity(s.backend)
	}
	return storage.SaveIdentity(s.backend, id)
}

// Flush forces any pending write-through to complete.
func (s *Store) Flush() error {
	return s.flusher.Flush()
}

// Close flushes pending state and stops the write loop.
func (s *Store) Close() error {
	return s.flusher.Close()
}

// =============================================================================
// AUTHENTICATION OPERATIONS
// =============================================================================

// Login establishes a fresh identity for the given credentials, superseding
// any previously active one. The name is derived from the email local part
// and the avatar deterministically from the email. Authentication itself is
// simulated; empty fields are the only failure.
func (s *Store) Login(email, password string) (*model.Identity, error) {
	if email == "" || password == "" {
		return nil, &ValidationError{Message: "email and password are required"}
	}
	return s.establish(model.NewIdentity(email, model.LocalPart(email))), nil
}

// Signup behaves as Login but uses the supplied display name directly.
func (s *Store) Signup(email, name, password string) (*model.Identity, error) {
	if email == "" || name == "" || password == "" {
		return nil, &ValidationError{Message: "email, name, and password are required"}
	}
	return s.establish(model.NewIdentity(email, name)), nil
}

// Logout clears the active identity and its durable record. Idempotent:
// logging out while logged out is a no-op.
func (s *Store) Logout() {
	s.mu.Lock()
	if s.identity == nil {
		s.mu.Unlock()
		return
	}
	s.identity = nil
	s.mu.Unlock()

	s.changed()
}

// ProfileUpdate carries the fields of an UpdateProfile call. Empty fields
// are left unchanged; the identity's ID is never overwritten.
type ProfileUpdate struct {
	Email  string
	Name   string
	Avatar string
}

// UpdateProfile merges the supplied fields into the active identity and
// re-persists it. A no-op when logged out.
func (s *Store) UpdateProfile(update ProfileUpdate) {
	s.mu.Lock()
	if s.identity == nil {
		s.mu.Unlock()
		return
	}
	if update.Email != "" {
		s.identity.Email = update.Email
	}
	if update.Name != "" {
		s.identity.Name = update.Name
	}
	if update.Avatar != "" {
		s.identity.Avatar = update.Avatar
	}
	s.mu.Unlock()

	s.changed()
}

// establish swaps in a new active identity.
func (s *Store) establish(id *model.Identity) *model.Identity {
	s.mu.Lock()
	s.identity = id
	s.mu.Unlock()

	s.changed()
	return id
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

// IsAuthenticated reports whether an identity is active.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity != nil
}

// CurrentUser returns a copy of the active identity, or nil when logged out.
func (s *Store) CurrentUser() *model.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity == nil {
		return nil
	}
	copied := *s.identity
	return &copied
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// Subscribe registers fn to run after every identity change. The returned
// function unsubscribes.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// changed marks durable state dirty and notifies subscribers.
func (s *Store) changed() {
	s.flusher.MarkDirty()

	s.mu.Lock()
	fns := make([]func(), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// defaultLogf reports recovered faults to stderr.
func defaultLogf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "mzansi: "+format+"\n", args...)
}
