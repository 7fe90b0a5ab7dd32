// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the active identity and its durable record.
package session

import (
	"errors"
	"strings"
	"testing"

	"github.com/mzansigpt/mzansi-tui/internal/storage"
)

func newTestStore(t *testing.T) (*Store, storage.Backend) {
	t.Helper()
	backend, err := storage.OpenFile(t.TempDir())
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	s := New(backend, WithLogger(t.Logf))
	t.Cleanup(func() { s.Close() })
	return s, backend
}

// =============================================================================
// LOGIN TESTS
// =============================================================================

func TestLogin(t *testing.T) {
	s, _ := newTestStore(t)

	id, err := s.Login("naledi@example.com", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if !s.IsAuthenticated() {
		t.Error("IsAuthenticated should be true after login")
	}
	if id.Name != "naledi" {
		t.Errorf("Name = %q, want local part %q", id.Name, "naledi")
	}
	if !strings.Contains(id.Avatar, "naledi%40example.com") {
		t.Errorf("Avatar should be derived from email, got %q", id.Avatar)
	}
	if id.ID == "" {
		t.Error("ID should be generated")
	}
}

func TestLogin_Validation(t *testing.T) {
	s, _ := newTestStore(t)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "secret"},
		{"empty password", "a@b.c", ""},
		{"both empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Login(tc.email, tc.password)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("Login = %v, want *ValidationError", err)
			}
			if s.IsAuthenticated() {
				t.Error("Failed login must not authenticate")
			}
		})
	}
}

func TestLogin_SupersedesPreviousIdentity(t *testing.T) {
	s, _ := newTestStore(t)

	first, _ := s.Login("first@example.com", "pw")
	second, _ := s.Login("second@example.com", "pw")

	cur := s.CurrentUser()
	if cur.ID != second.ID {
		t.Error("Second login should supersede the first identity")
	}
	if cur.ID == first.ID {
		t.Error("A fresh ID should be generated per login")
	}
}

// =============================================================================
// SIGNUP TESTS
// =============================================================================

func TestSignup(t *testing.T) {
	s, _ := newTestStore(t)

	id, err := s.Signup("thabo@example.com", "Thabo M", "secret")
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	if id.Name != "Thabo M" {
		t.Errorf("Name = %q, want the supplied name", id.Name)
	}
}

func TestSignup_Validation(t *testing.T) {
	s, _ := newTestStore(t)

	for _, tc := range []struct {
		name                  string
		email, dname, password string
	}{
		{"empty email", "", "N", "pw"},
		{"empty name", "a@b.c", "", "pw"},
		{"empty password", "a@b.c", "N", ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Signup(tc.email, tc.dname, tc.password)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("Signup = %v, want *ValidationError", err)
			}
		})
	}
}

// =============================================================================
// LOGOUT TESTS
// =============================================================================

func TestLogout(t *testing.T) {
	s, backend := newTestStore(t)

	s.Login("x@example.com", "pw")
	s.Logout()

	if s.IsAuthenticated() {
		t.Error("IsAuthenticated should be false after logout")
	}
	if s.CurrentUser() != nil {
		t.Error("CurrentUser should be nil after logout")
	}

	if err := s.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if _, err := storage.LoadIdentity(backend); !errors.Is(err, storage.ErrRecordNotFound) {
		t.Error("Durable record should be cleared by logout")
	}
}

func TestLogout_Idempotent(t *testing.T) {
	s, _ := newTestStore(t)

	// Logging out while logged out is a no-op, not an error.
	s.Logout()
	s.Logout()
	if s.IsAuthenticated() {
		t.Error("Still logged out")
	}
}

// =============================================================================
// PROFILE TESTS
// =============================================================================

func TestUpdateProfile(t *testing.T) {
	s, _ := newTestStore(t)

	id, _ := s.Login("old@example.com", "pw")
	s.UpdateProfile(ProfileUpdate{Name: "New Name"})

	cur := s.CurrentUser()
	if cur.Name != "New Name" {
		t.Errorf("Name = %q, want %q", cur.Name, "New Name")
	}
	if cur.Email != "old@example.com" {
		t.Error("Unsupplied fields should be left unchanged")
	}
	if cur.ID != id.ID {
		t.Error("ID must never change")
	}
}

func TestUpdateProfile_LoggedOut(t *testing.T) {
	s, _ := newTestStore(t)

	// Must be a silent no-op.
	s.UpdateProfile(ProfileUpdate{Name: "ghost"})
	if s.CurrentUser() != nil {
		t.Error("UpdateProfile while logged out should do nothing")
	}
}

// =============================================================================
// REHYDRATION TESTS
// =============================================================================

func TestRehydration_RestoresIdentity(t *testing.T) {
	backend, err := storage.OpenFile(t.TempDir())
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}

	s := New(backend, WithLogger(t.Logf))
	id, _ := s.Login("keep@example.com", "pw")
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Simulated restart.
	restored := New(backend, WithLogger(t.Logf))
	defer restored.Close()

	if !restored.IsAuthenticated() {
		t.Fatal("Identity should survive a restart")
	}
	cur := restored.CurrentUser()
	if cur.ID != id.ID || cur.Email != id.Email || cur.Name != id.Name || cur.Avatar != id.Avatar {
		t.Error("All identity fields should survive a restart")
	}
}

func TestRehydration_AfterLogout(t *testing.T) {
	backend, err := storage.OpenFile(t.TempDir())
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}

	s := New(backend, WithLogger(t.Logf))
	s.Login("gone@example.com", "pw")
	s.Logout()
	s.Close()

	restored := New(backend, WithLogger(t.Logf))
	defer restored.Close()

	if restored.IsAuthenticated() {
		t.Error("Logout should survive a restart")
	}
}

func TestRehydration_CorruptRecord(t *testing.T) {
	backend, err := storage.OpenFile(t.TempDir())
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	backend.Set(storage.KeyUser, []byte("{broken"))

	var logged bool
	s := New(backend, WithLogger(func(format string, args ...any) { logged = true }))
	defer s.Close()

	// Fail open to logged out, never to a corrupted authenticated state.
	if s.IsAuthenticated() {
		t.Error("Corrupt record must not authenticate")
	}
	if !logged {
		t.Error("Corrupt record should be logged")
	}
	if _, err := storage.LoadIdentity(backend); !errors.Is(err, storage.ErrRecordNotFound) {
		t.Error("Malformed record should be discarded")
	}
}

// =============================================================================
// SUBSCRIPTION TESTS
// =============================================================================

func TestSubscribe(t *testing.T) {
	s, _ := newTestStore(t)

	calls := 0
	unsubscribe := s.Subscribe(func() { calls++ })

	s.Login("a@b.c", "pw")
	s.Logout()
	if calls != 2 {
		t.Errorf("Calls = %d, want 2", calls)
	}

	unsubscribe()
	s.Login("a@b.c", "pw")
	if calls != 2 {
		t.Error("Unsubscribed callback should not fire")
	}
}
