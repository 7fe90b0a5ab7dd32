// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"
	"time"

	"github.com/mzansigpt/mzansi-tui/internal/assistant"
	"github.com/mzansigpt/mzansi-tui/internal/config"
	"github.com/mzansigpt/mzansi-tui/internal/session"
	"github.com/mzansigpt/mzansi-tui/internal/storage"
	"github.com/mzansigpt/mzansi-tui/internal/store"
)

func discard(format string, args ...any) {}

// newTestSession builds a Session over temp stores without a liner, which
// tests never read from.
func newTestSession(t *testing.T) *Session {
	t.Helper()

	backend, err := storage.Open("json", t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { backend.Close() })

	conversations := store.New(backend, store.WithLogger(discard))
	t.Cleanup(func() { conversations.Close() })

	sessions := session.New(backend, session.WithLogger(discard))
	t.Cleanup(func() { sessions.Close() })

	return &Session{
		Config:        config.Default(),
		Sessions:      sessions,
		Conversations: conversations,
		Responder:     assistant.New(assistant.WithDelay(time.Millisecond)),
		StartTime:     time.Now(),
	}
}

// =============================================================================
// SLASH COMMAND TESTS
// =============================================================================

func TestSlashNewCreatesAndSelects(t *testing.T) {
	s := newTestSession(t)

	cont, err := handleSlashCommand("/new Project ideas", s)
	if err != nil {
		t.Fatalf("handleSlashCommand() error: %v", err)
	}
	if !cont {
		t.Error("/new should continue the loop")
	}
	conv := s.Conversations.CurrentConversation()
	if conv == nil {
		t.Fatal("no conversation selected after /new")
	}
	if conv.Title != "Project ideas" {
		t.Errorf("title = %q, want %q", conv.Title, "Project ideas")
	}
}

func TestSlashSelectByPosition(t *testing.T) {
	s := newTestSession(t)

	a := s.Conversations.CreateConversation("A")
	s.Conversations.CreateConversation("B")

	// Listing order is most recent first: B is 1, A is 2.
	if _, err := handleSlashCommand("/select 2", s); err != nil {
		t.Fatalf("/select error: %v", err)
	}
	if got := s.Conversations.CurrentConversation(); got == nil || got.ID != a.ID {
		t.Error("/select 2 should select the older conversation")
	}

	if _, err := handleSlashCommand("/select 5", s); err == nil {
		t.Error("out-of-range /select should fail")
	}
	if _, err := handleSlashCommand("/select x", s); err == nil {
		t.Error("non-numeric /select should fail")
	}
}

func TestSlashDeleteAndRename(t *testing.T) {
	s := newTestSession(t)

	if _, err := handleSlashCommand("/delete", s); err == nil {
		t.Error("/delete with nothing selected should fail")
	}

	s.Conversations.CreateConversation("Old name")
	if _, err := handleSlashCommand("/rename Better name", s); err != nil {
		t.Fatalf("/rename error: %v", err)
	}
	if got := s.Conversations.CurrentConversation().Title; got != "Better name" {
		t.Errorf("title = %q, want %q", got, "Better name")
	}

	if _, err := handleSlashCommand("/delete", s); err != nil {
		t.Fatalf("/delete error: %v", err)
	}
	if s.Conversations.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Conversations.Len())
	}
}

func TestSlashQuitStopsLoop(t *testing.T) {
	s := newTestSession(t)

	cont, err := handleSlashCommand("/quit", s)
	if err != nil {
		t.Fatalf("/quit error: %v", err)
	}
	if cont {
		t.Error("/quit should stop the loop")
	}
}

func TestSlashUnknownCommand(t *testing.T) {
	s := newTestSession(t)

	cont, err := handleSlashCommand("/bogus", s)
	if err == nil {
		t.Error("unknown command should error")
	}
	if !cont {
		t.Error("unknown command should not exit")
	}
}

func TestSlashProfileUpdate(t *testing.T) {
	s := newTestSession(t)

	if _, err := handleSlashCommand("/profile", s); err == nil {
		t.Error("/profile while logged out should fail")
	}

	if _, err := s.Sessions.Login("sipho@example.com", "pw"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	if _, err := handleSlashCommand("/profile name Sipho N", s); err != nil {
		t.Fatalf("/profile name error: %v", err)
	}
	if got := s.Sessions.CurrentUser().Name; got != "Sipho N" {
		t.Errorf("name = %q, want %q", got, "Sipho N")
	}

	if _, err := handleSlashCommand("/profile shoe 9", s); err == nil {
		t.Error("unknown profile field should fail")
	}
}

// =============================================================================
// MESSAGE PROCESSING TESTS
// =============================================================================

func TestProcessMessageRoundTrip(t *testing.T) {
	s := newTestSession(t)

	if err := processMessage(s, "hello from the CLI"); err != nil {
		t.Fatalf("processMessage() error: %v", err)
	}

	conv := s.Conversations.CurrentConversation()
	if conv == nil {
		t.Fatal("processMessage should create a conversation implicitly")
	}
	if conv.MessageCount() != 2 {
		t.Fatalf("MessageCount() = %d, want 2 (user + assistant)", conv.MessageCount())
	}
	if got := conv.Messages[0].Content; got != "hello from the CLI" {
		t.Errorf("user content = %q", got)
	}
	if s.SentCount != 1 {
		t.Errorf("SentCount = %d, want 1", s.SentCount)
	}
}
