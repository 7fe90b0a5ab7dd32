// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mzansigpt/mzansi-tui/internal/assistant"
	"github.com/mzansigpt/mzansi-tui/internal/config"
	"github.com/mzansigpt/mzansi-tui/internal/model"
	"github.com/mzansigpt/mzansi-tui/internal/session"
	"github.com/mzansigpt/mzansi-tui/internal/storage"
	"github.com/mzansigpt/mzansi-tui/internal/store"
	"github.com/mzansigpt/mzansi-tui/internal/ui/styles"
)

// discard swallows log output in tests.
func discard(format string, args ...any) {}

func newTestChat(t *testing.T) (chatModel, *store.Store, *session.Store) {
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

	responder := assistant.New(assistant.WithDelay(time.Millisecond))

	m := newChat(styles.NewTheme(), config.Default(), sessions, conversations, responder)
	m, _ = m.handleResize(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, conversations, sessions
}

// =============================================================================
// SUBMIT FLOW TESTS
// =============================================================================

func TestSubmitCreatesConversationImplicitly(t *testing.T) {
	m, conversations, _ := newTestChat(t)

	m.input.SetValue("hello there")
	m, cmd := m.submitInput()

	if conversations.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", conversations.Len())
	}
	conv := conversations.CurrentConversation()
	if conv == nil {
		t.Fatal("no current conversation after submit")
	}
	if conv.MessageCount() != 1 {
		t.Errorf("MessageCount() = %d, want 1", conv.MessageCount())
	}
	if got := conv.Messages[0].Content; got != "hello there" {
		t.Errorf("message content = %q, want %q", got, "hello there")
	}
	if conv.Messages[0].Role != model.RoleUser {
		t.Errorf("role = %q, want user", conv.Messages[0].Role)
	}
	if cmd == nil {
		t.Error("submitInput() should schedule the reply command")
	}
	if !m.waiting {
		t.Error("waiting should be true after submit")
	}
}

func TestSubmitEmptyInputIsNoop(t *testing.T) {
	m, conversations, _ := newTestChat(t)

	m.input.SetValue("   ")
	_, cmd := m.submitInput()

	if conversations.Len() != 0 {
		t.Errorf("Len() = %d, want 0", conversations.Len())
	}
	if cmd != nil {
		t.Error("empty submit should not schedule anything")
	}
}

func TestSubmitUsesSelectedConversation(t *testing.T) {
	m, conversations, _ := newTestChat(t)

	first := conversations.CreateConversation("First")
	conversations.CreateConversation("Second")
	conversations.SelectConversation(first.ID)

	m.input.SetValue("for the first one")
	m, _ = m.submitInput()

	if conversations.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", conversations.Len())
	}
	if got := conversations.Get(first.ID).MessageCount(); got != 1 {
		t.Errorf("selected conversation MessageCount() = %d, want 1", got)
	}
}

// =============================================================================
// REPLY DELIVERY TESTS
// =============================================================================

func TestReplyAppendsToConversation(t *testing.T) {
	m, conversations, _ := newTestChat(t)

	conv := conversations.CreateConversation("")
	responder := assistant.New(assistant.WithDelay(time.Millisecond))

	msg := replyCmd(responder, conv.ID, "ping")()
	reply, ok := msg.(ReplyMsg)
	if !ok {
		t.Fatalf("replyCmd returned %T, want ReplyMsg", msg)
	}
	if reply.Err != nil {
		t.Fatalf("reply error: %v", reply.Err)
	}
	if reply.Message.Role != model.RoleAssistant {
		t.Errorf("reply role = %q, want assistant", reply.Message.Role)
	}

	m, _ = m.handleReply(reply)
	if m.waiting {
		t.Error("waiting should clear after reply")
	}
	if got := conversations.Get(conv.ID).MessageCount(); got != 1 {
		t.Errorf("MessageCount() = %d, want 1", got)
	}
}

func TestReplyDroppedWhenConversationDeleted(t *testing.T) {
	m, conversations, _ := newTestChat(t)

	conv := conversations.CreateConversation("")
	responder := assistant.New(assistant.WithDelay(time.Millisecond))
	msg := replyCmd(responder, conv.ID, "ping")()

	conversations.DeleteConversation(conv.ID)

	m, _ = m.handleReply(msg.(ReplyMsg))
	if m.statusMsg != "" {
		t.Errorf("dropped reply should not surface an error, got %q", m.statusMsg)
	}
	if conversations.Len() != 0 {
		t.Errorf("Len() = %d, want 0", conversations.Len())
	}
}

// =============================================================================
// SELECTION CYCLING TESTS
// =============================================================================

func TestCycleSelection(t *testing.T) {
	m, conversations, _ := newTestChat(t)

	a := conversations.CreateConversation("A")
	b := conversations.CreateConversation("B")
	c := conversations.CreateConversation("C")

	// Creation prepends, so the order is C, B, A and C is selected.
	m.cycleSelection(1)
	if got := conversations.CurrentConversation(); got == nil || got.ID != b.ID {
		t.Errorf("after forward cycle, selection should be B")
	}

	m.cycleSelection(-1)
	if got := conversations.CurrentConversation(); got == nil || got.ID != c.ID {
		t.Errorf("after backward cycle, selection should be C")
	}

	m.cycleSelection(-1)
	if got := conversations.CurrentConversation(); got == nil || got.ID != a.ID {
		t.Errorf("backward cycle should wrap to A")
	}
}

// =============================================================================
// CONFIG RELOAD TESTS
// =============================================================================

// TestConfigReloadAppliesUISettings covers the live-reload path: the watcher
// delivers a whole new config through the update loop, and the chat view
// swaps it in rather than anyone mutating the old one in place.
func TestConfigReloadAppliesUISettings(t *testing.T) {
	m, _, _ := newTestChat(t)
	old := m.cfg

	reloaded := config.Default()
	reloaded.UI.SidebarWidth = 24
	reloaded.UI.Markdown = false

	m = m.applyConfig(reloaded)

	if m.cfg != reloaded {
		t.Fatal("applyConfig should swap in the reloaded config")
	}
	if m.cfg == old {
		t.Fatal("old config must no longer be read")
	}
	if got := m.sidebarWidth(); got != 24 {
		t.Errorf("sidebarWidth() = %d, want 24", got)
	}
	if m.cfg.UI.Markdown {
		t.Error("markdown setting should follow the reloaded config")
	}
}

// =============================================================================
// PROFILE EDIT TESTS
// =============================================================================

func TestProfileEditUpdatesDisplayName(t *testing.T) {
	m, _, sessions := newTestChat(t)

	if _, err := sessions.Signup("lerato@example.com", "Lerato", "pw"); err != nil {
		t.Fatalf("Signup() error: %v", err)
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlP})
	if !m.profileMode {
		t.Fatal("ctrl+p should enter profile mode")
	}

	m.input.SetValue("Lerato K")
	m, _ = m.handleProfileKey(tea.KeyMsg{Type: tea.KeyEnter})

	if m.profileMode {
		t.Error("submit should leave profile mode")
	}
	if got := sessions.CurrentUser().Name; got != "Lerato K" {
		t.Errorf("name = %q, want %q", got, "Lerato K")
	}
}

func TestProfileEditCancelKeepsName(t *testing.T) {
	m, _, sessions := newTestChat(t)

	if _, err := sessions.Signup("lerato@example.com", "Lerato", "pw"); err != nil {
		t.Fatalf("Signup() error: %v", err)
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlP})
	m.input.SetValue("ignored")
	m, _ = m.handleProfileKey(tea.KeyMsg{Type: tea.KeyEsc})

	if m.profileMode {
		t.Error("esc should leave profile mode")
	}
	if got := sessions.CurrentUser().Name; got != "Lerato" {
		t.Errorf("name = %q, want %q", got, "Lerato")
	}
}

// =============================================================================
// AUTH FORM TESTS
// =============================================================================

func TestAuthLoginValidation(t *testing.T) {
	backend, err := storage.Open("json", t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { backend.Close() })

	sessions := session.New(backend, session.WithLogger(discard))
	t.Cleanup(func() { sessions.Close() })

	m := newAuth(styles.NewTheme(), sessions)

	m, cmd := m.submit()
	if m.errMsg == "" {
		t.Error("empty login should set an inline validation message")
	}
	if cmd != nil {
		t.Error("failed login should not emit AuthSuccessMsg")
	}
	if sessions.IsAuthenticated() {
		t.Error("failed login should not authenticate")
	}

	m.inputs[fieldEmail].SetValue("thabo@example.com")
	m.inputs[fieldPassword].SetValue("secret")

	m, cmd = m.submit()
	if m.errMsg != "" {
		t.Errorf("valid login left error %q", m.errMsg)
	}
	if cmd == nil {
		t.Fatal("valid login should emit AuthSuccessMsg")
	}
	if _, ok := cmd().(AuthSuccessMsg); !ok {
		t.Error("login command should deliver AuthSuccessMsg")
	}
	if !sessions.IsAuthenticated() {
		t.Error("login should authenticate")
	}
	if got := sessions.CurrentUser().Name; got != "thabo" {
		t.Errorf("derived name = %q, want %q", got, "thabo")
	}
}

func TestAuthSignupUsesSuppliedName(t *testing.T) {
	backend, err := storage.Open("json", t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { backend.Close() })

	sessions := session.New(backend, session.WithLogger(discard))
	t.Cleanup(func() { sessions.Close() })

	m := newAuth(styles.NewTheme(), sessions)
	m = m.toggleMode()
	if m.mode != modeSignup {
		t.Fatal("toggleMode should switch to signup")
	}

	m.inputs[fieldEmail].SetValue("naledi@example.com")
	m.inputs[fieldName].SetValue("Naledi M")
	m.inputs[fieldPassword].SetValue("secret")
	m.inputs[fieldConfirm].SetValue("secret")

	m, cmd := m.submit()
	if cmd == nil {
		t.Fatalf("valid signup should succeed, got error %q", m.errMsg)
	}
	if got := sessions.CurrentUser().Name; got != "Naledi M" {
		t.Errorf("name = %q, want %q", got, "Naledi M")
	}
}

func TestAuthSignupPasswordMismatch(t *testing.T) {
	backend, err := storage.Open("json", t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { backend.Close() })

	sessions := session.New(backend, session.WithLogger(discard))
	t.Cleanup(func() { sessions.Close() })

	m := newAuth(styles.NewTheme(), sessions)
	m = m.toggleMode()

	m.inputs[fieldEmail].SetValue("naledi@example.com")
	m.inputs[fieldName].SetValue("Naledi")
	m.inputs[fieldPassword].SetValue("secret")
	m.inputs[fieldConfirm].SetValue("secreT")

	m, cmd := m.submit()
	if cmd != nil {
		t.Fatal("mismatched passwords should not sign up")
	}
	if m.errMsg == "" {
		t.Error("mismatch should surface an inline validation message")
	}
	if sessions.IsAuthenticated() {
		t.Error("mismatch must not establish an identity")
	}
}
