// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the terminal interface for mzansi.
//
// This file contains the root model. It owns the auth and chat views and
// switches between them based on whether an identity is established.
package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mzansigpt/mzansi-tui/internal/assistant"
	"github.com/mzansigpt/mzansi-tui/internal/config"
	"github.com/mzansigpt/mzansi-tui/internal/session"
	"github.com/mzansigpt/mzansi-tui/internal/store"
	"github.com/mzansigpt/mzansi-tui/internal/ui/styles"
)

// =============================================================================
// APP MODEL
// =============================================================================

// App is the root Bubble Tea model.
type App struct {
	theme    *styles.Theme
	sessions *session.Store

	auth authModel
	chat chatModel

	width  int
	height int
}

// NewApp creates the root model wired to the stores and the responder.
func NewApp(cfg *config.Config, sessions *session.Store, conversations *store.Store, responder *assistant.Responder) App {
	theme := styles.NewTheme()
	return App{
		theme:    theme,
		sessions: sessions,
		auth:     newAuth(theme, sessions),
		chat:     newChat(theme, cfg, sessions, conversations, responder),
	}
}

// Init initializes whichever view is active.
func (a App) Init() tea.Cmd {
	if a.sessions.IsAuthenticated() {
		return a.chat.Init()
	}
	return a.auth.Init()
}

// Update routes messages to the active view. Window sizes go to both so the
// inactive view is laid out correctly when it takes over.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		var authCmd, chatCmd tea.Cmd
		a.auth, authCmd = a.auth.Update(msg)
		a.chat, chatCmd = a.chat.Update(msg)
		return a, tea.Batch(authCmd, chatCmd)

	case AuthSuccessMsg:
		// Hand over to the chat view.
		a.chat.refreshViewport()
		return a, a.chat.Init()

	case StoreChangedMsg:
		var cmd tea.Cmd
		a.chat, cmd = a.chat.Update(msg)
		return a, cmd

	case ConfigChangedMsg:
		a.chat = a.chat.applyConfig(msg.Config)
		return a, nil

	case ReplyMsg:
		// Replies land in the store even if the user logged out meanwhile.
		var cmd tea.Cmd
		a.chat, cmd = a.chat.Update(msg)
		return a, cmd
	}

	if a.sessions.IsAuthenticated() {
		var cmd tea.Cmd
		a.chat, cmd = a.chat.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.auth, cmd = a.auth.Update(msg)
	return a, cmd
}

// View renders the active view.
func (a App) View() string {
	if a.sessions.IsAuthenticated() {
		return a.chat.View()
	}
	return a.auth.View()
}
