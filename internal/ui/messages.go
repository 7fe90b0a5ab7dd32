// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the terminal interface for mzansi.
//
// This file defines all Bubble Tea message types used by the interface.
// Messages are organized into the following categories:
//   - Store: external state-change notification from the stores
//   - Reply: deferred assistant reply delivery
//   - Auth: login/signup results
//
// All message types follow Bubble Tea conventions and are immutable.
package ui

import (
	"github.com/mzansigpt/mzansi-tui/internal/config"
	"github.com/mzansigpt/mzansi-tui/internal/model"
)

// =============================================================================
// STORE MESSAGES
// =============================================================================

// StoreChangedMsg signals that conversation or session state changed outside
// the Bubble Tea loop. Subscribers forward it via Program.Send so views
// re-read the stores on the next update.
type StoreChangedMsg struct{}

// ConfigChangedMsg delivers a freshly reloaded configuration. The config
// watcher runs on its own goroutine; sending the new config through the
// program and swapping it inside Update keeps all config reads on the Bubble
// Tea goroutine.
type ConfigChangedMsg struct {
	Config *config.Config
}

// =============================================================================
// REPLY MESSAGES
// =============================================================================

// ReplyMsg delivers a completed assistant reply. ConversationID names the
// conversation the reply was generated for; it may have been deleted while
// the reply was in flight, in which case the append is dropped.
type ReplyMsg struct {
	ConversationID string
	Message        *model.Message
	Err            error
}

// =============================================================================
// AUTH MESSAGES
// =============================================================================

// AuthSuccessMsg signals that login or signup established an identity.
type AuthSuccessMsg struct {
	Identity *model.Identity
}
