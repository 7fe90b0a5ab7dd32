// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for identities, conversations
// and messages.
//
// This package defines the core domain types used throughout the application
// for representing the authenticated user and their chat history.
//
// # Key Types
//
//   - Identity: The authenticated user's profile record
//   - Conversation: Container for a titled, ordered thread of messages
//   - Message: Single message with role, content and timestamp
//   - Role: Message role enumeration (user, assistant)
//
// # Usage
//
// Create a new conversation and append a message:
//
//	now := time.Now()
//	conv := model.NewConversation("", now)
//	conv.AddMessage(model.NewMessage(model.RoleUser, "Hello!", now), now)
//
// Timestamps are passed in rather than read from the wall clock so that the
// ordering and UpdatedAt invariants are deterministically testable.
package model
