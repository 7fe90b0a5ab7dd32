// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the conversation set and selection state.
//
// Store is the primary site of business logic in the client: conversation
// creation, selection, deletion, message append and title rename all live
// here. The set is kept in creation order (most recent first, prepend on
// create, never re-sorted) so that message activity does not shuffle the
// sidebar under the user.
//
// # Persistence
//
// Every mutation marks the store dirty; a background write loop reacts by
// serializing the full set to the durable substrate. Same-turn mutations
// coalesce into one write. The store rehydrates once at construction and
// recovers from a malformed record by logging and starting empty.
//
// # Consumers
//
// UI consumers read via Conversations/CurrentConversation and register with
// Subscribe to learn about changes. There is no ambient singleton: the store
// is constructed once in main and passed by reference.
package store
