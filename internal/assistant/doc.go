// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assistant provides the simulated reply generator.
//
// Responder stands in for a real model: given the user's message it returns
// a canned reply after a bounded delay, on the caller's goroutine, honoring
// context cancellation. The deliberate delay keeps the rest of the client
// honest about deferred completions — in particular the case where the
// target conversation is deleted while a reply is in flight.
package assistant
