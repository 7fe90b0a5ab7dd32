// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the active identity and its durable record.
//
// The session store gates the rest of the application: an active Identity is
// what "authenticated" means, and without one only the auth surface is
// reachable. Login and signup are simulated — they validate that fields are
// present, then mint a fresh identity locally; no network is involved.
//
// The identity persists across restarts through the "user" record. At
// startup a malformed record is logged and discarded, failing open to the
// logged-out state.
package session
