// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the durable key-value substrate for mzansi.
//
// The substrate holds exactly two independent, string-keyed, JSON-encoded
// records: "user" (the active identity, or absent) and "conversations" (the
// ordered conversation set with nested messages). Rehydration at startup is
// the only read; after that, state flows one way through write-through saves.
//
// # Key Types
//
//   - Backend: Minimal key-value interface over the substrate
//   - FileBackend: One JSON file per record with atomic writes (default)
//   - SQLiteBackend: Single-file SQLite record table
//
// # Usage
//
// Open a backend and round-trip the conversation record:
//
//	b, err := storage.Open("json", dataDir)
//	err = storage.SaveConversations(b, convs)
//	convs, err = storage.LoadConversations(b)
//
// A record that exists but cannot be decoded is reported as a
// *CorruptRecordError; callers log it and start from an empty state rather
// than crashing or trusting partial data.
package storage
