// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the line-oriented interface for mzansi.
//
// It is the --cli alternative to the full-screen TUI: a readline-style REPL
// with input history, slash commands for conversation and profile
// management, and the same stores and simulated assistant underneath.
//
// # Usage
//
//	err := cli.Run(cfg, sessions, conversations, responder)
//
// # Slash Commands
//
//   - /new [title]      Create a conversation and select it
//   - /list             List conversations, most recent first
//   - /select N         Select a conversation by list position
//   - /delete           Delete the selected conversation
//   - /rename TITLE     Rename the selected conversation
//   - /history          Show the selected conversation's messages
//   - /profile          Show or update the active profile
//   - /logout           Log out
//   - /help             Show available commands
//   - /quit             Exit
//
// Plain input is sent as a chat message; the assistant reply is generated
// with the simulated thinking delay and appended when it completes.
package cli
