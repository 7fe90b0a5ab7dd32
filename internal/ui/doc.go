// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package ui provides the full-screen terminal interface for mzansi, built on
Bubble Tea.

The root App model owns two views and switches between them based on the
session store:

  - The auth form (auth.go) collects credentials for login or signup and
    renders validation failures inline.
  - The chat view (chat.go) shows the conversation sidebar, the message
    transcript, and the input line.

State lives in the session and conversation stores, not in the models. Views
re-read the stores on every change: mutations triggered by key presses call
store methods directly, and changes made outside the update loop arrive as
StoreChangedMsg via Program.Send.

Assistant replies are deferred. Sending a message appends it to the store
immediately and schedules a command that generates the reply off the update
loop; the reply arrives later as a ReplyMsg tagged with its conversation id,
and is dropped if that conversation was deleted while the reply was in
flight.

Usage:

	app := ui.NewApp(cfg, sessions, conversations, responder)
	p := tea.NewProgram(app, tea.WithAltScreen())
	unsub := conversations.Subscribe(func() { p.Send(ui.StoreChangedMsg{}) })
	defer unsub()
	_, err := p.Run()
*/
package ui
