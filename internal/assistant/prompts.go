// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assistant provides the simulated reply generator.
package assistant

// Prompt is a suggested conversation starter shown on an empty chat.
type Prompt struct {
	Icon        string
	Title       string
	Description string
}

// SuggestedPrompts are the starters offered before the first message.
var SuggestedPrompts = []Prompt{
	{Icon: "⚡", Title: "Quick Analysis", Description: "Analyze data or text quickly"},
	{Icon: "💡", Title: "Creative Ideas", Description: "Generate creative solutions"},
	{Icon: "📖", Title: "Learn Something", Description: "Explain complex topics"},
	{Icon: "⚙", Title: "Technical Help", Description: "Get coding assistance"},
}
