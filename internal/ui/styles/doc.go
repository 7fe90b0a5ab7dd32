// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the mzansi TUI.

This package defines the color palette and themed Lip Gloss styles used
throughout the application. All colors use Lip Gloss AdaptiveColor for
automatic light/dark terminal detection.

# Color System (colors.go)

  - Purple - Primary accent for assistant messages and selections
  - Cyan - Brand color for prompts and user highlights
  - Emerald - Success states and the authenticated indicator
  - Amber - Warnings and the suggested-prompt icons
  - Rose - Errors and validation failures

Message bubbles use semantic color tokens:

	UserBubbleBg      - Background for user messages
	UserBubbleFg      - Text color for user messages
	AssistantBubbleBg - Background for assistant messages
	AssistantBubbleFg - Text color for assistant messages

# Theme System (theme.go)

The Theme struct provides runtime color adaptation:

	theme := styles.NewTheme()
	if theme.IsDark {
		// Dark terminal detected
	}
	if theme.HasTrueColor {
		// Terminal supports 16M colors
	}

Views render through the themed styles rather than constructing their own:

	header := theme.Header.Render("Mzansi GPT")
	bubble := theme.UserBubble.Render(msg.Content)
*/
package styles
