// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the terminal interface for mzansi.
//
// This file contains the chat view: the conversation sidebar, the message
// viewport, the input line, and the deferred assistant reply flow.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/mzansigpt/mzansi-tui/internal/assistant"
	"github.com/mzansigpt/mzansi-tui/internal/config"
	"github.com/mzansigpt/mzansi-tui/internal/model"
	"github.com/mzansigpt/mzansi-tui/internal/session"
	"github.com/mzansigpt/mzansi-tui/internal/store"
	"github.com/mzansigpt/mzansi-tui/internal/ui/styles"
	"github.com/mzansigpt/mzansi-tui/internal/util"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// chatModel is the Bubble Tea model for the authenticated chat view.
type chatModel struct {
	theme *styles.Theme
	cfg   *config.Config

	sessions      *session.Store
	conversations *store.Store
	responder     *assistant.Responder

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	keyMap KeyMap

	width  int
	height int

	// waiting is true while an assistant reply is in flight.
	waiting bool

	// renameMode repurposes the input line to edit the current title;
	// profileMode repurposes it to edit the display name.
	renameMode  bool
	profileMode bool

	showHelp  bool
	statusMsg string

	markdown *glamour.TermRenderer
}

// newChat creates the chat view bound to the given stores.
func newChat(theme *styles.Theme, cfg *config.Config, sessions *session.Store, conversations *store.Store, responder *assistant.Responder) chatModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	sp.Style = theme.Spinner

	m := chatModel{
		theme:         theme,
		cfg:           cfg,
		sessions:      sessions,
		conversations: conversations,
		responder:     responder,
		viewport:      vp,
		input:         ti,
		spinner:       sp,
		keyMap:        DefaultKeyMap(),
	}
	m.markdown = newMarkdownRenderer(80)
	m.refreshViewport()
	return m
}

// newMarkdownRenderer builds a glamour renderer for the given wrap width.
// Returns nil if initialization fails; callers fall back to plain text.
func newMarkdownRenderer(wrap int) *glamour.TermRenderer {
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}
	return r
}

// Init starts the cursor blink.
func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

// =============================================================================
// UPDATE
// =============================================================================

func (m chatModel) Update(msg tea.Msg) (chatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StoreChangedMsg:
		m.refreshViewport()
		return m, nil

	case ReplyMsg:
		return m.handleReply(msg)

	case spinner.TickMsg:
		if m.waiting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// applyConfig swaps in a reloaded configuration and lays the view out
// again, since sidebar width and markdown rendering may have changed.
func (m chatModel) applyConfig(cfg *config.Config) chatModel {
	m.cfg = cfg
	if m.width > 0 && m.height > 0 {
		m, _ = m.handleResize(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		return m
	}
	m.refreshViewport()
	return m
}

func (m chatModel) handleResize(msg tea.WindowSizeMsg) (chatModel, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	// header + input area + status bar
	const reservedHeight = 5
	viewportHeight := m.height - reservedHeight
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	contentWidth := m.width - m.sidebarWidth() - 2
	if contentWidth < 20 {
		contentWidth = 20
	}
	m.viewport.Width = contentWidth
	m.viewport.Height = viewportHeight

	inputWidth := m.width - 8
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	m.markdown = newMarkdownRenderer(contentWidth - 4)
	m.refreshViewport()
	return m, nil
}

func (m chatModel) handleKey(msg tea.KeyMsg) (chatModel, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.renameMode {
		return m.handleRenameKey(msg)
	}
	if m.profileMode {
		return m.handleProfileKey(msg)
	}

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.NewConv):
		m.conversations.CreateConversation("")
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keyMap.DelConv):
		if conv := m.conversations.CurrentConversation(); conv != nil {
			m.conversations.DeleteConversation(conv.ID)
		}
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keyMap.Rename):
		conv := m.conversations.CurrentConversation()
		if conv == nil {
			return m, nil
		}
		m.renameMode = true
		m.input.Reset()
		m.input.Prompt = "Rename: "
		m.input.Placeholder = conv.Title
		return m, textinput.Blink

	case key.Matches(msg, m.keyMap.NextConv):
		m.cycleSelection(1)
		return m, nil

	case key.Matches(msg, m.keyMap.PrevConv):
		m.cycleSelection(-1)
		return m, nil

	case key.Matches(msg, m.keyMap.Profile):
		user := m.sessions.CurrentUser()
		if user == nil {
			return m, nil
		}
		m.profileMode = true
		m.input.Reset()
		m.input.Prompt = "Name: "
		m.input.Placeholder = user.DisplayName()
		return m, textinput.Blink

	case key.Matches(msg, m.keyMap.Logout):
		m.sessions.Logout()
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keyMap.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		return m.submitInput()

	case key.Matches(msg, m.keyMap.Help):
		if m.input.Value() == "" {
			m.showHelp = true
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) handleRenameKey(msg tea.KeyMsg) (chatModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Cancel):
		return m.exitEditMode(), nil

	case key.Matches(msg, m.keyMap.Submit):
		title := strings.TrimSpace(m.input.Value())
		if conv := m.conversations.CurrentConversation(); conv != nil && title != "" {
			m.conversations.UpdateConversationTitle(conv.ID, title)
		}
		return m.exitEditMode(), nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) handleProfileKey(msg tea.KeyMsg) (chatModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Cancel):
		return m.exitEditMode(), nil

	case key.Matches(msg, m.keyMap.Submit):
		if name := strings.TrimSpace(m.input.Value()); name != "" {
			m.sessions.UpdateProfile(session.ProfileUpdate{Name: name})
		}
		return m.exitEditMode(), nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) exitEditMode() chatModel {
	m.renameMode = false
	m.profileMode = false
	m.input.Reset()
	m.input.Prompt = "> "
	m.input.Placeholder = "Type a message..."
	m.refreshViewport()
	return m
}

// cycleSelection moves the selection forward or backward through the set.
func (m *chatModel) cycleSelection(delta int) {
	convs := m.conversations.Conversations()
	if len(convs) == 0 {
		return
	}

	current := m.conversations.CurrentConversation()
	idx := 0
	if current != nil {
		for i, conv := range convs {
			if conv.ID == current.ID {
				idx = (i + delta + len(convs)) % len(convs)
				break
			}
		}
	}
	m.conversations.SelectConversation(convs[idx].ID)
	m.refreshViewport()
	m.viewport.GotoBottom()
}

// =============================================================================
// INPUT SUBMISSION
// =============================================================================

// submitInput sends the typed message and schedules the assistant reply.
// With no active conversation, one is created implicitly and the message
// lands in it, not in whatever was selected before.
func (m chatModel) submitInput() (chatModel, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.Reset()

	conv := m.conversations.CurrentConversation()
	if conv == nil {
		conv = m.conversations.CreateConversation("")
	}
	convID := conv.ID

	if err := m.conversations.AddMessage(convID, model.NewMessage(model.RoleUser, text, time.Now())); err != nil {
		m.statusMsg = err.Error()
		return m, nil
	}

	m.waiting = true
	m.statusMsg = ""
	m.refreshViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(m.spinner.Tick, replyCmd(m.responder, convID, text))
}

// replyCmd generates the assistant reply off the update loop and delivers it
// as a ReplyMsg tagged with the target conversation.
func replyCmd(r *assistant.Responder, conversationID, userContent string) tea.Cmd {
	return func() tea.Msg {
		reply, err := r.Reply(context.Background(), userContent)
		return ReplyMsg{ConversationID: conversationID, Message: reply, Err: err}
	}
}

// handleReply appends a completed reply to its conversation. A reply whose
// conversation was deleted while it was in flight is dropped.
func (m chatModel) handleReply(msg ReplyMsg) (chatModel, tea.Cmd) {
	m.waiting = false

	if msg.Err != nil {
		m.statusMsg = "reply failed: " + msg.Err.Error()
		return m, nil
	}

	err := m.conversations.AddMessage(msg.ConversationID, msg.Message)
	if err != nil && !errors.Is(err, store.ErrConversationNotFound) {
		m.statusMsg = err.Error()
	}

	m.refreshViewport()
	m.viewport.GotoBottom()
	m.input.Focus()
	return m, textinput.Blink
}

// =============================================================================
// RENDERING
// =============================================================================

func (m chatModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	messages := m.viewport.View()
	input := m.renderInput()
	status := m.renderStatusBar()

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, messages)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		body,
		input,
		status,
	)
}

func (m chatModel) sidebarWidth() int {
	w := m.cfg.UI.SidebarWidth
	if w <= 0 {
		w = 30
	}
	if m.width > 0 && w > m.width/3 {
		w = m.width / 3
	}
	return w
}

func (m chatModel) renderHeader() string {
	brand := m.theme.HeaderBrand.Render("Mzansi GPT")
	title := ""
	if conv := m.conversations.CurrentConversation(); conv != nil {
		title = m.theme.HeaderSubtitle.Render("  " + util.TruncateWidth(conv.Title, m.width/2))
	}
	return m.theme.Header.Width(m.width).Render(brand + title)
}

func (m chatModel) renderSidebar() string {
	width := m.sidebarWidth()
	height := m.viewport.Height

	var b strings.Builder
	b.WriteString(m.theme.SidebarTitle.Render("Conversations"))
	b.WriteString("\n\n")

	convs := m.conversations.Conversations()
	current := m.conversations.CurrentConversation()
	for _, conv := range convs {
		label := util.TruncateWidth(conv.Title, width-4)
		if current != nil && conv.ID == current.ID {
			b.WriteString(m.theme.SidebarItemSelected.Render(label))
		} else {
			b.WriteString(m.theme.SidebarItem.Render(label))
		}
		b.WriteString("\n")
		if preview := conv.Preview(); preview != "" {
			b.WriteString(m.theme.SidebarMeta.Render("  " + util.TruncateWidth(preview, width-4)))
			b.WriteString("\n")
		}
	}
	if len(convs) == 0 {
		b.WriteString(m.theme.SidebarMeta.Render("No conversations yet"))
	}

	return m.theme.Sidebar.
		Width(width).
		Height(height).
		MaxHeight(height).
		Render(b.String())
}

// refreshViewport re-renders the message transcript into the viewport.
func (m *chatModel) refreshViewport() {
	conv := m.conversations.CurrentConversation()
	if conv == nil || conv.IsEmpty() {
		m.viewport.SetContent(m.renderWelcome())
		return
	}

	var b strings.Builder
	for _, msg := range conv.Messages {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n\n")
	}
	if m.waiting {
		b.WriteString(m.spinner.View())
		b.WriteString(m.theme.ThinkingText.Render(" Thinking..."))
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
}

func (m chatModel) renderMessage(msg *model.Message) string {
	ts := m.theme.MessageTime.Render(msg.Timestamp.Format("15:04"))

	switch msg.Role {
	case model.RoleUser:
		name := msg.Role.DisplayName()
		if user := m.sessions.CurrentUser(); user != nil {
			name = user.DisplayName()
		}
		label := m.theme.UserLabel.Render(name) + " " + ts
		return label + "\n" + m.theme.UserBubble.Render(msg.Content)

	case model.RoleAssistant:
		label := m.theme.AssistantLabel.Render(msg.Role.DisplayName()) + " " + ts
		content := msg.Content
		if m.cfg.UI.Markdown && m.markdown != nil {
			if rendered, err := m.markdown.Render(content); err == nil {
				content = strings.TrimRight(rendered, "\n")
			}
		}
		return label + "\n" + m.theme.AssistantBubble.Render(content)

	default:
		return ts + " " + msg.Content
	}
}

// renderWelcome shows the empty-conversation starter screen with suggested
// prompts.
func (m chatModel) renderWelcome() string {
	greeting := "How can I help you today?"
	if user := m.sessions.CurrentUser(); user != nil {
		greeting = fmt.Sprintf("Hello %s, how can I help you today?", user.DisplayName())
	}

	var cards []string
	for _, p := range assistant.SuggestedPrompts {
		card := m.theme.PromptIcon.Render(p.Icon) + " " +
			m.theme.PromptTitle.Render(p.Title) + "\n" +
			m.theme.PromptDesc.Render(p.Description)
		cards = append(cards, m.theme.PromptCard.Render(card))
	}

	box := m.theme.WelcomeTitle.Render("Mzansi GPT") + "\n\n" +
		m.theme.WelcomeInfo.Render(greeting)

	return lipgloss.JoinVertical(
		lipgloss.Center,
		m.theme.WelcomeBox.Render(box),
		"",
		lipgloss.JoinVertical(lipgloss.Left, cards...),
	)
}

func (m chatModel) renderInput() string {
	return m.theme.InputContainer.Width(m.width).Render(m.input.View())
}

func (m chatModel) renderStatusBar() string {
	var left string
	if user := m.sessions.CurrentUser(); user != nil {
		left = m.theme.StatusUser.Render(user.DisplayName())
	}
	if m.statusMsg != "" {
		left += " " + m.theme.ErrorText.Render(m.statusMsg)
	}

	var hints []string
	for _, b := range m.keyMap.ShortHelp() {
		h := b.Help()
		hints = append(hints,
			m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	right := strings.Join(hints, "  ")

	gap := m.width - util.StringWidth(left) - util.StringWidth(right) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.StatusBar.Width(m.width).Render(left + util.PadRight("", gap) + right)
}

func (m chatModel) renderHelp() string {
	var b strings.Builder
	b.WriteString(m.theme.HeaderTitle.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for _, group := range m.keyMap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString("  ")
			b.WriteString(m.theme.ShortcutKey.Render(util.PadRight(h.Key, 12)))
			b.WriteString(m.theme.ShortcutDesc.Render(h.Desc))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(m.theme.HelpText.Render("Press any key to close"))
	return m.theme.Container.Render(b.String())
}
