// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the terminal interface for mzansi.
//
// This file contains the login/signup form shown before an identity is
// established.
package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mzansigpt/mzansi-tui/internal/session"
	"github.com/mzansigpt/mzansi-tui/internal/ui/styles"
)

// =============================================================================
// AUTH MODES
// =============================================================================

type authMode int

const (
	modeLogin authMode = iota
	modeSignup
)

// Field indices in the inputs slice. The name and confirm-password fields
// only participate in signup mode.
const (
	fieldEmail = iota
	fieldName
	fieldPassword
	fieldConfirm
	fieldCount
)

// =============================================================================
// AUTH MODEL
// =============================================================================

// authModel is the Bubble Tea model for the login/signup form.
type authModel struct {
	theme    *styles.Theme
	sessions *session.Store

	mode   authMode
	inputs []textinput.Model
	focus  int

	// errMsg holds the inline validation message, cleared on mode switch.
	errMsg string

	width  int
	height int
}

// newAuth creates the auth form bound to the session store.
func newAuth(theme *styles.Theme, sessions *session.Store) authModel {
	inputs := make([]textinput.Model, fieldCount)

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = ""
	email.CharLimit = 254
	email.Focus()
	inputs[fieldEmail] = email

	name := textinput.New()
	name.Placeholder = "Your name"
	name.Prompt = ""
	name.CharLimit = 64
	inputs[fieldName] = name

	password := textinput.New()
	password.Placeholder = "Password"
	password.Prompt = ""
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	inputs[fieldPassword] = password

	confirm := textinput.New()
	confirm.Placeholder = "Confirm password"
	confirm.Prompt = ""
	confirm.CharLimit = 128
	confirm.EchoMode = textinput.EchoPassword
	confirm.EchoCharacter = '•'
	inputs[fieldConfirm] = confirm

	return authModel{
		theme:    theme,
		sessions: sessions,
		mode:     modeLogin,
		inputs:   inputs,
	}
}

// Init starts the cursor blink.
func (m authModel) Init() tea.Cmd {
	return textinput.Blink
}

// fields returns the active field indices for the current mode.
func (m authModel) fields() []int {
	if m.mode == modeSignup {
		return []int{fieldEmail, fieldName, fieldPassword, fieldConfirm}
	}
	return []int{fieldEmail, fieldPassword}
}

// =============================================================================
// UPDATE
// =============================================================================

func (m authModel) Update(msg tea.Msg) (authModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+q":
			return m, tea.Quit

		case "ctrl+t":
			return m.toggleMode(), nil

		case "tab", "down":
			return m.moveFocus(1)

		case "shift+tab", "up":
			return m.moveFocus(-1)

		case "enter":
			return m.submit()
		}
	}

	return m.updateInputs(msg)
}

// toggleMode switches between login and signup and resets the form state.
func (m authModel) toggleMode() authModel {
	if m.mode == modeLogin {
		m.mode = modeSignup
	} else {
		m.mode = modeLogin
	}
	m.errMsg = ""
	m.focus = 0
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.inputs[m.fields()[0]].Focus()
	return m
}

// moveFocus advances focus through the active fields.
func (m authModel) moveFocus(delta int) (authModel, tea.Cmd) {
	fields := m.fields()
	m.focus = (m.focus + delta + len(fields)) % len(fields)

	var cmd tea.Cmd
	for i, idx := range fields {
		if i == m.focus {
			cmd = m.inputs[idx].Focus()
		} else {
			m.inputs[idx].Blur()
		}
	}
	return m, cmd
}

// submit attempts login or signup with the entered fields. Validation
// failures are rendered inline; success is announced with AuthSuccessMsg.
func (m authModel) submit() (authModel, tea.Cmd) {
	email := strings.TrimSpace(m.inputs[fieldEmail].Value())
	name := strings.TrimSpace(m.inputs[fieldName].Value())
	password := m.inputs[fieldPassword].Value()

	var err error
	if m.mode == modeSignup {
		if password != m.inputs[fieldConfirm].Value() {
			err = &session.ValidationError{Message: "passwords do not match"}
		} else {
			_, err = m.sessions.Signup(email, name, password)
		}
	} else {
		_, err = m.sessions.Login(email, password)
	}
	if err != nil {
		m.errMsg = err.Error()
		return m, nil
	}

	m.errMsg = ""
	identity := m.sessions.CurrentUser()
	return m, func() tea.Msg {
		return AuthSuccessMsg{Identity: identity}
	}
}

func (m authModel) updateInputs(msg tea.Msg) (authModel, tea.Cmd) {
	var cmds []tea.Cmd
	for _, idx := range m.fields() {
		var cmd tea.Cmd
		m.inputs[idx], cmd = m.inputs[idx].Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// =============================================================================
// RENDERING
// =============================================================================

func (m authModel) View() string {
	title := "Log in to Mzansi GPT"
	action := "log in"
	switchHint := "Ctrl+T to create an account"
	if m.mode == modeSignup {
		title = "Create your Mzansi GPT account"
		action = "sign up"
		switchHint = "Ctrl+T to log in instead"
	}

	var b strings.Builder
	b.WriteString(m.theme.AuthTitle.Render(title))
	b.WriteString("\n\n")

	labels := map[int]string{
		fieldEmail:    "Email",
		fieldName:     "Name",
		fieldPassword: "Password",
		fieldConfirm:  "Confirm password",
	}
	for i, idx := range m.fields() {
		b.WriteString(m.theme.AuthLabel.Render(labels[idx]))
		b.WriteString("\n")
		field := m.theme.AuthFieldBlur
		if i == m.focus {
			field = m.theme.AuthFieldFocus
		}
		b.WriteString(field.Width(40).Render(m.inputs[idx].View()))
		b.WriteString("\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.ErrorText.Render(m.errMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.HelpText.Render("Enter to " + action + "  ·  " + switchHint))

	box := m.theme.AuthBox.Render(b.String())
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
