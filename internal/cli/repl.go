// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// repl.go - Interactive REPL for the mzansi CLI.
//
// Provides a readline-style loop with input history over the same stores the
// TUI uses. Plain input becomes a chat message; slash commands manage
// conversations and the profile.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"

	"github.com/mzansigpt/mzansi-tui/internal/assistant"
	"github.com/mzansigpt/mzansi-tui/internal/config"
	"github.com/mzansigpt/mzansi-tui/internal/model"
	"github.com/mzansigpt/mzansi-tui/internal/session"
	"github.com/mzansigpt/mzansi-tui/internal/store"
	"github.com/mzansigpt/mzansi-tui/internal/util"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer renders assistant replies for terminal display.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fallback to plain text if renderer initialization fails
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails or renderer is unavailable.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for the REPL.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	historyFile := filepath.Join(configDir, "chat_history")

	c := &ChatCLI{
		line:        line,
		historyFile: historyFile,
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
// Supports history navigation with arrow keys.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists input history to file with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// Session holds the state for an interactive REPL session.
type Session struct {
	Config        *config.Config
	Sessions      *session.Store
	Conversations *store.Store
	Responder     *assistant.Responder

	StartTime time.Time
	SentCount int

	// CancelFunc aborts the in-flight assistant reply.
	CancelFunc context.CancelFunc

	InputCLI *ChatCLI
}

// NewSession creates a new REPL session over the given stores.
func NewSession(cfg *config.Config, sessions *session.Store, conversations *store.Store, responder *assistant.Responder) *Session {
	return &Session{
		Config:        cfg,
		Sessions:      sessions,
		Conversations: conversations,
		Responder:     responder,
		StartTime:     time.Now(),
		InputCLI:      NewChatCLI(),
	}
}

// =============================================================================
// REPL LOOP
// =============================================================================

// Run starts the interactive REPL and blocks until the user exits.
func Run(cfg *config.Config, sessions *session.Store, conversations *store.Store, responder *assistant.Responder) error {
	s := NewSession(cfg, sessions, conversations, responder)
	defer s.InputCLI.Close()

	// First Ctrl+C cancels the in-flight reply rather than the process.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		for range sigChan {
			if s.CancelFunc != nil {
				s.CancelFunc()
				s.CancelFunc = nil
				fmt.Fprintln(os.Stderr, "\n"+warningStyle.Render("[Cancelled]"))
			}
		}
	}()

	if err := ensureAuthenticated(s); err != nil {
		return err
	}

	printWelcome(s)

	for {
		if !s.Sessions.IsAuthenticated() {
			if err := ensureAuthenticated(s); err != nil {
				return err
			}
		}

		input, err := s.InputCLI.ReadInput(promptStyle.Render("mzansi> "))
		if err != nil {
			// Ctrl+C aborts the prompt, Ctrl+D is EOF; both exit gracefully.
			fmt.Println()
			printExitSummary(s)
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			shouldContinue, err := handleSlashCommand(input, s)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			}
			if !shouldContinue {
				printExitSummary(s)
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			printExitSummary(s)
			return nil
		}

		if err := processMessage(s, input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		}
	}
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

// ensureAuthenticated prompts for login or signup until an identity is
// established.
func ensureAuthenticated(s *Session) error {
	if s.Sessions.IsAuthenticated() {
		return nil
	}

	fmt.Println()
	fmt.Println(welcomeStyle.Render("Welcome to Mzansi GPT"))
	fmt.Println(infoStyle.Render("Log in or create an account to continue."))
	fmt.Println()

	for {
		choice, err := s.InputCLI.ReadInput(promptStyle.Render("[l]ogin / [s]ignup> "))
		if err != nil {
			return err
		}
		choice = strings.ToLower(strings.TrimSpace(choice))

		signup := false
		switch choice {
		case "l", "login", "":
		case "s", "signup":
			signup = true
		default:
			fmt.Println(warningStyle.Render("Please answer l or s."))
			continue
		}

		email, err := s.InputCLI.ReadInput("Email: ")
		if err != nil {
			return err
		}
		email = strings.TrimSpace(email)

		var name string
		if signup {
			name, err = s.InputCLI.ReadInput("Name: ")
			if err != nil {
				return err
			}
			name = strings.TrimSpace(name)
		}

		var password string
		if IsTTY() {
			fmt.Print("Password: ")
			password, err = readPassword()
		} else {
			password, err = s.InputCLI.ReadInput("Password: ")
		}
		if err != nil {
			return err
		}

		var identity *model.Identity
		if signup {
			var confirm string
			if IsTTY() {
				fmt.Print("Confirm password: ")
				confirm, err = readPassword()
			} else {
				confirm, err = s.InputCLI.ReadInput("Confirm password: ")
			}
			if err != nil {
				return err
			}
			if confirm != password {
				err = &session.ValidationError{Message: "passwords do not match"}
			} else {
				identity, err = s.Sessions.Signup(email, name, password)
			}
		} else {
			identity, err = s.Sessions.Login(email, password)
		}
		if err != nil {
			var verr *session.ValidationError
			if errors.As(err, &verr) {
				fmt.Println(errorStyle.Render(verr.Message))
				continue
			}
			return err
		}

		fmt.Printf("%s Logged in as %s\n\n",
			commandStyle.Render("[OK]"),
			commandStyle.Render(identity.DisplayName()))
		return nil
	}
}

// =============================================================================
// MESSAGE PROCESSING
// =============================================================================

// processMessage sends a message and prints the assistant reply. With no
// active conversation, one is created implicitly and the message lands in it.
func processMessage(s *Session, input string) error {
	conv := s.Conversations.CurrentConversation()
	if conv == nil {
		conv = s.Conversations.CreateConversation("")
	}
	convID := conv.ID

	if err := s.Conversations.AddMessage(convID, model.NewMessage(model.RoleUser, input, time.Now())); err != nil {
		return err
	}
	s.SentCount++

	ctx, cancel := context.WithCancel(context.Background())
	s.CancelFunc = cancel
	defer func() {
		s.CancelFunc = nil
		cancel()
	}()

	start := time.Now()
	reply, err := s.Responder.Reply(ctx, input)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("reply generation failed: %w", err)
	}

	// The conversation may have been deleted while the reply was pending.
	if err := s.Conversations.AddMessage(convID, reply); err != nil {
		if errors.Is(err, store.ErrConversationNotFound) {
			fmt.Println(infoStyle.Render("[Conversation deleted; reply discarded]"))
			return nil
		}
		return err
	}

	fmt.Println()
	fmt.Println(assistantStyle.Render("Assistant"))
	if IsStdoutTTY() {
		fmt.Print(renderMarkdown(reply.Content))
	} else {
		fmt.Println(reply.Content)
	}
	fmt.Println()

	fmt.Fprintf(os.Stderr, "%s %s\n",
		infoStyle.Render("[Stats]"),
		time.Since(start).Round(time.Millisecond))

	return nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes slash commands.
// Returns (shouldContinue, error) where shouldContinue=false means exit.
func handleSlashCommand(cmd string, s *Session) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true, nil
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "/help", "/h", "/?", "/":
		printHelp()
		return true, nil

	case "/new", "/n":
		conv := s.Conversations.CreateConversation(strings.Join(args, " "))
		fmt.Printf("%s Created %s\n",
			commandStyle.Render("[OK]"),
			commandStyle.Render(conv.Title))
		return true, nil

	case "/list", "/l":
		printConversations(s)
		return true, nil

	case "/select":
		return handleSelectCommand(s, args)

	case "/delete", "/d":
		conv := s.Conversations.CurrentConversation()
		if conv == nil {
			return true, fmt.Errorf("no conversation selected")
		}
		s.Conversations.DeleteConversation(conv.ID)
		fmt.Printf("%s Deleted %s\n",
			commandStyle.Render("[OK]"),
			conv.Title)
		return true, nil

	case "/rename", "/r":
		if len(args) == 0 {
			return true, fmt.Errorf("usage: /rename NEW TITLE")
		}
		conv := s.Conversations.CurrentConversation()
		if conv == nil {
			return true, fmt.Errorf("no conversation selected")
		}
		s.Conversations.UpdateConversationTitle(conv.ID, strings.Join(args, " "))
		fmt.Printf("%s Renamed to %s\n",
			commandStyle.Render("[OK]"),
			commandStyle.Render(strings.Join(args, " ")))
		return true, nil

	case "/history":
		printHistory(s)
		return true, nil

	case "/profile", "/p":
		return handleProfileCommand(s, args)

	case "/logout":
		s.Sessions.Logout()
		fmt.Println(commandStyle.Render("[Logged out]"))
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

// handleSelectCommand selects a conversation by its /list position.
func handleSelectCommand(s *Session, args []string) (bool, error) {
	if len(args) == 0 {
		return true, fmt.Errorf("usage: /select N (see /list)")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return true, fmt.Errorf("not a number: %s", args[0])
	}

	convs := s.Conversations.Conversations()
	if n < 1 || n > len(convs) {
		return true, fmt.Errorf("no conversation %d (have %d)", n, len(convs))
	}

	conv := convs[n-1]
	s.Conversations.SelectConversation(conv.ID)
	fmt.Printf("%s Selected %s\n",
		commandStyle.Render("[OK]"),
		commandStyle.Render(conv.Title))
	return true, nil
}

// handleProfileCommand shows or updates the active profile.
func handleProfileCommand(s *Session, args []string) (bool, error) {
	user := s.Sessions.CurrentUser()
	if user == nil {
		return true, fmt.Errorf("not logged in")
	}

	if len(args) == 0 {
		fmt.Println()
		fmt.Println(headerStyle.Render("Profile"))
		fmt.Printf("  %s %s\n", infoStyle.Render("Name:"), user.DisplayName())
		fmt.Printf("  %s %s\n", infoStyle.Render("Email:"), user.Email)
		fmt.Printf("  %s %s\n", infoStyle.Render("Avatar:"), user.Avatar)
		fmt.Println()
		return true, nil
	}

	if len(args) < 2 {
		return true, fmt.Errorf("usage: /profile [name|email] VALUE")
	}

	value := strings.Join(args[1:], " ")
	switch strings.ToLower(args[0]) {
	case "name":
		s.Sessions.UpdateProfile(session.ProfileUpdate{Name: value})
	case "email":
		s.Sessions.UpdateProfile(session.ProfileUpdate{Email: value})
	default:
		return true, fmt.Errorf("unknown profile field: %s", args[0])
	}

	fmt.Println(commandStyle.Render("[OK] Profile updated"))
	return true, nil
}

// =============================================================================
// DISPLAY FUNCTIONS
// =============================================================================

// printWelcome prints the welcome banner.
func printWelcome(s *Session) {
	fmt.Println()
	fmt.Println(welcomeStyle.Render("mzansi interactive chat"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 30)))

	if user := s.Sessions.CurrentUser(); user != nil {
		fmt.Printf("%s %s\n",
			infoStyle.Render("User:"),
			commandStyle.Render(user.DisplayName()))
	}
	if conv := s.Conversations.CurrentConversation(); conv != nil {
		fmt.Printf("%s %s\n",
			infoStyle.Render("Conversation:"),
			commandStyle.Render(conv.Title))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Type your message and press Enter. Commands: /help, /quit"))
	fmt.Println()
}

// printHelp prints available commands.
func printHelp() {
	fmt.Println()
	fmt.Println(headerStyle.Render("Available Commands"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/new [title]", "Create a conversation and select it"},
		{"/list", "List conversations"},
		{"/select N", "Select a conversation by position"},
		{"/delete", "Delete the selected conversation"},
		{"/rename TITLE", "Rename the selected conversation"},
		{"/history", "Show the selected conversation"},
		{"/profile", "Show or update your profile"},
		{"/logout", "Log out"},
		{"/help, /h", "Show this help"},
		{"/quit, /q", "Exit"},
	}

	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			commandStyle.Render(fmt.Sprintf("%-15s", c.cmd)),
			infoStyle.Render(c.desc))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Tip: Ctrl+C cancels a pending reply, Ctrl+D exits"))
	fmt.Println()
}

// printConversations lists the conversation set, most recent first.
func printConversations(s *Session) {
	convs := s.Conversations.Conversations()
	if len(convs) == 0 {
		fmt.Println(infoStyle.Render("[No conversations yet]"))
		return
	}

	current := s.Conversations.CurrentConversation()

	fmt.Println()
	fmt.Println(headerStyle.Render("Conversations"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	for i, conv := range convs {
		marker := " "
		if current != nil && conv.ID == current.ID {
			marker = commandStyle.Render("*")
		}
		line := fmt.Sprintf("%s %d. %s", marker, i+1, conv.Title)
		if preview := conv.Preview(); preview != "" {
			line += infoStyle.Render("  " + util.TruncateRunes(preview, 50))
		}
		fmt.Println(line)
	}
	fmt.Println()
}

// printHistory prints the selected conversation's messages.
func printHistory(s *Session) {
	conv := s.Conversations.CurrentConversation()
	if conv == nil || conv.IsEmpty() {
		fmt.Println(infoStyle.Render("[No messages yet]"))
		return
	}

	fmt.Println()
	fmt.Println(headerStyle.Render(conv.Title))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 25)))
	fmt.Println()

	for i, msg := range conv.Messages {
		role := msg.Role.DisplayName()
		switch msg.Role {
		case model.RoleUser:
			role = userStyle.Render(role)
		case model.RoleAssistant:
			role = assistantStyle.Render(role)
		}

		content := strings.ReplaceAll(util.TruncateRunes(msg.Content, 100), "\n", " ")
		fmt.Printf("  %d. %s: %s\n", i+1, role, content)
	}
	fmt.Println()
}

// printExitSummary prints the session summary on exit.
func printExitSummary(s *Session) {
	if s.SentCount == 0 {
		fmt.Println(infoStyle.Render("Goodbye!"))
		return
	}

	elapsed := time.Since(s.StartTime).Round(time.Second)

	fmt.Println()
	fmt.Println(headerStyle.Render("Session Summary"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 15)))
	fmt.Printf("  %s %d\n", infoStyle.Render("Messages sent:"), s.SentCount)
	fmt.Printf("  %s %d\n", infoStyle.Render("Conversations:"), s.Conversations.Len())
	fmt.Printf("  %s %s\n", infoStyle.Render("Duration:"), elapsed.String())
	fmt.Println()
	fmt.Println(infoStyle.Render("Goodbye!"))
}
