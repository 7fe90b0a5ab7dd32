// mzansi - A terminal chat client with durable conversations.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mzansigpt/mzansi-tui/internal/assistant"
	"github.com/mzansigpt/mzansi-tui/internal/cli"
	"github.com/mzansigpt/mzansi-tui/internal/config"
	"github.com/mzansigpt/mzansi-tui/internal/session"
	"github.com/mzansigpt/mzansi-tui/internal/storage"
	"github.com/mzansigpt/mzansi-tui/internal/store"
	"github.com/mzansigpt/mzansi-tui/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// options holds the parsed command line.
type options struct {
	cli        bool
	version    bool
	help       bool
	configPath string
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		printUsage()
		os.Exit(2)
	}
	if opts.help {
		printUsage()
		return
	}
	if opts.version {
		fmt.Printf("mzansi %s (%s, %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseArgs(args []string) (options, error) {
	var opts options
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--cli":
			opts.cli = true
		case "--version", "-V":
			opts.version = true
		case "--help", "-h":
			opts.help = true
		case "--config", "-c":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("--config requires a path")
			}
			i++
			opts.configPath = args[i]
		default:
			return opts, fmt.Errorf("unknown flag: %s", args[i])
		}
	}
	return opts, nil
}

func printUsage() {
	fmt.Println(`mzansi - terminal chat client

Usage:
  mzansi             Start the full-screen TUI
  mzansi --cli       Start the line-oriented REPL

Flags:
  -c, --config PATH  Load configuration from PATH
  -V, --version      Print version and exit
  -h, --help         Show this help`)
}

// run loads the configuration, opens the stores, and hands off to the
// selected interface.
func run(opts options) error {
	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		cfg, err = config.LoadFromPath(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dataDir, err := cfg.DataDir()
	if err != nil {
		return err
	}

	backend, err := storage.Open(cfg.Storage.Backend, dataDir)
	if err != nil {
		return fmt.Errorf("open %s storage at %s: %w", cfg.Storage.Backend, dataDir, err)
	}
	defer backend.Close()

	sessions := session.New(backend)
	defer sessions.Close()

	conversations := store.New(backend)
	defer conversations.Close()

	responder := newResponder(cfg)

	if opts.cli {
		return cli.Run(cfg, sessions, conversations, responder)
	}
	return runTUI(cfg, sessions, conversations, responder)
}

// newResponder builds the simulated assistant from config.
func newResponder(cfg *config.Config) *assistant.Responder {
	opts := []assistant.Option{
		assistant.WithDelay(time.Duration(cfg.Assistant.ReplyDelayMs) * time.Millisecond),
	}
	if cfg.Assistant.RateLimit > 0 && cfg.Assistant.Burst > 0 {
		opts = append(opts, assistant.WithRateLimit(cfg.Assistant.RateLimit, cfg.Assistant.Burst))
	}
	return assistant.New(opts...)
}

// runTUI starts the Bubble Tea program and forwards store changes into it.
func runTUI(cfg *config.Config, sessions *session.Store, conversations *store.Store, responder *assistant.Responder) error {
	app := ui.NewApp(cfg, sessions, conversations, responder)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Changes made outside the update loop (flusher callbacks, future
	// sources) surface as refresh messages.
	unsubConv := conversations.Subscribe(func() {
		p.Send(ui.StoreChangedMsg{})
	})
	defer unsubConv()
	unsubSess := sessions.Subscribe(func() {
		p.Send(ui.StoreChangedMsg{})
	})
	defer unsubSess()

	// Presentation settings apply live when the config file changes. The
	// reloaded config is handed to the update loop rather than written here:
	// the watcher callback runs on its own goroutine, and the views read
	// config without locking. Storage and assistant settings take effect on
	// the next start.
	watcher, err := config.NewWatcher(
		func(updated *config.Config) {
			p.Send(ui.ConfigChangedMsg{Config: updated})
		},
		func(err error) {
			fmt.Fprintf(os.Stderr, "mzansi: config reload failed: %v\n", err)
		},
	)
	if err == nil {
		if werr := watcher.Watch(); werr == nil {
			defer watcher.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}
