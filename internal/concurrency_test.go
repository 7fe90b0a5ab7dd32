// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package internal contains race detection tests for the mzansi stores.
//
// Run with: go test -race -v ./internal/...
//
// These tests are designed to detect data races under concurrent access
// patterns that match real-world usage: views reading while mutations and
// the write-through loop run in the background.
package internal

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mzansigpt/mzansi-tui/internal/model"
	"github.com/mzansigpt/mzansi-tui/internal/session"
	"github.com/mzansigpt/mzansi-tui/internal/storage"
	"github.com/mzansigpt/mzansi-tui/internal/store"
)

// =============================================================================
// TEST CONFIGURATION
// =============================================================================

const (
	// Number of concurrent goroutines for race tests
	raceConcurrency = 50
	// Number of iterations per goroutine
	raceIterations = 20
)

func quiet(format string, args ...any) {}

// =============================================================================
// CONVERSATION STORE CONCURRENCY TESTS
// =============================================================================

// TestConcurrency_ConversationMutations runs creators, writers, readers, and
// deleters against one store while the flusher persists in the background.
func TestConcurrency_ConversationMutations(t *testing.T) {
	backend, err := storage.Open("json", t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer backend.Close()

	s := store.New(backend, store.WithLogger(quiet))
	defer s.Close()

	var wg sync.WaitGroup

	// Creators
	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				s.CreateConversation(fmt.Sprintf("c-%d-%d", n, j))
			}
		}(i)
	}

	// Writers append to whatever is currently selected.
	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				if conv := s.CurrentConversation(); conv != nil {
					s.AddMessage(conv.ID, model.NewMessage(model.RoleUser, "hi", time.Now()))
				}
			}
		}()
	}

	// Readers iterate message content, not just metadata, so a read result
	// sharing memory with in-place appends would trip the race detector.
	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				for _, conv := range s.Conversations() {
					for _, msg := range conv.Messages {
						_ = msg.Content
					}
					_ = conv.Preview()
				}
				if conv := s.CurrentConversation(); conv != nil {
					_ = conv.LastMessage()
					_ = conv.UpdatedAt
				}
				_ = s.Len()
			}
		}()
	}

	// Deleters
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				if convs := s.Conversations(); len(convs) > 0 {
					s.DeleteConversation(convs[len(convs)-1].ID)
				}
			}
		}()
	}

	wg.Wait()

	if err := s.Flush(); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}
}

// TestConcurrency_Subscribers exercises subscribe/notify/unsubscribe while
// mutations fire.
func TestConcurrency_Subscribers(t *testing.T) {
	backend, err := storage.Open("json", t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer backend.Close()

	s := store.New(backend, store.WithLogger(quiet))
	defer s.Close()

	var notified atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				unsub := s.Subscribe(func() { notified.Add(1) })
				s.CreateConversation("")
				unsub()
			}
		}()
	}

	wg.Wait()

	if notified.Load() == 0 {
		t.Error("subscribers were never notified")
	}
}

// =============================================================================
// SESSION STORE CONCURRENCY TESTS
// =============================================================================

// TestConcurrency_SessionChurn logs in, reads, updates, and logs out
// concurrently.
func TestConcurrency_SessionChurn(t *testing.T) {
	backend, err := storage.Open("json", t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer backend.Close()

	s := session.New(backend, session.WithLogger(quiet))
	defer s.Close()

	var wg sync.WaitGroup

	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				switch j % 4 {
				case 0:
					s.Login(fmt.Sprintf("user%d@example.com", n), "pw")
				case 1:
					_ = s.IsAuthenticated()
					_ = s.CurrentUser()
				case 2:
					s.UpdateProfile(session.ProfileUpdate{Name: fmt.Sprintf("u%d", n)})
				case 3:
					s.Logout()
				}
			}
		}(i)
	}

	wg.Wait()

	if err := s.Flush(); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}
}
