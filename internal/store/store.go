// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the conversation set and selection state.
package store

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mzansigpt/mzansi-tui/internal/model"
	"github.com/mzansigpt/mzansi-tui/internal/storage"
)

// ErrConversationNotFound is returned when an operation names a conversation
// id that is not in the set.
var ErrConversationNotFound = errors.New("conversation not found")

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// Store owns the full conversation set and the selection pointer. All
// mutations go through its methods; consumers read state and subscribe for
// change notification. Mutations are applied in memory and persisted through
// a coalescing write-through, so a mutation call returns before the durable
// write completes.
//
// The set is kept in creation order, most recent first. Creation prepends;
// nothing ever re-sorts, so message activity does not shuffle the list.
type Store struct {
	mu sync.Mutex

	conversations []*model.Conversation
	currentID     string // selection pointer, "" = none

	backend storage.Backend
	flusher *storage.Flusher

	now  func() time.Time
	logf func(format string, args ...any)

	subscribers map[int]func()
	nextSubID   int
}

// Option configures a Store.
type Option func(*Store)

// WithClock injects the timestamp source. Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger injects the logger for recovered persistence faults.
func WithLogger(logf func(format string, args ...any)) Option {
	return func(s *Store) { s.logf = logf }
}

// New creates a conversation store backed by b and rehydrates the set from
// the durable "conversations" record. A malformed record is logged and
// discarded; the store starts empty rather than failing. If any conversations
// were restored, the first one becomes the selection.
func New(b storage.Backend, opts ...Option) *Store {
	s := &Store{
		backend:     b,
		now:         time.Now,
		logf:        defaultLogf,
		subscribers: make(map[int]func()),
	}
	for _, opt := range opts {
		opt(s)
	}

	convs, err := storage.LoadConversations(b)
	if err != nil {
		var corrupt *storage.CorruptRecordError
		if errors.As(err, &corrupt) {
			s.logf("failed to parse stored conversations: %v", err)
			b.Delete(storage.KeyConversations)
		} else {
			s.logf("failed to load stored conversations: %v", err)
		}
		convs = []*model.Conversation{}
	}
	s.conversations = convs
	if len(convs) > 0 {
		s.currentID = convs[0].ID
	}

	s.flusher = storage.NewFlusher(s.persist, s.logf)
	return s
}

// persist snapshots the conversation set and writes it through. Runs on the
// flusher's loop; snapshots under the store lock, writes outside it.
func (s *Store) persist() error {
	s.mu.Lock()
	snapshot := make([]*model.Conversation, len(s.conversations))
	for i, conv := range s.conversations {
		snapshot[i] = conv.Clone()
	}
	s.mu.Unlock()

	return storage.SaveConversations(s.backend, snapshot)
}

// Flush forces any pending write-through to complete. Used at shutdown and
// in tests; normal operation relies on the background loop.
func (s *Store) Flush() error {
	return s.flusher.Flush()
}

// Close flushes pending state and stops the write loop.
func (s *Store) Close() error {
	return s.flusher.Close()
}

// =============================================================================
// MUTATION OPERATIONS
// =============================================================================

// CreateConversation adds a new conversation to the front of the set and
// selects it. An empty title yields a date-derived default. Never fails.
// Returns a copy of the created conversation.
func (s *Store) CreateConversation(title string) *model.Conversation {
	s.mu.Lock()
	conv := model.NewConversation(title, s.now())
	s.conversations = append([]*model.Conversation{conv}, s.conversations...)
	s.currentID = conv.ID
	out := conv.Clone()
	s.mu.Unlock()

	s.changed()
	return out
}

// SelectConversation sets the selection pointer unconditionally. Passing an
// unknown id leaves a dangling pointer, which readers observe as "no active
// conversation".
func (s *Store) SelectConversation(id string) {
	s.mu.Lock()
	s.currentID = id
	s.mu.Unlock()

	s.notify()
}

// DeleteConversation removes the conversation with the given id. If it was
// selected, the first remaining conversation is selected instead (or nothing
// if the set is now empty). Unknown ids are a no-op.
func (s *Store) DeleteConversation(id string) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}

	s.conversations = append(s.conversations[:idx], s.conversations[idx+1:]...)
	if s.currentID == id {
		if len(s.conversations) > 0 {
			s.currentID = s.conversations[0].ID
		} else {
			s.currentID = ""
		}
	}
	s.mu.Unlock()

	s.changed()
}

// AddMessage appends a message to the named conversation and bumps its
// UpdatedAt. Returns ErrConversationNotFound if the conversation no longer
// exists, which is how a deferred assistant reply learns its target was
// deleted mid-flight.
func (s *Store) AddMessage(conversationID string, msg *model.Message) error {
	s.mu.Lock()
	idx := s.indexOf(conversationID)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("add message to %s: %w", conversationID, ErrConversationNotFound)
	}
	s.conversations[idx].AddMessage(msg, s.now())
	s.mu.Unlock()

	s.changed()
	return nil
}

// UpdateConversationTitle renames the named conversation and bumps its
// UpdatedAt. Unknown ids and empty titles are a no-op.
func (s *Store) UpdateConversationTitle(id, title string) {
	if title == "" {
		return
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.conversations[idx].Rename(title, s.now())
	s.mu.Unlock()

	s.changed()
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

// Conversations returns the conversation set, most recently created first.
// Every conversation is a deep copy: readers may iterate Messages on any
// goroutine without racing later mutations, and writing to a copy never
// reaches the store.
func (s *Store) Conversations() []*model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.Conversation, len(s.conversations))
	for i, conv := range s.conversations {
		out[i] = conv.Clone()
	}
	return out
}

// CurrentConversation resolves the selection pointer, or nil if nothing is
// selected or the pointer dangles. The result is a deep copy.
func (s *Store) CurrentConversation() *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentID == "" {
		return nil
	}
	if idx := s.indexOf(s.currentID); idx >= 0 {
		return s.conversations[idx].Clone()
	}
	return nil
}

// Get returns a deep copy of the conversation with the given id, or nil.
func (s *Store) Get(id string) *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexOf(id); idx >= 0 {
		return s.conversations[idx].Clone()
	}
	return nil
}

// Len returns the number of conversations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// Subscribe registers fn to run after every state change. The returned
// function unsubscribes. Callbacks run outside the store lock and must not
// block for long; UI consumers typically forward a refresh message.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// changed marks durable state dirty and notifies subscribers.
func (s *Store) changed() {
	s.flusher.MarkDirty()
	s.notify()
}

// notify runs subscriber callbacks outside the lock.
func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// indexOf returns the index of a conversation id, or -1. Caller holds mu.
func (s *Store) indexOf(id string) int {
	for i, conv := range s.conversations {
		if conv.ID == id {
			return i
		}
	}
	return -1
}

// defaultLogf reports recovered faults to stderr.
func defaultLogf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "mzansi: "+format+"\n", args...)
}
