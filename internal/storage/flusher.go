// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the durable key-value substrate for mzansi.
package storage

import (
	"sync"
)

// =============================================================================
// WRITE-THROUGH FLUSHER
// =============================================================================

// Flusher decouples in-memory mutations from durable writes. A mutation marks
// the flusher dirty and returns immediately; a background loop reacts by
// invoking the save function. Mutations landing while a save is pending are
// coalesced into a single write of the final state.
//
// If the process dies between MarkDirty and the write completing, the most
// recent mutation is lost on restart. That window is the accepted trade for
// keeping mutations off the I/O path.
type Flusher struct {
	save func() error
	logf func(format string, args ...any)

	mu    sync.Mutex
	dirty bool

	kick chan struct{}
	done chan struct{}
	wg   sync.WaitGroup

	closeOnce sync.Once
}

// NewFlusher creates a flusher around save and starts its write loop.
// The save function must snapshot state under its own lock.
func NewFlusher(save func() error, logf func(format string, args ...any)) *Flusher {
	f := &Flusher{
		save: save,
		logf: logf,
		kick: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	f.wg.Add(1)
	go f.loop()
	return f
}

// MarkDirty records that state has changed and wakes the write loop.
// It never blocks.
func (f *Flusher) MarkDirty() {
	f.mu.Lock()
	f.dirty = true
	f.mu.Unlock()

	select {
	case f.kick <- struct{}{}:
	default:
	}
}

// Flush synchronously writes pending state, if any. Safe to call from tests
// and shutdown paths; a clean flusher is a no-op.
func (f *Flusher) Flush() error {
	f.mu.Lock()
	if !f.dirty {
		f.mu.Unlock()
		return nil
	}
	f.dirty = false
	f.mu.Unlock()

	if err := f.save(); err != nil {
		// Keep the dirty bit so a later flush retries.
		f.mu.Lock()
		f.dirty = true
		f.mu.Unlock()
		return err
	}
	return nil
}

// Close performs a final flush and stops the write loop.
func (f *Flusher) Close() error {
	f.closeOnce.Do(func() {
		close(f.done)
	})
	f.wg.Wait()
	return f.Flush()
}

// loop reacts to dirty marks until closed.
func (f *Flusher) loop() {
	defer f.wg.Done()
	for {
		select {
		case <-f.kick:
			if err := f.Flush(); err != nil && f.logf != nil {
				f.logf("write-through failed: %v", err)
			}
		case <-f.done:
			return
		}
	}
}
