// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the durable key-value substrate for mzansi.
package storage

import (
	"encoding/json"
	"errors"

	"github.com/mzansigpt/mzansi-tui/internal/model"
)

// =============================================================================
// RECORD CODECS
// =============================================================================

// Shared serialization helpers for the two durable records. Both records are
// JSON-encoded; a record that exists but fails to decode is reported as a
// *CorruptRecordError so callers can fail open to an empty state.

// SaveIdentity persists the identity under the "user" record.
func SaveIdentity(b Backend, id *model.Identity) error {
	data, err := json.MarshalIndent(id, "", "  ")
	if err != nil {
		return err
	}
	return b.Set(KeyUser, data)
}

// LoadIdentity loads the "user" record. Returns ErrRecordNotFound if no
// identity is stored, or *CorruptRecordError if the record is malformed.
func LoadIdentity(b Backend) (*model.Identity, error) {
	data, err := b.Get(KeyUser)
	if err != nil {
		return nil, err
	}

	var id model.Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return nil, &CorruptRecordError{Key: KeyUser, Err: err}
	}
	return &id, nil
}

// DeleteIdentity removes the "user" record.
func DeleteIdentity(b Backend) error {
	return b.Delete(KeyUser)
}

// SaveConversations persists the full conversation set, preserving order.
func SaveConversations(b Backend, convs []*model.Conversation) error {
	data, err := json.MarshalIndent(convs, "", "  ")
	if err != nil {
		return err
	}
	return b.Set(KeyConversations, data)
}

// LoadConversations loads the "conversations" record. An absent record yields
// an empty set, not an error; a malformed one yields *CorruptRecordError.
func LoadConversations(b Backend) ([]*model.Conversation, error) {
	data, err := b.Get(KeyConversations)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return []*model.Conversation{}, nil
		}
		return nil, err
	}

	var convs []*model.Conversation
	if err := json.Unmarshal(data, &convs); err != nil {
		return nil, &CorruptRecordError{Key: KeyConversations, Err: err}
	}
	if convs == nil {
		convs = []*model.Conversation{}
	}
	return convs, nil
}
