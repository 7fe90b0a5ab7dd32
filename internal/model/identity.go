// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for identities, conversations
// and messages.
package model

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// =============================================================================
// IDENTITY TYPE
// =============================================================================

// Identity is the authenticated user's profile record. At most one Identity
// is active per process; its existence is what "authenticated" means.
type Identity struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// NewIdentity creates an identity with a fresh ID and a deterministic avatar
// derived from the email. The ID is immutable for the identity's lifetime.
func NewIdentity(email, name string) *Identity {
	return &Identity{
		ID:     uuid.NewString(),
		Email:  email,
		Name:   name,
		Avatar: AvatarURL(email),
	}
}

// DisplayName returns the name, falling back to the email local part.
func (id *Identity) DisplayName() string {
	if id.Name != "" {
		return id.Name
	}
	return LocalPart(id.Email)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// LocalPart returns the part of an email address before the "@".
func LocalPart(email string) string {
	if at := strings.Index(email, "@"); at >= 0 {
		return email[:at]
	}
	return email
}

// AvatarURL derives a deterministic avatar reference from an email address.
func AvatarURL(email string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + url.QueryEscape(email)
}
