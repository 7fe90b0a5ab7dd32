// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the mzansi application.
//
// This package contains small, dependency-light helpers shared across the
// codebase:
//
//   - AtomicWriteFile: crash-safe file writes (temp file + fsync + rename)
//   - TruncateRunes / TruncateWidth: Unicode-safe string truncation
//   - StringWidth / PadRight: terminal column width handling
package util
