// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for mzansi.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.mzansi/config.toml
//   - ~/.mzansi/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/mzansigpt/mzansi-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete mzansi configuration.
type Config struct {
	// Version of the config schema
	Version string `toml:"version" json:"version"`

	// Storage configuration
	Storage StorageConfig `toml:"storage" json:"storage"`

	// Assistant (simulated reply) configuration
	Assistant AssistantConfig `toml:"assistant" json:"assistant"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// StorageConfig controls the durable substrate.
type StorageConfig struct {
	// Backend selects the substrate: "json" (one file per record) or "sqlite".
	Backend string `toml:"backend" json:"backend"`
	// DataDir is the directory holding the records (empty = ~/.mzansi/data).
	DataDir string `toml:"data_dir" json:"data_dir"`
}

// AssistantConfig controls the simulated reply generator.
type AssistantConfig struct {
	// ReplyDelayMs is the simulated thinking delay in milliseconds.
	ReplyDelayMs int `toml:"reply_delay_ms" json:"reply_delay_ms"`
	// RateLimit caps replies per second (0 = default).
	RateLimit float64 `toml:"rate_limit" json:"rate_limit"`
	// Burst is the rate limiter burst size (0 = default).
	Burst int `toml:"burst" json:"burst"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Markdown renders assistant replies as markdown in the TUI.
	Markdown bool `toml:"markdown" json:"markdown"`
	// SidebarWidth is the conversation sidebar width in columns.
	SidebarWidth int `toml:"sidebar_width" json:"sidebar_width"`
}

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Storage: StorageConfig{
			Backend: "json",
		},
		Assistant: AssistantConfig{
			ReplyDelayMs: 1000,
			RateLimit:    5,
			Burst:        10,
		},
		UI: UIConfig{
			Markdown:     true,
			SidebarWidth: 30,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the mzansi configuration directory (~/.mzansi).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".mzansi"), nil
}

// ConfigPathTOML returns the TOML config file path.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the JSON config file path.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir creates the configuration directory if needed.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// DataDir resolves the effective data directory for the durable substrate.
func (c *Config) DataDir() (string, error) {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration, trying TOML first, then JSON, then defaults.
// Environment overrides and validation are applied in every case.
func Load() (*Config, error) {
	cfg := Default()

	if path, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load TOML config: %w", err)
			}
			return finish(cfg)
		}
	}

	if path, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadJSON(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load JSON config: %w", err)
			}
			return finish(cfg)
		}
	}

	return finish(cfg)
}

// LoadFromPath loads configuration from an explicit file path, choosing the
// format by extension.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	var err error
	if strings.HasSuffix(path, ".json") {
		err = LoadJSON(cfg, path)
	} else {
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, err
	}
	return finish(cfg)
}

// LoadTOML merges a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

// LoadJSON merges a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, cfg)
}

// finish applies env overrides, defaults and validation.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration as TOML to the default location.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration as TOML to path atomically.
func SaveTOML(cfg *Config, path string) error {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, []byte(sb.String()), 0644)
}

// =============================================================================
// DEFAULTS, OVERRIDES AND VALIDATION
// =============================================================================

// SetDefaults fills zero values with the built-in defaults.
func (c *Config) SetDefaults() {
	def := Default()
	if c.Version == "" {
		c.Version = def.Version
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = def.Storage.Backend
	}
	if c.Assistant.ReplyDelayMs == 0 {
		c.Assistant.ReplyDelayMs = def.Assistant.ReplyDelayMs
	}
	if c.Assistant.RateLimit == 0 {
		c.Assistant.RateLimit = def.Assistant.RateLimit
	}
	if c.Assistant.Burst == 0 {
		c.Assistant.Burst = def.Assistant.Burst
	}
	if c.UI.SidebarWidth == 0 {
		c.UI.SidebarWidth = def.UI.SidebarWidth
	}
}

// ApplyEnvOverrides applies MZANSI_* environment variables over the config.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("MZANSI_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv("MZANSI_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("MZANSI_REPLY_DELAY_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.Assistant.ReplyDelayMs = ms
		}
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "", "json", "sqlite":
	default:
		return fmt.Errorf("storage.backend must be \"json\" or \"sqlite\", got %q", c.Storage.Backend)
	}
	if c.Assistant.ReplyDelayMs < 0 {
		return fmt.Errorf("assistant.reply_delay_ms must not be negative")
	}
	if c.Assistant.RateLimit < 0 {
		return fmt.Errorf("assistant.rate_limit must not be negative")
	}
	if c.UI.SidebarWidth < 0 {
		return fmt.Errorf("ui.sidebar_width must not be negative")
	}
	return nil
}
