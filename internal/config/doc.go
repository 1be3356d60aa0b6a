// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for thinkly.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - GeminiConfig, MistralConfig: provider credentials and endpoints
//   - ExchangeConfig: request timeout and dispatch pacing
//   - StorageConfig: durable state backend (file or sqlite)
//   - AuthConfig: login gate credentials
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (THINKLY_*, GEMINI_API_KEY, MISTRAL_API_KEY)
//   - ~/.thinkly/config.toml
//   - ~/.thinkly/config.json
//   - Built-in defaults
//
// THINKLY_HOME relocates the whole ~/.thinkly directory.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	timeout := cfg.Exchange.Timeout()
package config
