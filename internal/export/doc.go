// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes the conversation to Markdown, JSON or HTML.
//
// # Supported Formats
//
//   - Markdown: human-readable, with YAML frontmatter
//   - JSON: the messages as stored plus dashboard stats
//   - HTML: standalone page with highlighted code blocks
//
// # Usage
//
//	conv := export.FromMessages(store.Messages(), store.SelectedModel())
//	exporter, err := export.ForFormat("md", opts)
//	path, err := export.ToFile(conv, exporter, opts)
package export
