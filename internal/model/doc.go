// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// # Key Types
//
//   - Message: one turn of the conversation (user, assistant or error)
//   - Role: the fixed set of message roles
//   - ProviderID: the backend a message was produced with (gemini, mistral)
//   - Usage: token accounting attached to assistant messages
//
// # Usage
//
//	msg := model.NewMessage(model.RoleUser, "Hello", model.ProviderGemini)
//	reply := model.NewMessage(model.RoleAssistant, "Hi there!", model.ProviderGemini)
//	reply.Usage = &model.Usage{TotalTokens: 12}
//
// Messages are immutable once appended to a session; IDs are time-ordered
// UUIDv7 strings so sorting by ID matches creation order.
package model
