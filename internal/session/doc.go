// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the conversation state shared by the exchange
// orchestrator and the presentation layer.
//
// A Store is constructed explicitly at startup with the durable KV it
// persists to, rehydrates itself from that KV, and is then passed by
// reference to its consumers. Every mutation rewrites the full persisted
// value in one atomic KV write.
//
// # Persisted Keys
//
//   - chat_messages: JSON array of model.Message
//   - selected_model: provider identifier as a bare string
//
// # Usage
//
//	store := session.Open(kv, logger)
//	if err := store.SelectModel(model.ProviderMistral); err != nil {
//	    return err
//	}
//	for _, msg := range store.Messages() {
//	    fmt.Println(msg.Role, msg.Content)
//	}
package session
