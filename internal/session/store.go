// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jeranaias/thinkly/internal/logging"
	"github.com/jeranaias/thinkly/internal/model"
	"github.com/jeranaias/thinkly/internal/provider"
	"github.com/jeranaias/thinkly/internal/storage"
)

// ErrDuplicateID is returned by Append for an id already in the conversation.
var ErrDuplicateID = errors.New("duplicate message id")

// =============================================================================
// STORE
// =============================================================================

// Store is the in-memory conversation plus its durable mirror.
// It is safe for concurrent use.
type Store struct {
	kv     storage.KV
	logger *slog.Logger

	mu        sync.RWMutex
	messages  []model.Message
	ids       map[string]struct{}
	selected  model.ProviderID
	lastError string
}

// Open creates a store backed by kv and rehydrates it.
func Open(kv storage.KV, logger *slog.Logger) *Store {
	s := &Store{
		kv:       kv,
		logger:   logging.OrDefault(logger).With("component", "session"),
		ids:      make(map[string]struct{}),
		selected: model.DefaultProvider,
	}
	s.Rehydrate()
	return s
}

// Rehydrate reloads history and the selected model from durable storage.
// It never fails: unreadable or corrupt history is logged and replaced by
// an empty conversation, and a missing or unknown model falls back to the
// default provider.
func (s *Store) Rehydrate() {
	messages := s.loadMessages()
	selected := s.loadSelectedModel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = messages
	s.ids = make(map[string]struct{}, len(messages))
	for _, m := range messages {
		s.ids[m.ID] = struct{}{}
	}
	s.selected = selected
	s.lastError = ""
}

func (s *Store) loadMessages() []model.Message {
	data, err := s.kv.Get(storage.KeyMessages)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Error("persistence read error: history unreadable, starting empty", "error", err)
		return nil
	}

	var messages []model.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		s.logger.Error("persistence read error: history corrupt, starting empty", "error", err)
		return nil
	}

	seen := make(map[string]struct{}, len(messages))
	for _, m := range messages {
		if err := m.Validate(); err != nil {
			s.logger.Error("persistence read error: invalid message, starting empty", "error", err)
			return nil
		}
		if _, dup := seen[m.ID]; dup {
			s.logger.Error("persistence read error: duplicate message id, starting empty", "id", m.ID)
			return nil
		}
		seen[m.ID] = struct{}{}
	}

	s.logger.Debug("history rehydrated", "messages", len(messages))
	return messages
}

func (s *Store) loadSelectedModel() model.ProviderID {
	data, err := s.kv.Get(storage.KeySelectedModel)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("selected model unreadable, using default", "error", err)
		}
		return model.DefaultProvider
	}
	id, err := model.ParseProvider(strings.Trim(string(data), `"`))
	if err != nil {
		s.logger.Warn("stored model unknown, using default", "value", string(data))
		return model.DefaultProvider
	}
	return id
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Append adds msg to the end of the conversation and persists the full
// list. If persisting fails the append is undone and the error returned.
func (s *Store) Append(msg model.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.ids[msg.ID]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateID, msg.ID)
	}

	next := append(s.messages[:len(s.messages):len(s.messages)], msg)
	if err := s.persistLocked(next); err != nil {
		return err
	}
	s.messages = next
	s.ids[msg.ID] = struct{}{}
	return nil
}

// Clear empties the conversation and removes the persisted history.
// The selected model is kept.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(storage.KeyMessages); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	s.messages = nil
	s.ids = make(map[string]struct{})
	s.lastError = ""
	s.logger.Info("history cleared")
	return nil
}

// SelectModel switches the provider used for future messages. Unknown ids
// fail with model.ErrInvalidModel and leave the selection unchanged.
// Existing messages keep their model tag.
func (s *Store) SelectModel(id model.ProviderID) error {
	if !id.Valid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidModel, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Set(storage.KeySelectedModel, []byte(id)); err != nil {
		return fmt.Errorf("failed to persist selected model: %w", err)
	}
	s.selected = id
	s.lastError = ""
	s.logger.Info("model selected", "model", string(id))
	return nil
}

// SetLastError records the most recent exchange failure ("" clears it).
func (s *Store) SetLastError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = msg
}

// persistLocked writes messages as the full history. Caller holds s.mu.
// RELIABILITY: One KV write replaces the whole list atomically.
func (s *Store) persistLocked(messages []model.Message) error {
	if messages == nil {
		messages = []model.Message{}
	}
	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := s.kv.Set(storage.KeyMessages, data); err != nil {
		s.logger.Error("failed to persist history", "error", err)
		return fmt.Errorf("failed to persist history: %w", err)
	}
	return nil
}

// =============================================================================
// READERS
// =============================================================================

// Messages returns a copy of the conversation in insertion order.
func (s *Store) Messages() []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// SelectedModel returns the provider used for new messages.
func (s *Store) SelectedModel() model.ProviderID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// LastError returns the most recent exchange failure, or "".
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// History returns every message as a provider turn, in insertion order.
func (s *Store) History() []provider.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := make([]provider.Turn, len(s.messages))
	for i, m := range s.messages {
		turns[i] = provider.Turn{Role: m.Role, Content: m.Content}
	}
	return turns
}

// Search returns messages whose content contains query, ignoring case.
// An empty query matches everything.
func (s *Store) Search(query string) []model.Message {
	query = strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Message
	for _, m := range s.messages {
		if query == "" || strings.Contains(strings.ToLower(m.Content), query) {
			out = append(out, m)
		}
	}
	return out
}
