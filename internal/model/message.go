// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleError     Role = "error"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the modelled roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleError:
		return true
	}
	return false
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleError:
		return "Error"
	default:
		return string(r)
	}
}

// ParseRole validates a persisted role string.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// =============================================================================
// USAGE
// =============================================================================

// Usage is token accounting for one assistant reply.
// Estimated is set when the provider reported nothing and a local
// heuristic filled in TotalTokens.
type Usage struct {
	PromptTokens     int  `json:"prompt_tokens,omitempty"`
	CompletionTokens int  `json:"completion_tokens,omitempty"`
	TotalTokens      int  `json:"total_tokens"`
	Estimated        bool `json:"estimated,omitempty"`
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single turn in the conversation.
type Message struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	Role      Role       `json:"role"`
	Timestamp time.Time  `json:"timestamp"`
	Model     ProviderID `json:"model"`
	Usage     *Usage     `json:"usage,omitempty"`
}

// NewMessage creates a message stamped with a fresh ID and the current time.
func NewMessage(role Role, content string, provider ProviderID) Message {
	return Message{
		ID:        NewID(),
		Content:   content,
		Role:      role,
		Timestamp: Now(),
		Model:     provider,
	}
}

// NewErrorMessage builds the conversation entry for a failed exchange.
func NewErrorMessage(cause string, provider ProviderID) Message {
	return NewMessage(RoleError, ErrorPrefix+cause, provider)
}

// ErrorPrefix starts the content of every error-role message.
const ErrorPrefix = "Error: "

// NewID returns a time-ordered unique identifier.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Now returns the current time in UTC at millisecond precision, matching what
// survives a JSON round trip.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// HasCode reports whether the content contains a fenced code block.
func (m Message) HasCode() bool {
	return strings.Contains(m.Content, "```")
}

// EstimateTokens gives a rough token count (~4 characters per token).
func (m Message) EstimateTokens() int {
	return (utf8.RuneCountInString(m.Content) + 3) / 4
}

// Preview returns a truncated single-line preview of the content.
func (m Message) Preview(maxLen int) string {
	content := strings.Join(strings.Fields(m.Content), " ")
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// Validate checks the invariants every stored message must satisfy.
func (m Message) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("message has no id")
	}
	if !m.Role.Valid() {
		return fmt.Errorf("message %s: unknown role %q", m.ID, m.Role)
	}
	if m.Timestamp.IsZero() {
		return fmt.Errorf("message %s: missing timestamp", m.ID)
	}
	return nil
}
