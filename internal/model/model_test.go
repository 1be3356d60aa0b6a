// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in      string
		want    ProviderID
		wantErr bool
	}{
		{"gemini", ProviderGemini, false},
		{"  Mistral ", ProviderMistral, false},
		{"gpt-4", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseProvider(tt.in)
		if tt.wantErr {
			assert.True(t, errors.Is(err, ErrInvalidModel), "ParseProvider(%q) err = %v", tt.in, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestProviderNames(t *testing.T) {
	assert.Equal(t, "Google Gemini", ProviderGemini.DisplayName())
	assert.Equal(t, "Mistral", ProviderMistral.DisplayName())
	assert.Equal(t, "Unknown Model", ProviderID("x").DisplayName())
	assert.Equal(t, "Gemini", ProviderGemini.ShortName())
	assert.Equal(t, "Unknown", ProviderID("").ShortName())
}

func TestProviderNextWraps(t *testing.T) {
	assert.Equal(t, ProviderMistral, ProviderGemini.Next())
	assert.Equal(t, ProviderGemini, ProviderMistral.Next())
}

func TestNewMessage_IDsAreUniqueAndOrdered(t *testing.T) {
	a := NewMessage(RoleUser, "a", ProviderGemini)
	b := NewMessage(RoleUser, "b", ProviderGemini)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Less(t, a.ID, b.ID, "UUIDv7 ids should sort in creation order")
	assert.False(t, b.Timestamp.Before(a.Timestamp))
}

func TestMessageJSONShape(t *testing.T) {
	msg := NewMessage(RoleAssistant, "Hi there!", ProviderMistral)
	msg.Usage = &Usage{TotalTokens: 9}

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"id", "content", "role", "timestamp", "model", "usage"} {
		assert.Contains(t, raw, key)
	}
	assert.Equal(t, "assistant", raw["role"])
	assert.Equal(t, "mistral", raw["model"])

	var back Message
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Timestamp.Equal(msg.Timestamp))
	assert.Equal(t, msg.Usage, back.Usage)
}

func TestNewErrorMessage(t *testing.T) {
	msg := NewErrorMessage("boom", ProviderGemini)
	assert.Equal(t, RoleError, msg.Role)
	assert.Equal(t, "Error: boom", msg.Content)
}

func TestMessageHelpers(t *testing.T) {
	code := Message{Content: "look:\n```go\nfmt.Println()\n```"}
	assert.True(t, code.HasCode())
	assert.False(t, Message{Content: "plain `inline`"}.HasCode())

	assert.Equal(t, 2, Message{Content: "12345678"}.EstimateTokens())
	assert.Equal(t, "hello...", Message{Content: "hello\nworld again"}.Preview(8))
}

func TestMessageValidate(t *testing.T) {
	ok := NewMessage(RoleUser, "x", ProviderGemini)
	assert.NoError(t, ok.Validate())

	bad := ok
	bad.Role = "system"
	assert.Error(t, bad.Validate())

	bad = ok
	bad.ID = ""
	assert.Error(t, bad.Validate())
}
