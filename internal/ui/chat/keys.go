// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/jeranaias/thinkly/internal/ui/components"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the keyboard bindings of the chat program.
type KeyMap struct {
	Send       key.Binding
	Newline    key.Binding
	Theme      key.Binding
	SwitchView key.Binding
	Model      key.Binding
	Clear      key.Binding
	Export     key.Binding
	Search     key.Binding
	Cancel     key.Binding
	Logout     key.Binding
	Quit       key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Newline: key.NewBinding(
			key.WithKeys("alt+enter", "ctrl+j"),
			key.WithHelp("alt+enter", "newline"),
		),
		Theme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "theme"),
		),
		SwitchView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "dashboard"),
		),
		Model: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "model"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "export"),
		),
		Search: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "search"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close search"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+q"),
			key.WithHelp("ctrl+q", "logout"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
	}
}

// =============================================================================
// STATUS BAR HINTS
// =============================================================================

// ChatHelp lists the bindings hinted in the chat view.
func (k KeyMap) ChatHelp() []key.Binding {
	return []key.Binding{k.Send, k.Model, k.Theme, k.SwitchView, k.Search, k.Export, k.Clear, k.Logout}
}

// DashboardHelp lists the bindings hinted in the dashboard view.
func (k KeyMap) DashboardHelp() []key.Binding {
	chat := k.SwitchView
	chat.SetHelp("tab", "chat")
	return []key.Binding{chat, k.Theme, k.Export, k.PageUp, k.PageDown, k.Quit}
}

// SearchHelp lists the bindings hinted while searching.
func (k KeyMap) SearchHelp() []key.Binding {
	done := k.Send
	done.SetHelp("enter", "keep filter")
	return []key.Binding{done, k.Cancel}
}

// shortcuts converts bindings to status bar hints.
func shortcuts(bindings []key.Binding) []components.Shortcut {
	out := make([]components.Shortcut, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		out = append(out, components.Shortcut{Key: h.Key, Desc: h.Desc})
	}
	return out
}
