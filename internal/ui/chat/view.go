// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/thinkly/internal/ui/components"
	"github.com/jeranaias/thinkly/internal/ui/styles"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the current screen.
func (m Model) View() string {
	switch m.view {
	case ViewLogin:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.login.View(m.theme))
	case ViewDashboard:
		return m.viewDashboard()
	default:
		return m.viewChat()
	}
}

func (m Model) header() string {
	active := 0
	if m.view == ViewDashboard {
		active = 1
	}
	mode := styles.ModeLight
	if m.theme.IsDark {
		mode = styles.ModeDark
	}
	return components.Header{
		Tabs:   []string{ViewChat.String(), ViewDashboard.String()},
		Active: active,
		Right:  mode,
		Width:  m.width,
	}.View(m.theme)
}

func (m Model) statusBar(help []components.Shortcut) string {
	return components.StatusBar{
		Model:     m.deps.Session.SelectedModel(),
		Busy:      m.sending,
		Messages:  m.deps.Session.Len(),
		LastError: m.deps.Session.LastError(),
		Notice:    m.notice,
		Shortcuts: help,
		Width:     m.width,
	}.View(m.theme)
}

func (m Model) viewChat() string {
	var line string
	switch {
	case m.searching:
		line = m.search.View()
	case m.thinking.Active():
		line = m.thinking.View(m.theme, m.now())
	case m.filter != "":
		line = m.theme.Muted.Render("Filtered by \"" + m.filter + "\" · esc to clear")
	}

	box := m.theme.InputBox
	if m.sending {
		box = m.theme.InputBoxBusy
	}
	input := box.Width(m.width - 2).Render(m.input.View())

	help := m.keys.ChatHelp()
	if m.searching {
		help = m.keys.SearchHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		m.viewport.View(),
		line,
		input,
		m.statusBar(shortcuts(help)),
	)
}

func (m Model) viewDashboard() string {
	// The dashboard has no input box; give its rows to the viewport.
	vp := m.viewport
	vp.Height += inputHeight + 2 + 1
	return lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		vp.View(),
		m.statusBar(shortcuts(m.keys.DashboardHelp())),
	)
}
