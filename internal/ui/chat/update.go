// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/thinkly/internal/auth"
	"github.com/jeranaias/thinkly/internal/exchange"
	"github.com/jeranaias/thinkly/internal/export"
	"github.com/jeranaias/thinkly/internal/model"
	"github.com/jeranaias/thinkly/internal/storage"
	"github.com/jeranaias/thinkly/internal/telemetry"
	"github.com/jeranaias/thinkly/internal/ui/components"
	"github.com/jeranaias/thinkly/internal/ui/styles"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and user input.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		switch m.view {
		case ViewLogin:
			return m.updateLogin(msg)
		case ViewDashboard:
			return m.updateDashboard(msg)
		default:
			return m.updateChat(msg)
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case components.LoginSubmitMsg:
		return m, m.loginCmd(msg.Username, msg.Password, msg.Code)

	case loginResultMsg:
		return m.handleLoginResult(msg)

	case stateMsg:
		// The user message is recorded before Sending is reported.
		m.refresh()
		return m, waitForState(m.states)

	case exchangeDoneMsg:
		return m.handleExchangeDone(msg)

	case kvChangedMsg:
		return m.handleStorageChange(msg)

	case exportDoneMsg:
		if msg.err != nil {
			if errors.Is(msg.err, export.ErrEmpty) {
				return m.setNotice("Nothing to export yet")
			}
			m.logger.Error("export failed", "error", msg.err)
			return m.setNotice("Export failed: " + msg.err.Error())
		}
		m.logger.Info("conversation exported", "path", msg.path)
		return m.setNotice("Exported to " + msg.path)

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.thinking, cmd = m.thinking.Update(msg)
		return m, cmd
	}

	if m.view == ViewLogin {
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// LOGIN VIEW
// =============================================================================

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Theme) {
		return m.toggleTheme()
	}
	var cmd tea.Cmd
	m.login, cmd = m.login.Update(msg)
	return m, cmd
}

func (m Model) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.login.SetError(auth.DisplayMessage(msg.err))
		return m, nil
	}
	m.view = ViewChat
	m.refresh()
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) logout() (tea.Model, tea.Cmd) {
	if m.deps.Gate == nil || !m.deps.Gate.Configured() {
		return m, tea.Quit
	}
	if err := m.deps.Gate.Logout(); err != nil {
		m.logger.Error("logout failed", "error", err)
		return m.setNotice("Logout failed: " + err.Error())
	}
	return m.showLogin()
}

func (m Model) showLogin() (tea.Model, tea.Cmd) {
	m.view = ViewLogin
	m.searching = false
	m.filter = ""
	m.input.Blur()
	m.login = components.NewLoginForm(m.deps.Gate.RequiresCode())
	m.login.SetWidth(loginWidth(m.width))
	cmd := m.login.Init()
	return m, cmd
}

// =============================================================================
// CHAT VIEW
// =============================================================================

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.updateSearch(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Send):
		return m.submit()
	case key.Matches(msg, m.keys.Theme):
		return m.toggleTheme()
	case key.Matches(msg, m.keys.SwitchView):
		m.view = ViewDashboard
		m.input.Blur()
		m.refresh()
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Model):
		return m.cycleModel()
	case key.Matches(msg, m.keys.Clear):
		return m.clearConversation()
	case key.Matches(msg, m.keys.Export):
		return m, m.exportCmd()
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.input.Blur()
		m.search.SetValue(m.filter)
		m.search.CursorEnd()
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Cancel):
		if m.filter != "" {
			m.filter = ""
			m.refresh()
		}
		return m, nil
	case key.Matches(msg, m.keys.Logout):
		return m.logout()
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	// ACCESSIBILITY: Input stays visible but ignores typing while a reply is pending.
	if m.sending {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts an exchange with the input text. Empty input and a pending
// exchange are no-ops.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.sending || m.deps.Exchange.Busy() {
		return m, nil
	}
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return m, nil
	}

	m.input.Reset()
	m.input.Blur()
	m.sending = true
	m.filter = ""
	start := m.thinking.Start(m.deps.Session.SelectedModel(), m.now())
	return m, tea.Batch(sendCmd(m.ctx, m.deps.Exchange, text), start)
}

func (m Model) handleExchangeDone(msg exchangeDoneMsg) (tea.Model, tea.Cmd) {
	m.sending = false
	m.thinking.Stop()
	m.refresh()
	focus := m.input.Focus()

	switch {
	case msg.err == nil:
		if msg.outcome.State == exchange.StateFailed {
			m.logger.Warn("exchange failed", "error", msg.outcome.Err)
		}
		return m, focus
	case errors.Is(msg.err, exchange.ErrBusy), errors.Is(msg.err, exchange.ErrInvalidInput):
		return m, focus
	default:
		m.logger.Error("send rejected", "error", msg.err)
		next, cmd := m.setNotice("Could not send: " + msg.err.Error())
		return next, tea.Batch(focus, cmd)
	}
}

func (m Model) cycleModel() (tea.Model, tea.Cmd) {
	next := m.deps.Session.SelectedModel().Next()
	if err := m.deps.Session.SelectModel(next); err != nil {
		m.logger.Error("model switch failed", "error", err)
		return m.setNotice("Could not switch model: " + err.Error())
	}
	return m.setNotice("Model: " + next.DisplayName())
}

func (m Model) clearConversation() (tea.Model, tea.Cmd) {
	if m.sending {
		return m.setNotice("Wait for the reply before clearing")
	}
	if err := m.deps.Session.Clear(); err != nil {
		m.logger.Error("clear failed", "error", err)
		return m.setNotice("Could not clear: " + err.Error())
	}
	m.filter = ""
	m.refresh()
	return m.setNotice("Conversation cleared")
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.searching = false
		m.filter = ""
		m.search.Blur()
		m.refresh()
		cmd := m.focusInput()
		return m, cmd
	case key.Matches(msg, m.keys.Send):
		m.searching = false
		m.search.Blur()
		cmd := m.focusInput()
		return m, cmd
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if q := strings.TrimSpace(m.search.Value()); q != m.filter {
		m.filter = q
		m.refresh()
		m.viewport.GotoTop()
	}
	return m, cmd
}

func (m *Model) focusInput() tea.Cmd {
	if m.sending {
		return nil
	}
	return m.input.Focus()
}

// =============================================================================
// DASHBOARD VIEW
// =============================================================================

func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.SwitchView):
		m.view = ViewChat
		m.refresh()
		cmd := m.focusInput()
		return m, cmd
	case key.Matches(msg, m.keys.Theme):
		return m.toggleTheme()
	case key.Matches(msg, m.keys.Export):
		return m, m.exportCmd()
	case key.Matches(msg, m.keys.Logout):
		return m.logout()
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// =============================================================================
// SHARED
// =============================================================================

func (m Model) toggleTheme() (tea.Model, tea.Cmd) {
	dark, err := m.deps.Theme.Toggle()
	if err != nil {
		m.logger.Error("theme toggle failed", "error", err)
	}
	m.applyTheme(dark)
	return m, nil
}

func (m *Model) applyTheme(dark bool) {
	if m.theme.IsDark == dark {
		return
	}
	m.theme = styles.NewTheme(dark)
	m.theme.SetSize(m.width, m.height)
	m.refresh()
}

// handleStorageChange reacts to writes made by another process.
func (m Model) handleStorageChange(msg kvChangedMsg) (tea.Model, tea.Cmd) {
	wait := waitForChange(m.changes)
	switch msg.key {
	case storage.KeyDarkMode:
		m.applyTheme(m.deps.Theme.Dark())
	case storage.KeyAuthToken:
		if m.view != ViewLogin && m.loginRequired() {
			next, cmd := m.showLogin()
			return next, tea.Batch(wait, cmd)
		}
	}
	return m, wait
}

func (m Model) setNotice(text string) (tea.Model, tea.Cmd) {
	m.noticeSeq++
	m.notice = text
	return m, clearNoticeAfter(m.noticeSeq, noticeTTL)
}

// resize lays out the components for a width x height terminal.
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.theme.SetSize(width, height)

	m.input.SetWidth(max(width-4, 10))
	m.search.Width = max(width-12, 10)
	m.viewport.Width = width
	m.viewport.Height = max(height-chromeHeight, 3)
	m.login.SetWidth(loginWidth(width))
	m.refresh()
}

func loginWidth(width int) int {
	return min(max(width-10, 30), 56)
}

// refresh re-renders the viewport content for the current view.
func (m *Model) refresh() {
	switch m.view {
	case ViewLogin:
		return
	case ViewDashboard:
		stats := telemetry.Compute(m.deps.Session.Messages(), nil)
		m.viewport.SetContent(components.RenderDashboard(stats, m.theme, m.viewport.Width-2))
		return
	}

	opts := components.MessageOptions{Width: m.viewport.Width - 2, ShowUsage: true}
	var msgs []model.Message
	if m.filter != "" {
		msgs = m.deps.Session.Search(m.filter)
		opts.Highlight = m.filter
		if len(msgs) == 0 {
			m.viewport.SetContent(m.theme.Muted.Render(fmt.Sprintf("No messages match %q", m.filter)))
			return
		}
		m.viewport.SetContent(components.RenderMessages(msgs, m.theme, opts))
		return
	}
	msgs = m.deps.Session.Messages()
	m.viewport.SetContent(components.RenderMessages(msgs, m.theme, opts))
	m.viewport.GotoBottom()
}
