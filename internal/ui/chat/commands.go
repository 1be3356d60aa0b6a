// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/thinkly/internal/exchange"
	"github.com/jeranaias/thinkly/internal/export"
	"github.com/jeranaias/thinkly/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// exchangeDoneMsg carries the result of one Send.
type exchangeDoneMsg struct {
	outcome exchange.Outcome
	err     error
}

// stateMsg is an orchestrator state transition.
type stateMsg struct {
	state exchange.State
}

// loginResultMsg carries the result of a login attempt.
type loginResultMsg struct {
	err error
}

// kvChangedMsg reports a key written to durable storage.
type kvChangedMsg struct {
	key string
}

// exportDoneMsg carries the written path or the failure.
type exportDoneMsg struct {
	path string
	err  error
}

// clearNoticeMsg expires the notice with the matching sequence number.
type clearNoticeMsg struct {
	seq int
}

// =============================================================================
// COMMANDS
// =============================================================================

func sendCmd(ctx context.Context, o *exchange.Orchestrator, text string) tea.Cmd {
	return func() tea.Msg {
		out, err := o.Send(ctx, text)
		return exchangeDoneMsg{outcome: out, err: err}
	}
}

func waitForState(ch <-chan exchange.State) tea.Cmd {
	return func() tea.Msg {
		return stateMsg{state: <-ch}
	}
}

func waitForChange(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		return kvChangedMsg{key: <-ch}
	}
}

func (m Model) loginCmd(username, password, code string) tea.Cmd {
	gate := m.deps.Gate
	return func() tea.Msg {
		return loginResultMsg{err: gate.Login(username, password, code)}
	}
}

// exportCmd writes the conversation in the configured format. HTML follows
// the current theme.
func (m Model) exportCmd() tea.Cmd {
	opts := *m.deps.Export
	opts.Theme = styles.ModeLight
	if m.theme.IsDark {
		opts.Theme = styles.ModeDark
	}
	format := m.deps.ExportFormat
	conv := export.FromMessages(m.deps.Session.Messages(), m.deps.Session.SelectedModel())

	return func() tea.Msg {
		exporter, err := export.ForFormat(format, &opts)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		path, err := export.ToFile(conv, exporter, &opts)
		return exportDoneMsg{path: path, err: err}
	}
}

func clearNoticeAfter(seq int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}
