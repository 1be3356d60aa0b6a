// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/thinkly/internal/model"
	"github.com/jeranaias/thinkly/internal/ui/styles"
)

// =============================================================================
// THINKING INDICATOR
// =============================================================================

// Thinking is shown while a reply is pending.
type Thinking struct {
	spinner spinner.Model
	start   time.Time
	model   model.ProviderID
	active  bool
}

// NewThinking creates an idle indicator.
func NewThinking() Thinking {
	sp := spinner.New()
	// ACCESSIBILITY: ASCII frames render on every terminal.
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	return Thinking{spinner: sp}
}

// Start activates the indicator for a request to p and returns the first tick.
func (t *Thinking) Start(p model.ProviderID, now time.Time) tea.Cmd {
	t.active = true
	t.start = now
	t.model = p
	return t.spinner.Tick
}

// Stop hides the indicator.
func (t *Thinking) Stop() {
	t.active = false
}

// Active reports whether the indicator is shown.
func (t Thinking) Active() bool {
	return t.active
}

// Update advances the animation. Ticks stop once the indicator is stopped.
func (t Thinking) Update(msg tea.Msg) (Thinking, tea.Cmd) {
	if !t.active {
		return t, nil
	}
	var cmd tea.Cmd
	t.spinner, cmd = t.spinner.Update(msg)
	return t, cmd
}

// View renders "<frame> Gemini is thinking... 3s".
func (t Thinking) View(theme *styles.Theme, now time.Time) string {
	if !t.active {
		return ""
	}
	elapsed := now.Sub(t.start).Truncate(time.Second)
	return theme.Spinner.Render(t.spinner.View()) + " " +
		theme.ThinkingText.Render(fmt.Sprintf("%s is thinking... %s", t.model.ShortName(), elapsed))
}
