// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/thinkly/internal/model"
	"github.com/jeranaias/thinkly/internal/ui/styles"
	"github.com/jeranaias/thinkly/internal/util"
)

// Shortcut is one key hint in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar is the bottom line of the chat view.
type StatusBar struct {
	Model     model.ProviderID
	Busy      bool
	Messages  int
	LastError string
	// Notice is a transient message such as "Exported to ...".
	Notice    string
	Shortcuts []Shortcut
	Width     int
}

// View renders the status bar. A notice, then the last error, takes the
// space of the shortcut hints when present.
func (s StatusBar) View(theme *styles.Theme) string {
	left := theme.StatusModel.Render(s.Model.DisplayName())

	state := fmt.Sprintf("%d messages", s.Messages)
	if s.Busy {
		state = "sending..."
	}
	left += theme.StatusBar.Render(state)

	var right string
	switch {
	case s.Notice != "":
		right = theme.Success.Render(styles.IndicatorOK + " " + util.SingleLine(s.Notice))
	case s.LastError != "":
		right = theme.StatusError.Render(styles.IndicatorError + " " + util.SingleLine(s.LastError))
	default:
		right = s.renderShortcuts(theme)
	}

	avail := s.Width - lipgloss.Width(left) - 1
	if avail < 0 {
		avail = 0
	}
	if lipgloss.Width(right) > avail {
		// Re-render plain and truncated; styled text cannot be cut safely.
		plain := s.plainRight()
		right = theme.StatusBar.Render(util.TruncateWidth(plain, avail-2))
	}
	return left + " " + right
}

func (s StatusBar) renderShortcuts(theme *styles.Theme) string {
	parts := make([]string, 0, len(s.Shortcuts))
	for _, sc := range s.Shortcuts {
		parts = append(parts, theme.ShortcutKey.Render(sc.Key)+" "+theme.ShortcutDesc.Render(sc.Desc))
	}
	return strings.Join(parts, theme.ShortcutDesc.Render(" · "))
}

func (s StatusBar) plainRight() string {
	switch {
	case s.Notice != "":
		return styles.IndicatorOK + " " + util.SingleLine(s.Notice)
	case s.LastError != "":
		return styles.IndicatorError + " " + util.SingleLine(s.LastError)
	}
	parts := make([]string, 0, len(s.Shortcuts))
	for _, sc := range s.Shortcuts {
		parts = append(parts, sc.Key+" "+sc.Desc)
	}
	return strings.Join(parts, " · ")
}
