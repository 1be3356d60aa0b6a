// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/thinkly/internal/ui/styles"
	"github.com/jeranaias/thinkly/internal/util"
)

// Brand is the product name shown in the header.
const Brand = "ThinkLy"

// Header is the top bar with view tabs.
type Header struct {
	Tabs   []string
	Active int
	// Right is optional text on the right edge, such as the theme mode.
	Right string
	Width int
}

// View renders the header.
func (h Header) View(theme *styles.Theme) string {
	title := theme.HeaderTitle.Render(Brand)

	tabs := make([]string, 0, len(h.Tabs))
	for i, tab := range h.Tabs {
		if i == h.Active {
			tabs = append(tabs, theme.HeaderTabOn.Render(tab))
		} else {
			tabs = append(tabs, theme.HeaderTab.Render(tab))
		}
	}
	left := title + strings.Join(tabs, "")
	right := theme.HeaderTab.Render(h.Right)

	gap := h.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	filler := theme.Header.Render(util.PadRight("", gap))
	if gap == 0 {
		filler = ""
	}
	return left + filler + right
}
