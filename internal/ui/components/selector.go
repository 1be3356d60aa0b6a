// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/thinkly/internal/model"
	"github.com/jeranaias/thinkly/internal/ui/styles"
)

// RenderModelSelector lists the providers with the selected one marked.
func RenderModelSelector(selected model.ProviderID, theme *styles.Theme) string {
	lines := make([]string, 0, len(model.Providers))
	for _, p := range model.Providers {
		marker := "( )"
		name := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color)).Render(p.Name)
		if p.ID == selected {
			marker = "(•)"
			name = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Color)).Render(p.Name)
		}
		lines = append(lines, marker+" "+name+"  "+theme.Muted.Render(p.Description))
	}
	return strings.Join(lines, "\n")
}
