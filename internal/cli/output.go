// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/thinkly/internal/ui/styles"
)

// USABILITY: Colors are off for piped output and when NO_COLOR is set.
func init() {
	lipgloss.SetColorProfile(colorProfile())
}

func colorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return termenv.TrueColor
	}
	if !IsStdoutTTY() {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.DarkPalette.Primary)

	labelStyle = lipgloss.NewStyle().
			Foreground(styles.DarkPalette.TextMuted).
			Width(16)

	valueStyle = lipgloss.NewStyle()

	successStyle = lipgloss.NewStyle().
			Foreground(styles.DarkPalette.Success)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.DarkPalette.Error)

	mutedStyle = lipgloss.NewStyle().
			Foreground(styles.DarkPalette.TextMuted)

	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.DarkPalette.Secondary)
)

// field renders one "label  value" row.
func field(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// renderMarkdown renders a reply for the terminal with glamour. The input is
// returned unchanged when rendering is unavailable.
func renderMarkdown(content string, dark bool, width int) string {
	style := "light"
	if dark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return out
}

// =============================================================================
// JSON OUTPUT
// =============================================================================

// jsonResponse is the envelope printed by --json.
type jsonResponse struct {
	Success   bool        `json:"success"`
	Command   string      `json:"command"`
	Data      interface{} `json:"data,omitempty"`
	Error     *string     `json:"error"`
	Timestamp string      `json:"timestamp"`
}

func writeJSON(w io.Writer, command string, data interface{}, err error) error {
	resp := jsonResponse{
		Success:   err == nil,
		Command:   command,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err != nil {
		msg := err.Error()
		resp.Error = &msg
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
