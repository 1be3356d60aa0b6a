// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/thinkly/internal/markup"
)

// Theme holds the styles for one mode.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile
	Palette      Palette

	Width  int
	Height int

	// ==========================================================================
	// CHROME
	// ==========================================================================

	App         lipgloss.Style
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderTab   lipgloss.Style
	HeaderTabOn lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	ErrorBubble     lipgloss.Style
	RoleLabel       lipgloss.Style
	Timestamp       lipgloss.Style
	ModelTag        lipgloss.Style
	InlineCode      lipgloss.Style
	CodeBlock       lipgloss.Style
	CodeLangBadge   lipgloss.Style
	Highlight       lipgloss.Style

	// ==========================================================================
	// INPUT AND STATUS
	// ==========================================================================

	InputBox     lipgloss.Style
	InputBoxBusy lipgloss.Style
	StatusBar    lipgloss.Style
	StatusModel  lipgloss.Style
	StatusError  lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style

	// ==========================================================================
	// DASHBOARD
	// ==========================================================================

	Card      lipgloss.Style
	CardTitle lipgloss.Style
	CardValue lipgloss.Style
	Bar       lipgloss.Style
	BarEmpty  lipgloss.Style

	// ==========================================================================
	// LOGIN
	// ==========================================================================

	LoginBox   lipgloss.Style
	LoginTitle lipgloss.Style
	LoginError lipgloss.Style
	Muted      lipgloss.Style
	Success    lipgloss.Style
	Error      lipgloss.Style
}

// NewTheme creates a theme for the given mode.
func NewTheme(dark bool) *Theme {
	t := &Theme{
		IsDark:       dark,
		ColorProfile: termenv.ColorProfile(),
		Palette:      PaletteFor(dark),
	}
	t.initStyles()
	return t
}

// Toggle returns the theme for the opposite mode, keeping the size.
func (t *Theme) Toggle() *Theme {
	next := NewTheme(!t.IsDark)
	next.SetSize(t.Width, t.Height)
	return next
}

// ChromaStyle names the syntax-highlighting style for this mode.
func (t *Theme) ChromaStyle() string {
	if t.IsDark {
		return markup.StyleDark
	}
	return markup.StyleLight
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// initStyles builds every style from the palette.
func (t *Theme) initStyles() {
	p := t.Palette

	t.App = lipgloss.NewStyle().Foreground(p.Text)

	// Header
	t.Header = lipgloss.NewStyle().
		Foreground(p.TextOnAccent).
		Background(p.Primary).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.TextOnAccent).
		Background(p.Secondary).
		Padding(0, 1)
	t.HeaderTab = lipgloss.NewStyle().
		Foreground(p.TextOnAccent).
		Background(p.Primary).
		Padding(0, 1)
	t.HeaderTabOn = t.HeaderTab.
		Bold(true).
		Underline(true)

	// Messages
	t.UserBubble = lipgloss.NewStyle().
		Foreground(p.Text).
		Background(p.UserBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(0, 1).
		MarginLeft(4)
	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(p.Text).
		Background(p.AssistantBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Success).
		Padding(0, 1).
		MarginRight(4)
	t.ErrorBubble = lipgloss.NewStyle().
		Foreground(p.Error).
		Background(p.ErrorBg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(p.Error).
		BorderLeft(true).
		BorderTop(false).
		BorderRight(false).
		BorderBottom(false).
		PaddingLeft(1).
		MarginRight(4)
	t.RoleLabel = lipgloss.NewStyle().Bold(true).Foreground(p.Primary)
	t.Timestamp = lipgloss.NewStyle().Foreground(p.TextMuted)
	t.ModelTag = lipgloss.NewStyle().Foreground(p.Secondary).Italic(true)
	t.InlineCode = lipgloss.NewStyle().
		Foreground(p.Secondary).
		Background(p.SurfaceBright)
	t.CodeBlock = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Overlay).
		Padding(0, 1)
	t.CodeLangBadge = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.TextOnAccent).
		Background(p.Secondary).
		Padding(0, 1)
	t.Highlight = lipgloss.NewStyle().
		Foreground(p.Surface).
		Background(p.Warning)

	// Input and status
	t.InputBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(0, 1)
	t.InputBoxBusy = t.InputBox.BorderForeground(p.Overlay)
	t.StatusBar = lipgloss.NewStyle().
		Foreground(p.TextMuted).
		Padding(0, 1)
	t.StatusModel = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.TextOnAccent).
		Background(p.Secondary).
		Padding(0, 1)
	t.StatusError = lipgloss.NewStyle().Foreground(p.Error).Bold(true)
	t.ShortcutKey = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(p.TextMuted)
	t.Spinner = lipgloss.NewStyle().Foreground(p.Primary)
	t.ThinkingText = lipgloss.NewStyle().Foreground(p.TextMuted).Italic(true)

	// Dashboard
	t.Card = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Overlay).
		Padding(0, 1)
	t.CardTitle = lipgloss.NewStyle().Foreground(p.TextMuted)
	t.CardValue = lipgloss.NewStyle().Bold(true).Foreground(p.Primary)
	t.Bar = lipgloss.NewStyle().Foreground(p.Primary)
	t.BarEmpty = lipgloss.NewStyle().Foreground(p.Overlay)

	// Login
	t.LoginBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(1, 3)
	t.LoginTitle = lipgloss.NewStyle().Bold(true).Foreground(p.Primary)
	t.LoginError = lipgloss.NewStyle().Foreground(p.Error)
	t.Muted = lipgloss.NewStyle().Foreground(p.TextMuted)
	t.Success = lipgloss.NewStyle().Foreground(p.Success).Bold(true)
	t.Error = lipgloss.NewStyle().Foreground(p.Error).Bold(true)
}

// RoleColor returns the accent for a message role name.
func (t *Theme) RoleColor(role string) lipgloss.Color {
	switch role {
	case "user":
		return t.Palette.Primary
	case "assistant":
		return t.Palette.Success
	case "error":
		return t.Palette.Error
	default:
		return t.Palette.TextMuted
	}
}

// ProviderColor returns the accent used for a provider in charts.
func (t *Theme) ProviderColor(id string) lipgloss.Color {
	switch id {
	case "gemini":
		return t.Palette.Primary
	case "mistral":
		return t.Palette.Secondary
	default:
		return t.Palette.Info
	}
}
