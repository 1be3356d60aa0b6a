// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// PALETTE
// =============================================================================

// Palette is the set of colors one theme draws from.
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color
	Info      lipgloss.Color

	Surface       lipgloss.Color
	SurfaceBright lipgloss.Color
	Overlay       lipgloss.Color

	Text         lipgloss.Color
	TextMuted    lipgloss.Color
	TextOnAccent lipgloss.Color

	UserBg      lipgloss.Color
	AssistantBg lipgloss.Color
	ErrorBg     lipgloss.Color
}

// DarkPalette is the default navy dark mode.
var DarkPalette = Palette{
	Primary:   "#667EEA",
	Secondary: "#764BA2",
	Success:   "#10B981",
	Error:     "#EF4444",
	Warning:   "#F59E0B",
	Info:      "#3B82F6",

	Surface:       "#1A1A2E",
	SurfaceBright: "#232342",
	Overlay:       "#3A3A5C",

	Text:         "#E6E6F0",
	TextMuted:    "#8B8BA7",
	TextOnAccent: "#FFFFFF",

	UserBg:      "#2D2F6B",
	AssistantBg: "#232342",
	ErrorBg:     "#4A1D24",
}

// LightPalette is the light counterpart of DarkPalette.
var LightPalette = Palette{
	Primary:   "#5A67D8",
	Secondary: "#6B46A1",
	Success:   "#059669",
	Error:     "#DC2626",
	Warning:   "#D97706",
	Info:      "#2563EB",

	Surface:       "#FFFFFF",
	SurfaceBright: "#F4F5FB",
	Overlay:       "#D9DBE8",

	Text:         "#1F2333",
	TextMuted:    "#6B7280",
	TextOnAccent: "#FFFFFF",

	UserBg:      "#E0E7FF",
	AssistantBg: "#F4F5FB",
	ErrorBg:     "#FEE2E2",
}

// PaletteFor returns the palette for a mode.
func PaletteFor(dark bool) Palette {
	if dark {
		return DarkPalette
	}
	return LightPalette
}

// =============================================================================
// STATUS INDICATORS
// =============================================================================

// ACCESSIBILITY: shape indicators accompany color for colorblind users.
const (
	IndicatorOK    = "[OK]"
	IndicatorError = "[X]"
	IndicatorWarn  = "[!]"
	IndicatorInfo  = "[i]"
)
