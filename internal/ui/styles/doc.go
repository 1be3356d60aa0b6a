// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the ThinkLy TUI.

# Palettes (colors.go)

Two fixed palettes, Dark and Light, share one set of semantic slots:

	Primary, Secondary - brand gradient (#667eea → #764ba2)
	Success, Error     - assistant replies and error messages
	Surface, Overlay   - backgrounds and borders
	Text, TextMuted    - body text and hints

Colors are fixed per mode; the darkMode preference picks the palette.

# Theme (theme.go)

	theme := styles.NewTheme(true)
	theme.UserBubble.Render("Hello")

# Preference (preference.go)

The darkMode key holds a JSON boolean. When it is absent the [ui] theme
setting decides, and "auto" asks the terminal via termenv.
*/
package styles
