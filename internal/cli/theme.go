// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/thinkly/internal/ui/styles"
)

const themeToggle = "toggle"

func newThemeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "theme [dark|light|toggle|auto]",
		Short: "Show or change dark/light mode",
		Long: `Show or change the darkMode preference shared by the terminal UI and
HTML export. "auto" forgets the stored choice so the [ui] theme setting
applies again.`,
		Args:      withUsage(cobra.MaximumNArgs(1)),
		ValidArgs: []string{styles.ModeDark, styles.ModeLight, themeToggle, styles.ModeAuto},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			if len(args) == 1 {
				if err := applyTheme(a.theme, args[0]); err != nil {
					return err
				}
			}

			dark := a.theme.Dark()
			_, stored := a.theme.Stored()
			mode := styles.ModeLight
			if dark {
				mode = styles.ModeDark
			}
			out := cmd.OutOrStdout()
			if a.jsonOut {
				return writeJSON(out, "theme", map[string]interface{}{"mode": mode, "stored": stored}, nil)
			}
			source := "stored preference"
			if !stored {
				source = "from [ui] theme = " + a.cfg.UI.Theme
			}
			fmt.Fprintf(out, "%s %s\n", titleStyle.Render(mode), mutedStyle.Render("("+source+")"))
			return nil
		},
	}
}

// applyTheme handles one theme argument.
func applyTheme(p *styles.Preference, arg string) error {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case themeToggle:
		_, err := p.Toggle()
		return err
	case styles.ModeAuto:
		return p.Reset()
	}
	dark, err := styles.ParseMode(arg)
	if err != nil {
		return newUsageError(err.Error())
	}
	return p.Set(dark)
}
