// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/thinkly/internal/telemetry"
	"github.com/jeranaias/thinkly/internal/ui/components"
	"github.com/jeranaias/thinkly/internal/ui/styles"
)

func newDashboardCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Print conversation analytics",
		Args:  withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			stats := telemetry.Compute(a.store.Messages(), nil)
			out := cmd.OutOrStdout()
			if a.jsonOut {
				return writeJSON(out, "dashboard", stats, nil)
			}
			theme := styles.NewTheme(a.theme.Dark())
			fmt.Fprintln(out, components.RenderDashboard(stats, theme, TerminalWidth()))
			return nil
		},
	}
}
