// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if a.jsonOut {
				return writeJSON(out, "version", map[string]string{
					"version":    Version,
					"commit":     GitCommit,
					"build_date": BuildDate,
					"go":         runtime.Version(),
				}, nil)
			}
			fmt.Fprintf(out, "thinkly %s\n", Version)
			fmt.Fprintln(out, field("Commit", GitCommit))
			fmt.Fprintln(out, field("Built", BuildDate))
			fmt.Fprintln(out, field("Go", runtime.Version()))
			return nil
		},
	}
}
