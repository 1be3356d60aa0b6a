// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/thinkly/internal/export"
	"github.com/jeranaias/thinkly/internal/ui/styles"
)

func newExportCommand(a *app) *cobra.Command {
	opts := export.DefaultOptions()
	var (
		format string
		theme  string
		noMeta bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the conversation to a Markdown, JSON or HTML file",
		Example: `  thinkly export
  thinkly export --format html --open
  thinkly export --format json --out ~/exports`,
		Args: withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			exporter, err := export.ForFormat(format, opts)
			if err != nil {
				return newUsageError(err.Error())
			}

			opts.IncludeMetadata = !noMeta
			switch strings.ToLower(theme) {
			case "":
				opts.Theme = styles.ModeLight
				if a.theme.Dark() {
					opts.Theme = styles.ModeDark
				}
			case styles.ModeDark, styles.ModeLight:
				opts.Theme = strings.ToLower(theme)
			default:
				return newUsageError(fmt.Sprintf("unknown theme %q (use dark or light)", theme))
			}

			conv := export.FromMessages(a.store.Messages(), a.store.SelectedModel())
			path, err := export.ToFile(conv, exporter, opts)
			if errors.Is(err, export.ErrEmpty) {
				return errors.New("nothing to export: the conversation is empty")
			}
			if err != nil {
				return err
			}
			a.logger.Info("conversation exported", "path", path, "format", format)

			out := cmd.OutOrStdout()
			if a.jsonOut {
				return writeJSON(out, "export", map[string]string{"path": path, "format": format}, nil)
			}
			fmt.Fprintf(out, "%s Exported %d messages to %s\n",
				successStyle.Render(styles.IndicatorOK), len(conv.Messages), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", export.Formats[0], "md, json or html")
	cmd.Flags().StringVarP(&opts.OutputDir, "out", "o", opts.OutputDir, "output directory")
	cmd.Flags().BoolVar(&opts.Open, "open", false, "open the file after writing")
	cmd.Flags().StringVar(&theme, "theme", "", "HTML theme, dark or light (default: current theme)")
	cmd.Flags().BoolVar(&noMeta, "no-metadata", false, "omit the header block and token usage")
	return cmd
}
