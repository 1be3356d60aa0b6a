// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/thinkly/internal/model"
	"github.com/jeranaias/thinkly/internal/ui/components"
	"github.com/jeranaias/thinkly/internal/ui/styles"
)

// =============================================================================
// MODEL
// =============================================================================

func newModelCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "model [gemini|mistral]",
		Short:     "Show or switch the selected model",
		Args:      withUsage(cobra.MaximumNArgs(1)),
		ValidArgs: []string{string(model.ProviderGemini), string(model.ProviderMistral)},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				if err := selectModel(a, args[0]); err != nil {
					return err
				}
			}
			if a.jsonOut {
				return writeJSON(out, "model", map[string]string{"model": string(a.store.SelectedModel())}, nil)
			}
			printModels(out, a.store.SelectedModel())
			return nil
		},
	}
}

// selectModel parses and persists a model choice.
func selectModel(a *app, name string) error {
	id, err := model.ParseProvider(name)
	if err != nil {
		return newUsageError(err.Error())
	}
	return a.store.SelectModel(id)
}

func printModels(out io.Writer, selected model.ProviderID) {
	for _, p := range model.Providers {
		marker := "  "
		name := p.Name
		if p.ID == selected {
			marker = successStyle.Render("* ")
			name = titleStyle.Render(p.Name)
		}
		fmt.Fprintf(out, "%s%-8s %s  %s\n", marker, p.ID, name, mutedStyle.Render(p.Description))
	}
}

// =============================================================================
// HISTORY
// =============================================================================

func newHistoryCommand(a *app) *cobra.Command {
	var (
		query string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the conversation",
		Example: `  thinkly history
  thinkly history --search goroutine
  thinkly history --limit 10 --json`,
		Args: withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			msgs := a.store.Search(query)
			if limit > 0 && len(msgs) > limit {
				msgs = msgs[len(msgs)-limit:]
			}
			out := cmd.OutOrStdout()
			if a.jsonOut {
				if msgs == nil {
					msgs = []model.Message{}
				}
				return writeJSON(out, "history", msgs, nil)
			}
			if len(msgs) == 0 {
				if query != "" {
					fmt.Fprintf(out, "No messages match %q\n", query)
				} else {
					fmt.Fprintln(out, "No messages yet")
				}
				return nil
			}
			printHistory(out, msgs)
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "search", "s", "", "only messages containing this text (case-insensitive)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "only the last N messages")
	return cmd
}

func printHistory(out io.Writer, msgs []model.Message) {
	theme := styles.NewTheme(true)
	for i, m := range msgs {
		if i > 0 {
			fmt.Fprintln(out)
		}
		label := m.Role.DisplayName()
		if m.Role != model.RoleUser && m.Model != "" {
			label += " (" + m.Model.ShortName() + ")"
		}
		style := titleStyle.Foreground(theme.RoleColor(string(m.Role)))
		fmt.Fprintf(out, "%s %s\n", style.Render(label), mutedStyle.Render(components.FormatTime(m.Timestamp)))
		fmt.Fprintln(out, strings.TrimRight(m.Content, "\n"))
	}
}

// =============================================================================
// CLEAR
// =============================================================================

func newClearCommand(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the conversation (the selected model is kept)",
		Args:  withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			n := a.store.Len()
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Conversation is already empty")
				return nil
			}
			if !yes {
				if !IsTTY() {
					return newUsageError("refusing to clear without --yes when stdin is not a terminal")
				}
				if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete %d messages?", n)) {
					return errors.New("aborted")
				}
			}
			if err := a.store.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted %d messages\n", successStyle.Render(styles.IndicatorOK), n)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
