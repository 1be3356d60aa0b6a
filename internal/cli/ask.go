// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/thinkly/internal/exchange"
	"github.com/jeranaias/thinkly/internal/model"
)

// askResult is the --json payload of ask.
type askResult struct {
	Model     model.ProviderID `json:"model"`
	Reply     string           `json:"reply"`
	Usage     *model.Usage     `json:"usage,omitempty"`
	ElapsedMS int64            `json:"elapsed_ms"`
}

func newAskCommand(a *app) *cobra.Command {
	var (
		modelName string
		raw       bool
	)
	cmd := &cobra.Command{
		Use:   "ask [text...]",
		Short: "Send one message and print the reply",
		Long: `Send one message in the current conversation and print the reply.

With no arguments, or "-", the message is read from stdin.`,
		Example: `  thinkly ask "Explain goroutines in one paragraph"
  thinkly ask --model mistral "Write a haiku about Go"
  git diff | thinkly ask -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := messageText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}
			if err := a.openExchange(); err != nil {
				return err
			}
			if modelName != "" {
				if err := selectModel(a, modelName); err != nil {
					return err
				}
			}
			return ask(cmd.Context(), a, cmd.OutOrStdout(), cmd.ErrOrStderr(), text, raw)
		},
	}
	cmd.Flags().StringVarP(&modelName, "model", "m", "", "switch to this model first (gemini or mistral)")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the reply without markdown rendering")
	return cmd
}

// messageText joins args, or reads stdin for none or "-".
func messageText(in io.Reader, args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		args = []string{string(data)}
	}
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return "", newUsageError("message is empty")
	}
	return text, nil
}

// ask runs one exchange and prints the reply, or the error message.
func ask(ctx context.Context, a *app, out, errOut io.Writer, text string, raw bool) error {
	outcome, err := a.exchange.Send(ctx, text)
	if err != nil {
		return err
	}

	if outcome.State == exchange.StateFailed {
		cause := outcome.Err
		if cause == nil {
			cause = errors.New(outcome.Reply.Content)
		}
		if a.jsonOut {
			_ = writeJSON(out, "ask", nil, errors.New(outcome.Reply.Content))
		} else {
			fmt.Fprintln(errOut, errorStyle.Render(outcome.Reply.Content))
		}
		return &reportedError{err: cause}
	}

	if a.jsonOut {
		return writeJSON(out, "ask", askResult{
			Model:     outcome.Reply.Model,
			Reply:     outcome.Reply.Content,
			Usage:     outcome.Reply.Usage,
			ElapsedMS: outcome.Elapsed.Milliseconds(),
		}, nil)
	}
	printReply(a, out, outcome.Reply, raw)
	return nil
}

// printReply renders an assistant message for the terminal.
func printReply(a *app, out io.Writer, reply model.Message, raw bool) {
	if raw || !IsStdoutTTY() {
		fmt.Fprintln(out, reply.Content)
		return
	}
	fmt.Fprintln(out, promptStyle.Render(reply.Model.ShortName()))
	fmt.Fprint(out, renderMarkdown(reply.Content, a.theme.Dark(), min(TerminalWidth(), a.cfg.UI.WordWrap)))
	if reply.Usage != nil && reply.Usage.TotalTokens > 0 {
		prefix := ""
		if reply.Usage.Estimated {
			prefix = "~"
		}
		fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%s%d tokens", prefix, reply.Usage.TotalTokens)))
	}
}
