// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/thinkly/internal/config"
	"github.com/jeranaias/thinkly/internal/export"
	"github.com/jeranaias/thinkly/internal/telemetry"
	"github.com/jeranaias/thinkly/internal/ui/components"
	"github.com/jeranaias/thinkly/internal/ui/styles"
)

const chatHelp = `Commands:
  /model [gemini|mistral]   show or switch the model
  /history [n]              print the last n messages (default 10)
  /clear                    delete the conversation
  /export [md|json|html]    write the conversation to a file
  /dashboard                print conversation analytics
  /theme [dark|light|toggle|auto]
  /help                     show this help
  /quit, /exit              leave (Ctrl+D also works)`

func newChatCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Line-mode chat with input history",
		Long: `Chat without the full-screen UI. Arrow keys recall earlier input, which
is kept in $THINKLY_HOME/chat_history.

` + chatHelp,
		Args: withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			if err := a.openExchange(); err != nil {
				return err
			}
			r := &repl{a: a, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
			return r.run(cmd.Context())
		},
	}
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineInput wraps liner with a persistent history file.
// USABILITY: Arrow keys navigate earlier input, with readline-like editing.
type lineInput struct {
	line        *liner.State
	historyFile string
}

func newLineInput() *lineInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	in := &lineInput{line: line, historyFile: filepath.Join(dir, "chat_history")}
	if f, err := os.Open(in.historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	return in
}

func (in *lineInput) read(prompt string) (string, error) {
	text, err := in.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) != "" {
		in.line.AppendHistory(text)
	}
	return text, nil
}

// close saves history and restores the terminal.
// SECURITY: The history file is owner read/write only.
func (in *lineInput) close() {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(in.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			_, _ = in.line.WriteHistory(f)
			f.Close()
		}
	}
	_ = in.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

type repl struct {
	a      *app
	out    io.Writer
	errOut io.Writer
}

func (r *repl) run(ctx context.Context) error {
	fmt.Fprintf(r.out, "%s %s\n", titleStyle.Render("ThinkLy"),
		mutedStyle.Render("chatting with "+r.a.store.SelectedModel().DisplayName()+". /help for commands."))

	input := newLineInput()
	defer input.close()

	for {
		if ctx.Err() != nil {
			return nil
		}
		text, err := input.read(r.a.store.SelectedModel().ShortName() + "> ")
		if err != nil {
			// Ctrl+C or Ctrl+D at the prompt ends the session.
			fmt.Fprintln(r.out)
			return nil
		}
		more, err := r.handle(ctx, text)
		if err != nil {
			var reported *reportedError
			if !errors.As(err, &reported) {
				fmt.Fprintf(r.errOut, "%s %v\n", errorStyle.Render("[Error]"), err)
			}
		}
		if !more {
			return nil
		}
	}
}

// handle processes one line of input and reports whether to keep going.
func (r *repl) handle(ctx context.Context, text string) (bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return true, nil
	}
	if strings.EqualFold(text, "exit") || strings.EqualFold(text, "quit") {
		return false, nil
	}
	if !strings.HasPrefix(text, "/") {
		return true, ask(ctx, r.a, r.out, r.errOut, text, false)
	}

	fields := strings.Fields(text)
	command, args := strings.ToLower(fields[0]), fields[1:]
	switch command {
	case "/quit", "/exit":
		return false, nil
	case "/help", "/?":
		fmt.Fprintln(r.out, chatHelp)
	case "/model":
		if len(args) > 0 {
			if err := selectModel(r.a, args[0]); err != nil {
				return true, err
			}
		}
		printModels(r.out, r.a.store.SelectedModel())
	case "/history":
		return true, r.history(args)
	case "/clear":
		n := r.a.store.Len()
		if err := r.a.store.Clear(); err != nil {
			return true, err
		}
		fmt.Fprintf(r.out, "%s Deleted %d messages\n", successStyle.Render(styles.IndicatorOK), n)
	case "/export":
		return true, r.export(args)
	case "/dashboard":
		stats := telemetry.Compute(r.a.store.Messages(), nil)
		fmt.Fprintln(r.out, components.RenderDashboard(stats, styles.NewTheme(r.a.theme.Dark()), TerminalWidth()))
	case "/theme":
		if len(args) > 0 {
			if err := applyTheme(r.a.theme, args[0]); err != nil {
				return true, err
			}
		}
		mode := styles.ModeLight
		if r.a.theme.Dark() {
			mode = styles.ModeDark
		}
		fmt.Fprintln(r.out, "Theme: "+mode)
	default:
		return true, fmt.Errorf("unknown command %s (try /help)", command)
	}
	return true, nil
}

func (r *repl) history(args []string) error {
	limit := 10
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid count %q", args[0])
		}
		limit = n
	}
	msgs := r.a.store.Messages()
	if len(msgs) == 0 {
		fmt.Fprintln(r.out, "No messages yet")
		return nil
	}
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	printHistory(r.out, msgs)
	return nil
}

func (r *repl) export(args []string) error {
	format := export.Formats[0]
	if len(args) > 0 {
		format = args[0]
	}
	opts := export.DefaultOptions()
	opts.Theme = styles.ModeLight
	if r.a.theme.Dark() {
		opts.Theme = styles.ModeDark
	}
	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		return err
	}
	conv := export.FromMessages(r.a.store.Messages(), r.a.store.SelectedModel())
	path, err := export.ToFile(conv, exporter, opts)
	if errors.Is(err, export.ErrEmpty) {
		return errors.New("nothing to export: the conversation is empty")
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%s Exported to %s\n", successStyle.Render(styles.IndicatorOK), path)
	return nil
}
