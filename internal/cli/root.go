// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/thinkly/internal/auth"
	"github.com/jeranaias/thinkly/internal/config"
	"github.com/jeranaias/thinkly/internal/exchange"
	"github.com/jeranaias/thinkly/internal/logging"
	"github.com/jeranaias/thinkly/internal/provider"
	"github.com/jeranaias/thinkly/internal/session"
	"github.com/jeranaias/thinkly/internal/storage"
	"github.com/jeranaias/thinkly/internal/ui/styles"
)

// Version information, set at build time with -ldflags.
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// APPLICATION STATE
// =============================================================================

// app holds what commands share. Everything past the flags is opened lazily
// so that commands such as version and config path work without state.
type app struct {
	cfgPath string
	jsonOut bool

	cfg     *config.Config
	logger  *slog.Logger
	closers []io.Closer

	kv       storage.KV
	store    *session.Store
	gate     *auth.Gate
	theme    *styles.Preference
	exchange *exchange.Orchestrator
}

// loadConfig reads the config file once.
func (a *app) loadConfig() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	var (
		cfg *config.Config
		err error
	)
	if a.cfgPath != "" {
		cfg, err = config.LoadFromPath(a.cfgPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, &configError{err: err}
	}
	a.cfg = cfg
	return cfg, nil
}

// open loads config, logging and durable state.
func (a *app) open() error {
	if a.store != nil {
		return nil
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	logger, closer, err := logging.Setup(cfg.Log)
	if err != nil {
		// Logging is best effort; state is not.
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		logger = logging.Discard()
	} else {
		a.closers = append(a.closers, closer)
	}
	a.logger = logger

	kv, err := storage.Open(cfg.Storage)
	if err != nil {
		return &configError{err: fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)}
	}
	a.kv = kv
	a.closers = append(a.closers, kv)

	a.store = session.Open(kv, logger)
	a.gate = auth.New(cfg.Auth, kv, logger)
	a.theme = styles.NewPreference(kv, cfg.UI.Theme)
	logger.Debug("state opened", "backend", cfg.Storage.Backend, "messages", a.store.Len())
	return nil
}

// openExchange builds the providers and the orchestrator on top of open.
func (a *app) openExchange() error {
	if err := a.open(); err != nil {
		return err
	}
	if a.exchange != nil {
		return nil
	}
	providers := provider.NewSet(a.cfg, provider.Options{Logger: a.logger})
	a.exchange = exchange.New(a.store, providers, exchange.Options{
		Timeout: a.cfg.Exchange.Timeout(),
		Logger:  a.logger,
	})
	return nil
}

// requireLogin opens state and fails when a login session is required but
// missing.
func (a *app) requireLogin() error {
	if err := a.open(); err != nil {
		return err
	}
	if a.gate.Configured() && !a.gate.Authenticated() {
		return ErrNotLoggedIn
	}
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
	a.closers = nil
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// newRootCommand builds the command tree over a.
func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "thinkly",
		Short:         "Chat with Gemini and Mistral from the terminal",
		Long:          "thinkly is a chat client for Google Gemini and Mistral with a terminal UI,\nconversation analytics and export.",
		Args:          withUsage(cobra.NoArgs),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), a)
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "config file (default $THINKLY_HOME/config.toml)")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "print machine-readable JSON where supported")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return newUsageError(err.Error())
	})

	root.AddCommand(
		newAskCommand(a),
		newChatCommand(a),
		newModelCommand(a),
		newHistoryCommand(a),
		newClearCommand(a),
		newDashboardCommand(a),
		newExportCommand(a),
		newLoginCommand(a),
		newLogoutCommand(a),
		newAuthCommand(),
		newThemeCommand(a),
		newStatusCommand(a),
		newConfigCommand(a),
		newVersionCommand(a),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	return execute(ctx, args, os.Stdin, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	a := &app{}
	defer a.close()

	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	var reported *reportedError
	if !errors.As(err, &reported) {
		fmt.Fprintln(errOut, errorStyle.Render("Error:")+" "+err.Error())
	}
	return ExitCode(err)
}

// withUsage marks argument validation failures as usage errors.
func withUsage(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return newUsageError(err.Error())
		}
		return nil
	}
}
