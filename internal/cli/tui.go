// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"

	"github.com/jeranaias/thinkly/internal/export"
	"github.com/jeranaias/thinkly/internal/ui/chat"
)

// runTUI opens the terminal UI over the shared state.
func runTUI(ctx context.Context, a *app) error {
	if !IsTTY() || !IsStdoutTTY() {
		return newUsageError("the terminal UI needs an interactive terminal; use 'thinkly ask' or 'thinkly chat'")
	}
	if err := a.openExchange(); err != nil {
		return err
	}

	deps := chat.Deps{
		Session:  a.store,
		Exchange: a.exchange,
		Gate:     a.gate,
		Theme:    a.theme,
		Export:   export.DefaultOptions(),
		Logger:   a.logger,
	}
	// RELIABILITY: Only the file backend can report writes from other processes.
	if w, ok := a.kv.(chat.Watcher); ok {
		deps.Watcher = w
	}

	a.logger.Info("tui started")
	err := chat.Run(ctx, deps)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
