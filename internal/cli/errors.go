// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"

	"github.com/jeranaias/thinkly/internal/auth"
	"github.com/jeranaias/thinkly/internal/config"
	"github.com/jeranaias/thinkly/internal/provider"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitAuthError    = 4
	ExitNetworkError = 5
	ExitTimeoutError = 8
)

// ErrNotLoggedIn is returned by conversation commands when a login is required.
var ErrNotLoggedIn = errors.New("not logged in; run 'thinkly login' first")

// =============================================================================
// ERROR TYPES
// =============================================================================

// usageError marks invalid arguments.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func newUsageError(msg string) error {
	return &usageError{msg: msg}
}

// configError marks a failure to load or apply configuration.
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// reportedError wraps a failure that was already shown to the user, so
// Execute only sets the exit code.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ue *usageError
	var ce *configError
	var ve config.ValidateErrors
	switch {
	case errors.As(err, &ue):
		return ExitUsageError
	case errors.As(err, &ce), errors.As(err, &ve):
		return ExitConfigError
	case errors.Is(err, ErrNotLoggedIn),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrThrottled),
		errors.Is(err, auth.ErrCodeRequired),
		errors.Is(err, auth.ErrInvalidCode),
		errors.Is(err, auth.ErrNoCredentials):
		return ExitAuthError
	case errors.Is(err, context.DeadlineExceeded):
		return ExitTimeoutError
	}

	switch provider.KindOf(err) {
	case provider.KindUnauthorized:
		return ExitAuthError
	case provider.KindNetwork:
		return ExitNetworkError
	}
	return ExitGeneralError
}
