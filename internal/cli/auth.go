// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/thinkly/internal/auth"
	"github.com/jeranaias/thinkly/internal/ui/styles"
)

// =============================================================================
// LOGIN / LOGOUT
// =============================================================================

func newLoginCommand(a *app) *cobra.Command {
	var username, code string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start a login session",
		Long: `Start a login session with the [auth] credentials from the config file.

The password is read without echo. Pipe it on stdin for scripted use.`,
		Args: withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			if !a.gate.Configured() {
				return auth.ErrNoCredentials
			}
			in, out := cmd.InOrStdin(), cmd.OutOrStdout()

			if username == "" {
				fmt.Fprint(out, "Username: ")
				line, err := readLine(in)
				if err != nil {
					return err
				}
				username = strings.TrimSpace(line)
			}
			password, err := readSecret(in, out, "Password: ")
			if err != nil {
				return err
			}
			if a.gate.RequiresCode() && code == "" {
				line, err := readSecret(in, out, "Authentication code: ")
				if err != nil {
					return err
				}
				code = strings.TrimSpace(line)
			}

			if err := a.gate.Login(username, password, code); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render(auth.DisplayMessage(err)))
				return &reportedError{err: err}
			}
			fmt.Fprintf(out, "%s Logged in as %s\n", successStyle.Render(styles.IndicatorOK), username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username (prompted when omitted)")
	cmd.Flags().StringVar(&code, "code", "", "one-time code when a TOTP secret is configured")
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the login session",
		Args:  withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			if err := a.gate.Logout(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Logged out\n", successStyle.Render(styles.IndicatorOK))
			return nil
		},
	}
}

// =============================================================================
// CREDENTIAL HELPERS
// =============================================================================

func newAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Credential helpers for the [auth] section",
	}
	cmd.AddCommand(newHashPasswordCommand(), newTOTPCommand())
	return cmd
}

func newHashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash for auth.password_hash",
		Args:  withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := cmd.InOrStdin(), cmd.ErrOrStderr()
			password, err := readSecret(in, out, "Password: ")
			if err != nil {
				return err
			}
			if password == "" {
				return newUsageError("password is empty")
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func newTOTPCommand() *cobra.Command {
	var account string
	cmd := &cobra.Command{
		Use:   "totp",
		Short: "Generate a secret for auth.totp_secret",
		Long: `Generate a TOTP secret. Store the secret with
"thinkly config set auth.totp_secret <secret>" and add the otpauth URL to an
authenticator app.`,
		Args: withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if account == "" {
				return errors.New("--account is required")
			}
			secret, url, err := auth.NewTOTPSecret(account)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, field("Secret", secret))
			fmt.Fprintln(out, field("URL", url))
			return nil
		},
	}
	cmd.Flags().StringVar(&account, "account", "", "account name shown in the authenticator")
	return cmd
}
