// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/jeranaias/thinkly/internal/config"
)

const redacted = "[REDACTED]"

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit the configuration file",
		Args:  withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		newConfigShowCommand(a),
		newConfigGetCommand(a),
		newConfigSetCommand(a),
		newConfigPathCommand(a),
		newConfigInitCommand(a),
	)
	return cmd
}

func newConfigShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets redacted",
		Args:  withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.jsonOut {
				return writeJSON(out, "config show", cfg.Redacted(), nil)
			}
			return toml.NewEncoder(out).Encode(cfg.Redacted())
		},
	}
}

func newConfigGetCommand(a *app) *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting, e.g. exchange.timeout_secs",
		Args:  withUsage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			key := args[0]
			value, err := cfg.Get(key)
			if err != nil {
				return newUsageError(err.Error())
			}
			// SECURITY: Credentials stay hidden unless asked for.
			if config.IsSecret(key) && !reveal && value != "" {
				value = redacted
			}
			out := cmd.OutOrStdout()
			if a.jsonOut {
				return writeJSON(out, "config get", map[string]interface{}{"key": key, "value": value}, nil)
			}
			fmt.Fprintln(out, value)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "print secrets in clear text")
	return cmd
}

func newConfigSetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting in the config file",
		Long: `Change one setting in the config file. The file is created if needed.
Environment overrides are not written back.

Keys:
  ` + strings.Join(config.Keys(), "\n  "),
		Args: withUsage(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := writableConfigPath(a)
			if err != nil {
				return err
			}
			if err := setConfigValue(path, args[0], args[1]); err != nil {
				return err
			}
			if !a.jsonOut {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s updated in %s\n", successStyle.Render("[OK]"), args[0], path)
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), "config set", map[string]string{"key": args[0], "path": path}, nil)
		},
	}
}

// setConfigValue rewrites the file at path with key set to value. The file
// is read without environment overrides so they never leak into it.
func setConfigValue(path, key, value string) error {
	cfg := config.Default()
	if _, err := os.Stat(path); err == nil {
		if err := decodeConfig(cfg, path); err != nil {
			return &configError{err: err}
		}
	}
	if err := cfg.Set(key, value); err != nil {
		return newUsageError(err.Error())
	}

	check := cfg.Clone()
	if err := check.SetDefaults(); err != nil {
		return &configError{err: err}
	}
	if err := check.Validate(); err != nil {
		return err
	}

	if strings.HasSuffix(path, ".json") {
		return config.SaveJSON(cfg, path)
	}
	return config.SaveTOML(cfg, path)
}

func decodeConfig(cfg *config.Config, path string) error {
	if strings.HasSuffix(path, ".json") {
		return config.LoadJSON(cfg, path)
	}
	return config.LoadTOML(cfg, path)
}

func newConfigPathCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := writableConfigPath(a)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newConfigInitCommand(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the defaults",
		Args:  withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := writableConfigPath(a)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return newUsageError(fmt.Sprintf("%s already exists (use --force to overwrite)", path))
			}
			if err := config.SaveTOML(config.Default(), path); err != nil {
				return &configError{err: err}
			}
			printNextSteps(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func printNextSteps(out io.Writer, path string) {
	fmt.Fprintf(out, "%s Wrote %s\n\n", successStyle.Render("[OK]"), path)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  thinkly config set gemini.api_key <key>    "+mutedStyle.Render("or GEMINI_API_KEY"))
	fmt.Fprintln(out, "  thinkly config set mistral.api_key <key>   "+mutedStyle.Render("or MISTRAL_API_KEY"))
	fmt.Fprintln(out, "  thinkly status")
}

// existingConfigPath returns the first config file that exists.
func existingConfigPath() (string, error) {
	for _, pathFn := range []func() (string, error){config.ConfigPathTOML, config.ConfigPathJSON} {
		path, err := pathFn()
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", os.ErrNotExist
}

// writableConfigPath is --config, else the existing file, else config.toml.
func writableConfigPath(a *app) (string, error) {
	if a.cfgPath != "" {
		return a.cfgPath, nil
	}
	path, err := existingConfigPath()
	if err == nil {
		return path, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", &configError{err: err}
	}
	path, err = config.ConfigPathTOML()
	if err != nil {
		return "", &configError{err: err}
	}
	return path, nil
}
