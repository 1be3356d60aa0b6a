// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/thinkly/internal/model"
	"github.com/jeranaias/thinkly/internal/provider"
)

// providerStatus is the result of one credential check.
type providerStatus struct {
	Model     model.ProviderID `json:"model"`
	OK        bool             `json:"ok"`
	Error     string           `json:"error,omitempty"`
	LatencyMS int64            `json:"latency_ms"`
}

type statusReport struct {
	Config    string           `json:"config"`
	Backend   string           `json:"backend"`
	DataDir   string           `json:"data_dir"`
	Model     model.ProviderID `json:"model"`
	Messages  int              `json:"messages"`
	Auth      string           `json:"auth"`
	Dark      bool             `json:"dark"`
	Providers []providerStatus `json:"providers,omitempty"`
}

func newStatusCommand(a *app) *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configuration, state and provider reachability",
		Args:  withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			report := statusReport{
				Config:   configPath(a),
				Backend:  a.cfg.Storage.Backend,
				DataDir:  a.cfg.Storage.DataDir,
				Model:    a.store.SelectedModel(),
				Messages: a.store.Len(),
				Auth:     authState(a),
				Dark:     a.theme.Dark(),
			}
			if !offline {
				providers := provider.NewSet(a.cfg, provider.Options{Logger: a.logger})
				report.Providers = checkProviders(cmd.Context(), providers, a.cfg.Exchange.Timeout())
			}

			out := cmd.OutOrStdout()
			if a.jsonOut {
				return writeJSON(out, "status", report, nil)
			}
			printStatus(out, report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "skip the provider credential checks")
	return cmd
}

// checkProviders validates every adapter concurrently. Results keep the
// model.Providers order.
func checkProviders(ctx context.Context, providers provider.Set, timeout time.Duration) []providerStatus {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results := make([]providerStatus, len(model.Providers))
	var g errgroup.Group
	for i, info := range model.Providers {
		i, id := i, info.ID
		g.Go(func() error {
			results[i] = providerStatus{Model: id}
			p, err := providers.Get(id)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			start := time.Now()
			err = p.Validate(ctx)
			results[i].LatencyMS = time.Since(start).Milliseconds()
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			results[i].OK = true
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func authState(a *app) string {
	if !a.gate.Configured() {
		return "disabled"
	}
	if since, ok := a.gate.Since(); ok {
		return "logged in since " + since.Local().Format("Jan 2 15:04")
	}
	return "logged out"
}

func configPath(a *app) string {
	if a.cfgPath != "" {
		return a.cfgPath
	}
	path, err := existingConfigPath()
	if err != nil {
		return "(defaults)"
	}
	return path
}

func printStatus(out io.Writer, r statusReport) {
	mode := "light"
	if r.Dark {
		mode = "dark"
	}
	fmt.Fprintln(out, titleStyle.Render("ThinkLy status"))
	fmt.Fprintln(out, field("Config", r.Config))
	fmt.Fprintln(out, field("Storage", r.Backend+" ("+r.DataDir+")"))
	fmt.Fprintln(out, field("Model", r.Model.DisplayName()))
	fmt.Fprintln(out, field("Messages", fmt.Sprintf("%d", r.Messages)))
	fmt.Fprintln(out, field("Login", r.Auth))
	fmt.Fprintln(out, field("Theme", mode))

	if len(r.Providers) == 0 {
		return
	}
	fmt.Fprintln(out)
	for _, p := range r.Providers {
		if p.OK {
			fmt.Fprintf(out, "%s %s %s\n", successStyle.Render("[OK]"), p.Model.DisplayName(),
				mutedStyle.Render(fmt.Sprintf("(%dms)", p.LatencyMS)))
			continue
		}
		fmt.Fprintf(out, "%s %s: %s\n", errorStyle.Render("[X]"), p.Model.DisplayName(), p.Error)
	}
}
