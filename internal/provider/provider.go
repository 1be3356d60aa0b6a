// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jeranaias/thinkly/internal/config"
	"github.com/jeranaias/thinkly/internal/logging"
	"github.com/jeranaias/thinkly/internal/model"
)

// =============================================================================
// CONTRACT
// =============================================================================

// Provider is one LLM backend.
type Provider interface {
	// ID returns the provider identifier.
	ID() model.ProviderID
	// Send dispatches message with the prior conversation. history excludes
	// message itself. Failures are *Error, except ErrInvalidInput and
	// context errors raised while waiting on the pacer.
	Send(ctx context.Context, message string, history []Turn) (Result, error)
	// Validate checks the configured credential with a minimal request.
	Validate(ctx context.Context) error
}

// Turn is one prior {role, content} pair.
type Turn struct {
	Role    model.Role
	Content string
}

// Result is a normalized successful reply.
type Result struct {
	Message string
	Usage   *model.Usage
}

// Options carries the collaborators shared by every adapter.
type Options struct {
	// HTTPClient defaults to a shared pooled client.
	HTTPClient Doer
	// Pacer defaults to a new pacer at the configured interval. Pass the
	// same instance to every adapter so the floor applies across providers.
	Pacer *Pacer
	// Estimator defaults to the configured usage.tokenizer.
	Estimator Estimator
	Logger    *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.HTTPClient == nil {
		o.HTTPClient = sharedHTTPClient
	}
	if o.Pacer == nil {
		o.Pacer = NewPacer(DefaultMinInterval)
	}
	if o.Estimator == nil {
		o.Estimator = CharEstimator{}
	}
	o.Logger = logging.OrDefault(o.Logger)
	return o
}

// conversational returns the turns that may be forwarded to a provider:
// user and assistant only, in order.
func conversational(history []Turn) []Turn {
	out := make([]Turn, 0, len(history))
	for _, t := range history {
		if t.Role == model.RoleUser || t.Role == model.RoleAssistant {
			out = append(out, t)
		}
	}
	return out
}

// checkInput trims message and rejects it when empty.
func checkInput(message string) (string, error) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return "", ErrInvalidInput
	}
	return trimmed, nil
}

// =============================================================================
// REGISTRY
// =============================================================================

// Set maps provider identifiers to adapters.
type Set map[model.ProviderID]Provider

// NewSet builds every adapter from cfg. Collaborators missing from opts are
// derived from cfg: one pacer at exchange.min_interval_ms shared by all
// adapters, and the usage.tokenizer estimator.
func NewSet(cfg *config.Config, opts Options) Set {
	if opts.Pacer == nil {
		opts.Pacer = NewPacer(cfg.Exchange.MinInterval())
	}
	if opts.Estimator == nil {
		opts.Estimator = NewEstimator(cfg.Usage.Tokenizer, opts.Logger)
	}
	return Set{
		model.ProviderGemini:  NewGemini(cfg.Gemini, opts),
		model.ProviderMistral: NewMistral(cfg.Mistral, opts),
	}
}

// Get returns the adapter for id.
func (s Set) Get(id model.ProviderID) (Provider, error) {
	p, ok := s[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidModel, id)
	}
	return p, nil
}
