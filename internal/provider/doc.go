// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package provider implements the LLM backends thinkly can talk to.
//
// Each adapter translates a (message, history) pair into its provider's wire
// format, performs exactly one HTTP call, and normalizes the reply into a
// Result or a classified *Error. Adapters never retry; the caller decides.
//
// # Key Types
//
//   - Provider: the adapter contract (Gemini, Mistral)
//   - Turn: one prior {role, content} pair of history
//   - Result: normalized assistant text plus token usage
//   - Error: classified failure (BadRequest, Unauthorized, RateLimited, ...)
//   - Pacer: process-wide minimum gap between outbound calls
//   - Estimator: token counting when a provider reports no usage
//
// # Usage
//
//	set, err := provider.NewSet(cfg, provider.Options{Logger: logger})
//	p, err := set.Get(model.ProviderGemini)
//	res, err := p.Send(ctx, "Hello", nil)
//	if errors.Is(err, provider.ErrRateLimited) {
//	    // back off
//	}
package provider
