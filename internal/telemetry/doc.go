// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry derives conversation analytics for the dashboard.
//
// Everything is computed from the message list on demand; nothing is
// recorded separately and nothing leaves the machine.
//
// # Usage
//
//	stats := telemetry.Compute(store.Messages(), time.Local)
//	fmt.Printf("%d messages, ~%d tokens\n", stats.TotalMessages, stats.TotalTokens)
//
// Token totals are the same rough ~4 characters per token estimate used
// elsewhere, not a tokenizer count. Average response time is measured
// between a user message and the reply that follows it.
package telemetry
