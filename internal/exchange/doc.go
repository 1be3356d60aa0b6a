// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package exchange runs one user-to-assistant round trip at a time.
//
// An exchange moves Idle → Sending → Settled or Failed, then back to Idle.
// The orchestrator appends the user message, calls the selected provider
// with the history as it stood before that append, and appends either the
// assistant reply or an "Error: ..." message. Only one exchange may be in
// flight; a second Send while busy is rejected with ErrBusy and touches
// nothing.
//
// Provider failures are not Go errors from Send: they come back as an
// Outcome in state Failed, already recorded in the conversation. Send
// returns an error only when the exchange was refused or could not be
// recorded.
package exchange
