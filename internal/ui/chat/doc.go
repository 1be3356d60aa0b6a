// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat is the ThinkLy terminal UI.

The program has three views:

	Login      - shown when [auth] credentials are configured and no session
	             marker is stored
	Chat       - conversation, input box and status bar
	Dashboard  - analytics computed from the conversation

Sending runs exchange.Orchestrator.Send inside a tea.Cmd. State transitions
reported by the orchestrator arrive as messages, so the user's message shows
up as soon as it is recorded and the reply or error when the exchange settles.

When the store supports it, changes written by another ThinkLy process are
picked up live: a new darkMode re-themes the UI and a removed session marker
returns to the login view.
*/
package chat
