// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the visual pieces of the ThinkLy TUI.

# Display Components

RenderMessage (message.go) - One chat message: role, model tag, time, and
content with highlighted code blocks and inline code.
RenderCodeBlock (codeblock.go) - Chroma-highlighted fenced block with a
language badge.
Header (header.go) - Brand and view tabs.
StatusBar (statusbar.go) - Selected model, busy state, last error, shortcuts.
RenderModelSelector (selector.go) - Provider list with the current one marked.
RenderDashboard (dashboard.go) - Conversation analytics cards and charts.

# Interactive Components

LoginForm (login.go) - Username, password and optional code inputs.
Thinking (spinner.go) - Spinner with elapsed time while a reply is pending.

Everything takes a *styles.Theme so a theme toggle re-renders in place.
*/
package components
