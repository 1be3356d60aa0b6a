// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package cli implements the thinkly command line.

Running thinkly with no command opens the terminal UI. The other commands
work on the same durable state, so a conversation started in the UI can be
continued with "thinkly chat" or exported with "thinkly export".

	thinkly                      open the terminal UI
	thinkly ask <text>           send one message and print the reply
	thinkly chat                 line-mode chat with input history
	thinkly model [id]           show or switch the selected model
	thinkly history              print the conversation
	thinkly clear                delete the conversation
	thinkly dashboard            print conversation analytics
	thinkly export               write the conversation to md, json or html
	thinkly login / logout       manage the login session
	thinkly auth hash-password   print a bcrypt hash for auth.password_hash
	thinkly auth totp            generate a second-factor secret
	thinkly theme [mode]         show or change dark/light mode
	thinkly status               check configuration and provider keys
	thinkly config ...           show, get, set, path, init
	thinkly version              print version information

When [auth] credentials are configured, conversation commands require a
login session (see "thinkly login").

# Exit Codes

	0  success
	1  general error
	2  usage error
	3  configuration error
	4  authentication failure
	5  network error
	8  timeout
*/
package cli
