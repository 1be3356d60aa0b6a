// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/thinkly/internal/ui/styles"
)

// =============================================================================
// LOGIN FORM
// =============================================================================

// LoginSubmitMsg is emitted when the user submits the form.
type LoginSubmitMsg struct {
	Username string
	Password string
	Code     string
}

// LoginForm collects credentials for the login gate.
type LoginForm struct {
	inputs  []textinput.Model
	focus   int
	err     string
	pending bool
	width   int
}

const (
	fieldUsername = iota
	fieldPassword
	fieldCode
)

// NewLoginForm creates the form. withCode adds the one-time code field.
func NewLoginForm(withCode bool) LoginForm {
	user := textinput.New()
	user.Prompt = "Username  "
	user.Placeholder = "username"
	user.CharLimit = 128
	user.Focus()

	pass := textinput.New()
	pass.Prompt = "Password  "
	pass.Placeholder = "password"
	pass.CharLimit = 256
	// SECURITY: Never echo the password.
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'

	inputs := []textinput.Model{user, pass}
	if withCode {
		code := textinput.New()
		code.Prompt = "Code      "
		code.Placeholder = "123456"
		code.CharLimit = 8
		inputs = append(inputs, code)
	}
	return LoginForm{inputs: inputs, width: 50}
}

// Init starts the cursor blink.
func (f LoginForm) Init() tea.Cmd {
	return textinput.Blink
}

// SetError shows err under the form and re-enables input. The password and
// code fields are cleared.
func (f *LoginForm) SetError(err string) {
	f.err = err
	f.pending = false
	f.inputs[fieldPassword].SetValue("")
	if len(f.inputs) > fieldCode {
		f.inputs[fieldCode].SetValue("")
	}
}

// Error returns the message currently shown, or "".
func (f LoginForm) Error() string {
	return f.err
}

// Pending reports whether a submission is awaiting its result.
func (f LoginForm) Pending() bool {
	return f.pending
}

// SetWidth sets the rendered width.
func (f *LoginForm) SetWidth(w int) {
	f.width = w
}

// Focused returns the index of the focused field.
func (f LoginForm) Focused() int {
	return f.focus
}

// Update handles navigation and submission.
func (f LoginForm) Update(msg tea.Msg) (LoginForm, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if f.pending {
			return f, nil
		}
		switch key.String() {
		case "tab", "down":
			f.setFocus((f.focus + 1) % len(f.inputs))
			return f, nil
		case "shift+tab", "up":
			f.setFocus((f.focus + len(f.inputs) - 1) % len(f.inputs))
			return f, nil
		case "enter":
			if f.focus < len(f.inputs)-1 {
				f.setFocus(f.focus + 1)
				return f, nil
			}
			return f.submit()
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f *LoginForm) setFocus(i int) {
	f.inputs[f.focus].Blur()
	f.focus = i
	f.inputs[f.focus].Focus()
}

func (f LoginForm) submit() (LoginForm, tea.Cmd) {
	submit := LoginSubmitMsg{
		Username: strings.TrimSpace(f.inputs[fieldUsername].Value()),
		Password: f.inputs[fieldPassword].Value(),
	}
	if len(f.inputs) > fieldCode {
		submit.Code = strings.TrimSpace(f.inputs[fieldCode].Value())
	}
	if submit.Username == "" || submit.Password == "" {
		f.err = "Enter a username and password."
		return f, nil
	}
	f.err = ""
	f.pending = true
	return f, func() tea.Msg { return submit }
}

// View renders the form centered in a box.
func (f LoginForm) View(theme *styles.Theme) string {
	lines := []string{
		theme.LoginTitle.Render("ThinkLy"),
		theme.Muted.Render("Sign in to continue"),
		"",
	}
	for _, in := range f.inputs {
		lines = append(lines, in.View())
	}
	lines = append(lines, "")
	switch {
	case f.pending:
		lines = append(lines, theme.Muted.Render("Signing in..."))
	case f.err != "":
		lines = append(lines, theme.LoginError.Render(styles.IndicatorError+" "+f.err))
	default:
		lines = append(lines, theme.Muted.Render("enter submit · tab next field · ctrl+c quit"))
	}
	return theme.LoginBox.Width(f.width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
