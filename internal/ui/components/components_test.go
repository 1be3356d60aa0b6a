// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/thinkly/internal/markup"
	"github.com/jeranaias/thinkly/internal/model"
	"github.com/jeranaias/thinkly/internal/telemetry"
	"github.com/jeranaias/thinkly/internal/ui/styles"
)

func testTheme() *styles.Theme {
	return styles.NewTheme(true)
}

// =============================================================================
// MESSAGES
// =============================================================================

func TestRenderMessage_UserAndAssistant(t *testing.T) {
	theme := testTheme()

	user := model.NewMessage(model.RoleUser, "Hello there", model.ProviderGemini)
	out := RenderMessage(user, theme, MessageOptions{Width: 80})
	assert.Contains(t, out, "You")
	assert.Contains(t, out, "Hello there")
	assert.NotContains(t, out, "Gemini", "user messages carry no model tag")

	reply := model.NewMessage(model.RoleAssistant, "Hi! How can I help?", model.ProviderMistral)
	reply.Usage = &model.Usage{TotalTokens: 12}
	out = RenderMessage(reply, theme, MessageOptions{Width: 80, ShowUsage: true})
	assert.Contains(t, out, "Mistral")
	assert.Contains(t, out, "Hi! How can I help?")
	assert.Contains(t, out, "12 tokens")
}

func TestRenderMessage_Error(t *testing.T) {
	msg := model.NewErrorMessage("Network error. Please check your internet connection.", model.ProviderGemini)
	out := RenderMessage(msg, testTheme(), MessageOptions{Width: 100})
	assert.Contains(t, out, "Error: Network error.")
}

func TestRenderMessage_CodeBlock(t *testing.T) {
	msg := model.NewMessage(model.RoleAssistant, "Here:\n```go\nfunc main() {}\n```\nDone.", model.ProviderGemini)
	out := RenderMessage(msg, testTheme(), MessageOptions{Width: 80})
	assert.Contains(t, out, "Here:")
	assert.Contains(t, out, "go")
	assert.Contains(t, out, "main")
	assert.Contains(t, out, "Done.")
}

func TestRenderMessages_EmptyShowsWelcome(t *testing.T) {
	out := RenderMessages(nil, testTheme(), MessageOptions{Width: 80})
	assert.Contains(t, out, "Welcome to ThinkLy")
}

func TestRenderMessages_Order(t *testing.T) {
	msgs := []model.Message{
		model.NewMessage(model.RoleUser, "first question", model.ProviderGemini),
		model.NewMessage(model.RoleAssistant, "second answer", model.ProviderGemini),
	}
	out := RenderMessages(msgs, testTheme(), MessageOptions{Width: 80})
	first := strings.Index(out, "first question")
	second := strings.Index(out, "second answer")
	require.GreaterOrEqual(t, first, 0)
	assert.Greater(t, second, first)
}

func TestHighlightMatches(t *testing.T) {
	theme := testTheme()
	assert.Equal(t, "plain", HighlightMatches("plain", "", theme.Highlight))
	assert.Equal(t, "no match", HighlightMatches("no match", "zzz", theme.Highlight))

	out := HighlightMatches("Go is fun, GO is fast", "go", theme.Highlight)
	assert.Contains(t, out, " is fun, ")
	assert.Contains(t, out, " is fast")
}

func TestFormatTime(t *testing.T) {
	now := time.Now()
	assert.Equal(t, now.Format("15:04"), FormatTime(now))

	old := time.Date(2020, time.March, 4, 9, 30, 0, 0, time.Local)
	assert.Equal(t, "Mar 4 09:30", FormatTime(old))
}

func TestRenderInline(t *testing.T) {
	out := RenderInline("run `go test` now", testTheme())
	assert.Contains(t, out, "go test")
	assert.Contains(t, out, "run ")
	assert.Contains(t, out, " now")
}

func TestRenderCodeBlock_Unlabeled(t *testing.T) {
	seg := markup.Segment{Kind: markup.KindCode, Text: "print('hi')\n"}
	out := RenderCodeBlock(seg, testTheme(), 60)
	assert.Contains(t, out, "print")
}

// =============================================================================
// CHROME
// =============================================================================

func TestHeader_View(t *testing.T) {
	h := Header{Tabs: []string{"Chat", "Dashboard"}, Active: 1, Right: "dark", Width: 60}
	out := h.View(testTheme())
	assert.Contains(t, out, Brand)
	assert.Contains(t, out, "Chat")
	assert.Contains(t, out, "Dashboard")
	assert.Contains(t, out, "dark")
}

var testShortcuts = []Shortcut{
	{"enter", "send"},
	{"ctrl+o", "model"},
	{"ctrl+t", "theme"},
	{"tab", "dashboard"},
	{"ctrl+f", "search"},
	{"ctrl+e", "export"},
	{"ctrl+l", "clear"},
	{"ctrl+q", "logout"},
}

func TestStatusBar_View(t *testing.T) {
	theme := testTheme()

	s := StatusBar{Model: model.ProviderGemini, Messages: 3, Shortcuts: testShortcuts, Width: 200}
	out := s.View(theme)
	assert.Contains(t, out, "Google Gemini")
	assert.Contains(t, out, "3 messages")
	assert.Contains(t, out, "ctrl+o")

	s.Busy = true
	assert.Contains(t, s.View(theme), "sending...")

	s.LastError = "Error: Rate limit exceeded."
	out = s.View(theme)
	assert.Contains(t, out, "Rate limit exceeded")
	assert.NotContains(t, out, "ctrl+o")

	s.Notice = "Exported to chat.md"
	out = s.View(theme)
	assert.Contains(t, out, "Exported to chat.md")
	assert.NotContains(t, out, "Rate limit exceeded")
}

func TestStatusBar_TruncatesWhenNarrow(t *testing.T) {
	s := StatusBar{Model: model.ProviderMistral, Shortcuts: testShortcuts, Width: 40}
	out := s.View(testTheme())
	assert.Contains(t, out, "Mistral")
	assert.Contains(t, out, "...")
}

func TestRenderModelSelector(t *testing.T) {
	out := RenderModelSelector(model.ProviderMistral, testTheme())
	lines := strings.Split(out, "\n")
	require.Len(t, lines, len(model.Providers))
	assert.True(t, strings.HasPrefix(lines[0], "( )"))
	assert.True(t, strings.HasPrefix(lines[1], "(•)"))
}

// =============================================================================
// DASHBOARD
// =============================================================================

func TestRenderDashboard(t *testing.T) {
	base := time.Date(2025, time.January, 2, 14, 0, 0, 0, time.Local)
	user := model.NewMessage(model.RoleUser, "hello", model.ProviderGemini)
	user.Timestamp = base
	reply := model.NewMessage(model.RoleAssistant, "```go\nx := 1\n```", model.ProviderGemini)
	reply.Timestamp = base.Add(2 * time.Second)

	stats := telemetry.Compute([]model.Message{user, reply}, time.Local)
	out := RenderDashboard(stats, testTheme(), 120)

	assert.Contains(t, out, "Messages")
	assert.Contains(t, out, "1 you · 1 assistant")
	assert.Contains(t, out, "2.0s")
	assert.Contains(t, out, "Model usage")
	assert.Contains(t, out, "Gemini")
	assert.Contains(t, out, "peak 14:00 (2)")
}

func TestRenderDashboard_Empty(t *testing.T) {
	out := RenderDashboard(telemetry.Stats{}, testTheme(), 60)
	assert.Contains(t, out, "No messages yet")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "-"},
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1m 30s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in))
	}
}

// =============================================================================
// LOGIN FORM
// =============================================================================

func typeInto(f LoginForm, s string) LoginForm {
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return f
}

func press(f LoginForm, k tea.KeyType) (LoginForm, tea.Cmd) {
	return f.Update(tea.KeyMsg{Type: k})
}

func TestLoginForm_Submit(t *testing.T) {
	f := NewLoginForm(false)
	f = typeInto(f, "admin")
	f, cmd := press(f, tea.KeyEnter)
	assert.Nil(t, cmd, "enter on the first field advances focus")
	assert.Equal(t, fieldPassword, f.Focused())

	f = typeInto(f, "secret")
	f, cmd = press(f, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.True(t, f.Pending())

	msg, ok := cmd().(LoginSubmitMsg)
	require.True(t, ok)
	assert.Equal(t, LoginSubmitMsg{Username: "admin", Password: "secret"}, msg)
}

func TestLoginForm_RequiresFields(t *testing.T) {
	f := NewLoginForm(false)
	f, _ = press(f, tea.KeyTab)
	f, cmd := press(f, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.Equal(t, "Enter a username and password.", f.Error())
	assert.False(t, f.Pending())
}

func TestLoginForm_WithCode(t *testing.T) {
	f := NewLoginForm(true)
	f = typeInto(f, "admin")
	f, _ = press(f, tea.KeyTab)
	f = typeInto(f, "secret")
	f, _ = press(f, tea.KeyTab)
	f = typeInto(f, "123456")
	f, cmd := press(f, tea.KeyEnter)
	require.NotNil(t, cmd)
	msg := cmd().(LoginSubmitMsg)
	assert.Equal(t, "123456", msg.Code)
}

func TestLoginForm_SetErrorClearsSecrets(t *testing.T) {
	f := NewLoginForm(false)
	f = typeInto(f, "admin")
	f, _ = press(f, tea.KeyTab)
	f = typeInto(f, "wrong")
	f, _ = press(f, tea.KeyEnter)
	require.True(t, f.Pending())

	f.SetError("Invalid username or password.")
	assert.False(t, f.Pending())
	assert.Equal(t, "", f.inputs[fieldPassword].Value())
	assert.Equal(t, "admin", f.inputs[fieldUsername].Value())
	assert.Contains(t, f.View(testTheme()), "Invalid username or password.")
}

func TestLoginForm_IgnoresKeysWhilePending(t *testing.T) {
	f := NewLoginForm(false)
	f = typeInto(f, "a")
	f, _ = press(f, tea.KeyTab)
	f = typeInto(f, "b")
	f, _ = press(f, tea.KeyEnter)
	f = typeInto(f, "zzz")
	assert.Equal(t, "b", f.inputs[fieldPassword].Value())
}

// =============================================================================
// THINKING
// =============================================================================

func TestThinking(t *testing.T) {
	theme := testTheme()
	th := NewThinking()
	assert.False(t, th.Active())
	assert.Equal(t, "", th.View(theme, time.Now()))

	start := time.Now()
	cmd := th.Start(model.ProviderGemini, start)
	assert.NotNil(t, cmd)
	assert.True(t, th.Active())
	assert.Contains(t, th.View(theme, start.Add(3*time.Second)), "Gemini is thinking... 3s")

	th.Stop()
	_, cmd = th.Update(nil)
	assert.Nil(t, cmd)
}
