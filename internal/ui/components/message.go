// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/thinkly/internal/markup"
	"github.com/jeranaias/thinkly/internal/model"
	"github.com/jeranaias/thinkly/internal/ui/styles"
	"github.com/jeranaias/thinkly/internal/util"
)

// =============================================================================
// MESSAGE RENDERING
// =============================================================================

// MessageOptions controls how messages are drawn.
type MessageOptions struct {
	Width int
	// Highlight marks case-insensitive matches of this text in prose.
	Highlight string
	// ShowUsage appends token usage under assistant messages.
	ShowUsage bool
}

// RenderMessage renders one message as a header line and a bubble.
func RenderMessage(msg model.Message, theme *styles.Theme, opts MessageOptions) string {
	width := opts.Width
	if width < 30 {
		width = 30
	}
	inner := width - 10

	header := renderMessageHeader(msg, theme)
	body := renderContent(msg.Content, theme, inner, opts.Highlight)

	var bubble lipgloss.Style
	switch msg.Role {
	case model.RoleUser:
		bubble = theme.UserBubble
	case model.RoleError:
		bubble = theme.ErrorBubble
	default:
		bubble = theme.AssistantBubble
	}
	rendered := lipgloss.JoinVertical(lipgloss.Left, header, bubble.MaxWidth(width).Render(body))

	if opts.ShowUsage && msg.Usage != nil && msg.Usage.TotalTokens > 0 {
		rendered = lipgloss.JoinVertical(lipgloss.Left, rendered, theme.Timestamp.Render("  "+usageText(msg.Usage)))
	}
	return rendered
}

// RenderMessages renders the conversation top to bottom, separated by blank
// lines. An empty conversation renders the welcome text.
func RenderMessages(msgs []model.Message, theme *styles.Theme, opts MessageOptions) string {
	if len(msgs) == 0 {
		return RenderWelcome(theme, opts.Width)
	}
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, RenderMessage(m, theme, opts))
	}
	return strings.Join(parts, "\n\n")
}

// RenderWelcome is shown before the first message.
func RenderWelcome(theme *styles.Theme, width int) string {
	lines := []string{
		theme.LoginTitle.Render("Welcome to ThinkLy"),
		"",
		theme.Muted.Render("Ask anything. Replies come from the model shown in the status bar."),
		theme.Muted.Render("Ctrl+O switches model, Ctrl+T switches theme, Tab opens the dashboard."),
	}
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(strings.Join(lines, "\n"))
}

func renderMessageHeader(msg model.Message, theme *styles.Theme) string {
	role := theme.RoleLabel.Foreground(theme.RoleColor(string(msg.Role))).Render(msg.Role.DisplayName())
	parts := []string{role}
	if msg.Role != model.RoleUser && msg.Model != "" {
		parts = append(parts, theme.ModelTag.Render(msg.Model.ShortName()))
	}
	if !msg.Timestamp.IsZero() {
		parts = append(parts, theme.Timestamp.Render(FormatTime(msg.Timestamp)))
	}
	return strings.Join(parts, " ")
}

// renderContent lays out prose and code segments within width columns.
func renderContent(content string, theme *styles.Theme, width int, highlight string) string {
	segments := markup.Split(content)
	if len(segments) == 0 {
		return theme.Muted.Render("(empty)")
	}

	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg.Kind == markup.KindCode {
			parts = append(parts, RenderCodeBlock(seg, theme, width))
			continue
		}
		wrapped := util.WordWrap(strings.Trim(seg.Text, "\n"), width)
		lines := strings.Split(wrapped, "\n")
		for i, line := range lines {
			if highlight != "" {
				lines[i] = HighlightMatches(line, highlight, theme.Highlight)
			} else {
				lines[i] = RenderInline(line, theme)
			}
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}
	return strings.Join(parts, "\n")
}

// HighlightMatches wraps case-insensitive occurrences of query in style.
// text must not already contain escape sequences.
func HighlightMatches(text, query string, style lipgloss.Style) string {
	if query == "" {
		return text
	}
	lower := strings.ToLower(text)
	q := strings.ToLower(query)
	if len(lower) != len(text) {
		// Case folding changed byte offsets; skip rather than mis-slice.
		return text
	}

	var sb strings.Builder
	rest := 0
	for {
		idx := strings.Index(lower[rest:], q)
		if idx < 0 {
			break
		}
		start := rest + idx
		end := start + len(q)
		sb.WriteString(text[rest:start])
		sb.WriteString(style.Render(text[start:end]))
		rest = end
	}
	sb.WriteString(text[rest:])
	return sb.String()
}

// FormatTime shows the clock for today and the date otherwise.
func FormatTime(t time.Time) string {
	local := t.Local()
	now := time.Now()
	if local.Year() == now.Year() && local.YearDay() == now.YearDay() {
		return local.Format("15:04")
	}
	return local.Format("Jan 2 15:04")
}

func usageText(u *model.Usage) string {
	if u.Estimated {
		return "~" + strconv.Itoa(u.TotalTokens) + " tokens"
	}
	return strconv.Itoa(u.TotalTokens) + " tokens"
}
