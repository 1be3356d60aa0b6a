// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/thinkly/internal/markup"
	"github.com/jeranaias/thinkly/internal/ui/styles"
)

// =============================================================================
// CODE BLOCK RENDERER
// =============================================================================

// RenderCodeBlock renders a fenced block with syntax highlighting. Long lines
// are clipped to width rather than wrapped.
func RenderCodeBlock(seg markup.Segment, theme *styles.Theme, width int) string {
	code := strings.TrimRight(seg.Text, "\n")
	lang := seg.Lang
	if lang == "" {
		lang = markup.DetectLanguage(code)
	}

	highlighted := markup.HighlightString(code, lang, markup.FormatterTerminal, theme.ChromaStyle())
	highlighted = strings.TrimRight(highlighted, "\n")

	var header string
	if seg.Lang != "" {
		header = theme.CodeLangBadge.Render(seg.Lang) + "\n"
	}

	maxWidth := width - 2
	if maxWidth < 20 {
		maxWidth = 20
	}
	return theme.CodeBlock.MaxWidth(maxWidth).Render(header + highlighted)
}

// =============================================================================
// INLINE CODE RENDERER
// =============================================================================

// RenderInline styles `code` spans within a line of prose.
func RenderInline(line string, theme *styles.Theme) string {
	var sb strings.Builder
	for _, span := range markup.InlineSpans(line) {
		if span.Code {
			sb.WriteString(theme.InlineCode.Render(span.Text))
		} else {
			sb.WriteString(span.Text)
		}
	}
	return sb.String()
}
