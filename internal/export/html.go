// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/jeranaias/thinkly/internal/markup"
	"github.com/jeranaias/thinkly/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports a standalone page with embedded CSS. Code blocks are
// highlighted with inline styles so the file has no external assets.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a conversation to HTML.
func (e *HTMLExporter) Export(conv *Conversation) ([]byte, error) {
	if err := conv.validate(); err != nil {
		return nil, err
	}
	theme := e.theme()

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("<meta charset=\"UTF-8\">\n")
	sb.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&sb, "<title>%s</title>\n", html.EscapeString(conv.Title))
	fmt.Fprintf(&sb, "<meta name=\"generator\" content=\"%s\">\n", Generator)
	sb.WriteString(stylesheet)
	sb.WriteString("</head>\n")
	fmt.Fprintf(&sb, "<body class=\"%s\">\n<div class=\"container\">\n", theme)

	if e.options.IncludeMetadata {
		e.renderHeader(&sb, conv)
	}

	sb.WriteString("<main>\n")
	for _, msg := range conv.Messages {
		e.renderMessage(&sb, msg, theme)
	}
	sb.WriteString("</main>\n")

	fmt.Fprintf(&sb, "<footer>Exported from <strong>ThinkLy</strong> on %s</footer>\n",
		e.options.now().Format("January 2, 2006 at 3:04 PM"))
	sb.WriteString("</div>\n</body>\n</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

func (e *HTMLExporter) theme() string {
	if e.options.Theme == "light" {
		return "light"
	}
	return "dark"
}

// =============================================================================
// RENDERING
// =============================================================================

func (e *HTMLExporter) renderHeader(sb *strings.Builder, conv *Conversation) {
	sb.WriteString("<header>\n")
	fmt.Fprintf(sb, "<h1>%s</h1>\n", html.EscapeString(conv.Title))
	sb.WriteString("<div class=\"meta\">")
	fmt.Fprintf(sb, "<span><b>Model:</b> %s</span>", html.EscapeString(conv.SelectedModel.DisplayName()))
	fmt.Fprintf(sb, "<span><b>Started:</b> %s</span>", formatTimestamp(conv.Started()))
	fmt.Fprintf(sb, "<span><b>Messages:</b> %d</span>", len(conv.Messages))
	sb.WriteString("</div>\n</header>\n")
}

func (e *HTMLExporter) renderMessage(sb *strings.Builder, msg model.Message, theme string) {
	fmt.Fprintf(sb, "<section class=\"message %s\">\n", html.EscapeString(string(msg.Role)))
	sb.WriteString("<div class=\"message-header\">")
	fmt.Fprintf(sb, "<span class=\"role\">%s</span>", html.EscapeString(roleLabel(msg)))
	if e.options.IncludeTimestamps {
		fmt.Fprintf(sb, "<time datetime=\"%s\">%s</time>",
			msg.Timestamp.UTC().Format(time.RFC3339), formatShortTimestamp(msg.Timestamp))
	}
	sb.WriteString("</div>\n<div class=\"content\">\n")
	sb.WriteString(renderContent(msg.Content, theme))
	sb.WriteString("</div>\n")
	if e.options.IncludeMetadata {
		if usage := usageLine(msg); usage != "" {
			fmt.Fprintf(sb, "<div class=\"usage\">%s</div>\n", html.EscapeString(usage))
		}
	}
	sb.WriteString("</section>\n")
}

// renderContent turns message markup into HTML: paragraphs with inline code,
// and highlighted fenced blocks.
func renderContent(content, theme string) string {
	style := markup.StyleDark
	if theme == "light" {
		style = markup.StyleLight
	}

	var sb strings.Builder
	for _, seg := range markup.Split(content) {
		if seg.Kind == markup.KindCode {
			sb.WriteString("<div class=\"code-block\">")
			if seg.Lang != "" {
				// SECURITY: the info string is untrusted text.
				fmt.Fprintf(&sb, "<div class=\"code-lang\">%s</div>", html.EscapeString(seg.Lang))
			}
			sb.WriteString(markup.HighlightString(seg.Text, seg.Lang, markup.FormatterHTML, style))
			sb.WriteString("</div>\n")
			continue
		}
		for _, para := range strings.Split(strings.TrimSpace(seg.Text), "\n\n") {
			if strings.TrimSpace(para) == "" {
				continue
			}
			sb.WriteString("<p>")
			for i, line := range strings.Split(strings.TrimSpace(para), "\n") {
				if i > 0 {
					sb.WriteString("<br>\n")
				}
				for _, span := range markup.InlineSpans(line) {
					if span.Code {
						fmt.Fprintf(&sb, "<code>%s</code>", html.EscapeString(span.Text))
					} else {
						sb.WriteString(html.EscapeString(span.Text))
					}
				}
			}
			sb.WriteString("</p>\n")
		}
	}
	return sb.String()
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

const stylesheet = `<style>
* { box-sizing: border-box; }
body { margin: 0; font-family: -apple-system, "Segoe UI", Roboto, sans-serif; line-height: 1.6; }
body.dark { background: #1a1a2e; color: #e6e6f0; }
body.light { background: #f7f7fb; color: #1f2333; }
.container { max-width: 880px; margin: 0 auto; padding: 32px 20px; }
header { padding: 24px; border-radius: 14px; margin-bottom: 24px;
  background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: #fff; }
header h1 { margin: 0 0 8px; font-size: 1.5rem; }
.meta span { margin-right: 18px; font-size: 0.9rem; opacity: 0.9; }
.message { padding: 14px 18px; border-radius: 12px; margin-bottom: 14px; }
body.dark .message { background: #232342; }
body.light .message { background: #ffffff; box-shadow: 0 1px 3px rgba(0,0,0,0.08); }
.message.user { border-left: 4px solid #667eea; }
.message.assistant { border-left: 4px solid #10b981; }
.message.error { border-left: 4px solid #ef4444; }
.message-header { display: flex; justify-content: space-between; font-size: 0.85rem; opacity: 0.75; margin-bottom: 6px; }
.role { font-weight: 600; }
.content p { margin: 0 0 10px; }
.content code { font-family: "JetBrains Mono", Menlo, monospace; padding: 1px 5px; border-radius: 4px; }
body.dark .content p code { background: #30305a; }
body.light .content p code { background: #eef0f7; }
.code-block { margin: 10px 0; border-radius: 8px; overflow: hidden; }
.code-block pre { margin: 0; padding: 12px 14px; overflow-x: auto; }
.code-lang { font-size: 0.75rem; text-transform: uppercase; padding: 4px 12px; background: #764ba2; color: #fff; }
.usage { font-size: 0.75rem; opacity: 0.6; margin-top: 4px; }
footer { text-align: center; font-size: 0.8rem; opacity: 0.6; margin-top: 32px; }
</style>
`
