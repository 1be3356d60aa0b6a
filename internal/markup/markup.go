// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markup splits message content into prose and fenced code and
// highlights code with chroma. The TUI renders the result for a terminal and
// the HTML exporter renders it for a browser.
package markup

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	chromaHTML "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
)

const fence = "```"

// =============================================================================
// FENCED BLOCKS
// =============================================================================

// Kind distinguishes prose from code.
type Kind int

const (
	KindText Kind = iota
	KindCode
)

// Segment is a run of prose or one fenced code block.
type Segment struct {
	Kind Kind
	// Lang is the info string after the opening fence, if any.
	Lang string
	Text string
	// Unclosed is set for a code block that runs to the end of the content.
	Unclosed bool
}

// Split breaks content into alternating text and code segments. A fence is a
// line starting with three backticks. Empty text segments are dropped.
func Split(content string) []Segment {
	var (
		segments []Segment
		buf      []string
		inCode   bool
		lang     string
	)

	flush := func(kind Kind, unclosed bool) {
		text := strings.Join(buf, "\n")
		buf = nil
		if kind == KindText && strings.TrimSpace(text) == "" {
			return
		}
		segments = append(segments, Segment{Kind: kind, Lang: lang, Text: text, Unclosed: unclosed})
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, fence) {
			buf = append(buf, line)
			continue
		}
		if inCode {
			flush(KindCode, false)
			lang = ""
			inCode = false
			continue
		}
		flush(KindText, false)
		lang = strings.TrimSpace(strings.TrimPrefix(trimmed, fence))
		inCode = true
	}

	if inCode {
		flush(KindCode, true)
	} else {
		flush(KindText, false)
	}
	return segments
}

// =============================================================================
// INLINE CODE
// =============================================================================

// Span is a piece of a prose line; Code marks a `backtick` span.
type Span struct {
	Code bool
	Text string
}

// InlineSpans splits text on single backticks. An unmatched backtick is kept
// as literal text.
func InlineSpans(text string) []Span {
	var spans []Span
	rest := text
	for {
		open := strings.IndexByte(rest, '`')
		if open < 0 {
			break
		}
		end := strings.IndexByte(rest[open+1:], '`')
		if end < 0 {
			break
		}
		if open > 0 {
			spans = append(spans, Span{Text: rest[:open]})
		}
		if code := rest[open+1 : open+1+end]; code != "" {
			spans = append(spans, Span{Code: true, Text: code})
		} else {
			spans = append(spans, Span{Text: "``"})
		}
		rest = rest[open+1+end+1:]
	}
	if rest != "" {
		spans = append(spans, Span{Text: rest})
	}
	return spans
}

// =============================================================================
// SYNTAX HIGHLIGHTING
// =============================================================================

// Formatter and style names understood by Highlight.
const (
	FormatterTerminal = "terminal256"
	FormatterHTML     = "html"
	StyleDark         = "monokai"
	StyleLight        = "github"
)

// lexerFor picks a lexer by name, then by content, then the plain fallback.
func lexerFor(lang, code string) chroma.Lexer {
	lexer := lexers.Get(lang)
	if lexer == nil && lang == "" {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// DetectLanguage guesses the language of code; "" when unknown.
func DetectLanguage(code string) string {
	if lexer := lexers.Analyse(code); lexer != nil {
		return lexer.Config().Name
	}
	return ""
}

// Highlight writes code to w using the named chroma formatter and style.
func Highlight(w io.Writer, code, lang, formatterName, styleName string) error {
	var formatter chroma.Formatter
	if formatterName == FormatterHTML {
		// Inline styles so the fragment needs no stylesheet; the registered
		// "html" formatter emits a whole document.
		formatter = chromaHTML.New(chromaHTML.WithClasses(false), chromaHTML.TabWidth(4))
	} else if formatter = formatters.Get(formatterName); formatter == nil {
		formatter = formatters.Fallback
	}
	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}
	iterator, err := lexerFor(lang, code).Tokenise(nil, code)
	if err != nil {
		return fmt.Errorf("tokenise %s: %w", lang, err)
	}
	return formatter.Format(w, style, iterator)
}

// HighlightString is Highlight into a string, returning code unchanged if
// highlighting fails.
func HighlightString(code, lang, formatterName, styleName string) string {
	var sb strings.Builder
	if err := Highlight(&sb, code, lang, formatterName, styleName); err != nil {
		return code
	}
	return sb.String()
}
