// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	content := "Here is code:\n```go\nfmt.Println(\"hi\")\n```\nDone."
	segs := Split(content)
	require.Len(t, segs, 3)
	assert.Equal(t, Segment{Kind: KindText, Text: "Here is code:"}, segs[0])
	assert.Equal(t, Segment{Kind: KindCode, Lang: "go", Text: "fmt.Println(\"hi\")"}, segs[1])
	assert.Equal(t, Segment{Kind: KindText, Text: "Done."}, segs[2])
}

func TestSplit_PlainText(t *testing.T) {
	segs := Split("just words\nand more")
	require.Len(t, segs, 1)
	assert.Equal(t, KindText, segs[0].Kind)
	assert.Equal(t, "just words\nand more", segs[0].Text)
}

func TestSplit_Unclosed(t *testing.T) {
	segs := Split("```python\nprint(1)")
	require.Len(t, segs, 1)
	assert.Equal(t, KindCode, segs[0].Kind)
	assert.Equal(t, "python", segs[0].Lang)
	assert.True(t, segs[0].Unclosed)
}

func TestSplit_Empty(t *testing.T) {
	assert.Empty(t, Split(""))
}

func TestInlineSpans(t *testing.T) {
	tests := []struct {
		in   string
		want []Span
	}{
		{"no code", []Span{{Text: "no code"}}},
		{"use `go test` now", []Span{{Text: "use "}, {Code: true, Text: "go test"}, {Text: " now"}}},
		{"`a` and `b`", []Span{{Code: true, Text: "a"}, {Text: " and "}, {Code: true, Text: "b"}}},
		{"odd ` tick", []Span{{Text: "odd ` tick"}}},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InlineSpans(tt.in), tt.in)
	}
}

func TestHighlightString(t *testing.T) {
	out := HighlightString("package main", "go", FormatterHTML, StyleLight)
	assert.True(t, strings.Contains(out, "<pre"), out)
	assert.Contains(t, out, "package")

	// Unknown language still renders the code.
	out = HighlightString("plain words", "no-such-lang", FormatterTerminal, StyleDark)
	assert.Contains(t, out, "plain")
}
