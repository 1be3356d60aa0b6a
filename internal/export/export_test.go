// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/thinkly/internal/model"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func sampleConversation() *Conversation {
	at := fixedNow.Add(-time.Hour)
	msgs := []model.Message{
		{ID: "1", Role: model.RoleUser, Content: "Show me Go", Model: model.ProviderGemini, Timestamp: at},
		{ID: "2", Role: model.RoleAssistant, Content: "Sure:\n```go\nfmt.Println(\"hi\")\n```\nUse `go run`.",
			Model: model.ProviderGemini, Timestamp: at.Add(2 * time.Second),
			Usage: &model.Usage{TotalTokens: 12, Estimated: true}},
		{ID: "3", Role: model.RoleError, Content: "Error: Rate limit exceeded. Please wait a moment and try again.",
			Model: model.ProviderGemini, Timestamp: at.Add(time.Minute)},
	}
	return FromMessages(msgs, model.ProviderGemini)
}

func testOptions() *Options {
	opts := DefaultOptions()
	opts.Now = func() time.Time { return fixedNow }
	return opts
}

func TestFromMessages_Title(t *testing.T) {
	conv := sampleConversation()
	assert.Equal(t, "Show me Go", conv.Title)

	empty := FromMessages(nil, model.ProviderMistral)
	assert.Equal(t, "ThinkLy conversation", empty.Title)
	assert.True(t, empty.Started().IsZero())
}

func TestForFormat(t *testing.T) {
	for _, name := range []string{"md", "markdown", "JSON", "html", " htm "} {
		ex, err := ForFormat(name, nil)
		require.NoError(t, err, name)
		assert.NotNil(t, ex)
	}
	_, err := ForFormat("pdf", nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExport_Empty(t *testing.T) {
	for _, name := range Formats {
		ex, err := ForFormat(name, nil)
		require.NoError(t, err)
		_, err = ex.Export(FromMessages(nil, model.ProviderGemini))
		assert.ErrorIs(t, err, ErrEmpty, name)
	}
}

func TestMarkdownExport(t *testing.T) {
	out, err := NewMarkdownExporter(testOptions()).Export(sampleConversation())
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "---\ntitle: Show me Go\nmodel: gemini\n"), md)
	assert.Contains(t, md, "generator: thinkly")
	assert.Contains(t, md, "# Show me Go")
	assert.Contains(t, md, "### You <sub>")
	assert.Contains(t, md, "### Assistant (Gemini)")
	assert.Contains(t, md, "```go\nfmt.Println(\"hi\")\n```")
	assert.Contains(t, md, "<sub>~12 tokens (estimated)</sub>")
	assert.Contains(t, md, "> Error: Rate limit exceeded.")
	assert.Contains(t, md, "June 1, 2025")
}

func TestMarkdownExport_TitleEscapedInFrontmatter(t *testing.T) {
	conv := sampleConversation()
	conv.Title = "a: b\ninjected: yes"
	out, err := NewMarkdownExporter(testOptions()).Export(conv)
	require.NoError(t, err)
	for _, line := range strings.Split(string(out), "\n") {
		assert.False(t, strings.HasPrefix(line, "injected:"))
	}
	assert.Contains(t, string(out), `title: "a: b\ninjected: yes"`)
}

func TestJSONExport(t *testing.T) {
	conv := sampleConversation()
	out, err := NewJSONExporter(testOptions()).Export(conv)
	require.NoError(t, err)

	var doc struct {
		Title         string          `json:"title"`
		SelectedModel string          `json:"selected_model"`
		ExportedAt    time.Time       `json:"exported_at"`
		Generator     string          `json:"generator"`
		Messages      []model.Message `json:"messages"`
		Stats         struct {
			TotalMessages int `json:"total_messages"`
			ErrorMessages int `json:"error_messages"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "gemini", doc.SelectedModel)
	assert.True(t, doc.ExportedAt.Equal(fixedNow))
	assert.Equal(t, Generator, doc.Generator)
	require.Len(t, doc.Messages, 3)
	assert.Equal(t, conv.Messages[1].Content, doc.Messages[1].Content)
	assert.Equal(t, 3, doc.Stats.TotalMessages)
	assert.Equal(t, 1, doc.Stats.ErrorMessages)
}

func TestHTMLExport(t *testing.T) {
	out, err := NewHTMLExporter(testOptions()).Export(sampleConversation())
	require.NoError(t, err)
	page := string(out)

	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "<body class=\"dark\">")
	assert.Contains(t, page, "<title>Show me Go</title>")
	assert.Contains(t, page, "<div class=\"code-lang\">go</div>")
	assert.Contains(t, page, "<code>go run</code>")
	assert.Contains(t, page, "class=\"message error\"")
	assert.Contains(t, page, "~12 tokens (estimated)")
}

func TestHTMLExport_EscapesUntrustedText(t *testing.T) {
	conv := FromMessages([]model.Message{
		{ID: "1", Role: model.RoleUser, Content: "<script>alert(1)</script>", Timestamp: fixedNow},
		{ID: "2", Role: model.RoleAssistant, Content: "```<img src=x>\ncode\n```", Timestamp: fixedNow},
	}, model.ProviderGemini)

	out, err := NewHTMLExporter(testOptions()).Export(conv)
	require.NoError(t, err)
	page := string(out)
	assert.NotContains(t, page, "<script>alert(1)</script>")
	assert.Contains(t, page, "&lt;script&gt;")
	assert.NotContains(t, page, "<img src=x>")
}

func TestHTMLExport_LightTheme(t *testing.T) {
	opts := testOptions()
	opts.Theme = "light"
	out, err := NewHTMLExporter(opts).Export(sampleConversation())
	require.NoError(t, err)
	assert.Contains(t, string(out), "<body class=\"light\">")
}

func TestToFile(t *testing.T) {
	opts := testOptions()
	opts.OutputDir = filepath.Join(t.TempDir(), "exports")

	path, err := ToFile(sampleConversation(), NewMarkdownExporter(opts), opts)
	require.NoError(t, err)
	assert.Equal(t, "thinkly_Show_me_Go_20250601_120000.md", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Show me Go")
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"hello world", "hello_world"},
		{"a/b\\c:d", "a-b-c-d"},
		{"   ", "conversation"},
		{strings.Repeat("x", 100), strings.Repeat("x", 40)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), tt.in)
	}
}
