// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/jeranaias/thinkly/internal/model"
	"github.com/jeranaias/thinkly/internal/util"
)

// Generator names the tool in exported documents.
const Generator = "thinkly"

var (
	// ErrEmpty is returned when there is nothing to export.
	ErrEmpty = errors.New("conversation has no messages")
	// ErrUnsupportedFormat is returned by ForFormat for unknown names.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// =============================================================================
// CONVERSATION
// =============================================================================

// Conversation is the exported view of the session.
type Conversation struct {
	Title         string
	SelectedModel model.ProviderID
	Messages      []model.Message
}

// FromMessages builds a Conversation titled after the first user message.
func FromMessages(messages []model.Message, selected model.ProviderID) *Conversation {
	title := "ThinkLy conversation"
	for _, m := range messages {
		if m.Role == model.RoleUser {
			if p := m.Preview(60); p != "" {
				title = p
			}
			break
		}
	}
	return &Conversation{Title: title, SelectedModel: selected, Messages: messages}
}

// Started returns the first message's timestamp.
func (c *Conversation) Started() time.Time {
	if len(c.Messages) == 0 {
		return time.Time{}
	}
	return c.Messages[0].Timestamp
}

// Updated returns the last message's timestamp.
func (c *Conversation) Updated() time.Time {
	if len(c.Messages) == 0 {
		return time.Time{}
	}
	return c.Messages[len(c.Messages)-1].Timestamp
}

func (c *Conversation) validate() error {
	if c == nil || len(c.Messages) == 0 {
		return ErrEmpty
	}
	return nil
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter renders a conversation in one format.
type Exporter interface {
	Export(conv *Conversation) ([]byte, error)
	FileExtension() string
	MimeType() string
}

// Options configures export behavior.
type Options struct {
	// OutputDir is where ToFile writes. Default: current directory.
	OutputDir string
	// Open launches the file in the default application after writing.
	Open bool
	// IncludeMetadata adds the header block and per-message usage.
	IncludeMetadata bool
	// IncludeTimestamps adds per-message times.
	IncludeTimestamps bool
	// Theme for HTML ("light" or "dark").
	Theme string
	// Now stamps the export time; defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeMetadata:   true,
		IncludeTimestamps: true,
		Theme:             "dark",
	}
}

func (o *Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Formats lists the names ForFormat accepts, canonical first.
var Formats = []string{"md", "json", "html"}

// ForFormat returns the exporter for a format name.
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "md", "markdown":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	case "html", "htm":
		return NewHTMLExporter(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q (use md, json or html)", ErrUnsupportedFormat, format)
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ToFile exports conv into opts.OutputDir and returns the written path.
func ToFile(conv *Conversation, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	content, err := exporter.Export(conv)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	filename := fmt.Sprintf("thinkly_%s_%s%s",
		sanitizeFilename(conv.Title),
		opts.now().Format("20060102_150405"),
		exporter.FileExtension(),
	)

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	outputPath := filepath.Join(dir, filename)
	if err := util.AtomicWriteFile(outputPath, content, 0600); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	if opts.Open {
		if err := openFile(outputPath); err != nil {
			return outputPath, fmt.Errorf("exported but could not open: %w", err)
		}
	}
	return outputPath, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename keeps a short, filesystem-safe version of s.
func sanitizeFilename(s string) string {
	const maxLen = 40
	runes := []rune(strings.TrimSpace(s))
	if len(runes) > maxLen {
		runes = runes[:maxLen]
	}

	var b strings.Builder
	for _, r := range runes {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteRune('_')
		case strings.ContainsRune(`/\:*?"<>|`, r), r < 32, r == 127:
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "conversation"
	}
	return b.String()
}

// openFile opens a file in the default application for the OS.
func openFile(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}

// roleLabel is the heading shown for each message.
func roleLabel(m model.Message) string {
	label := m.Role.DisplayName()
	if m.Role == model.RoleAssistant && m.Model != "" {
		label += " (" + m.Model.ShortName() + ")"
	}
	return label
}

// usageLine describes a message's token usage, or "" when it has none.
func usageLine(m model.Message) string {
	if m.Usage == nil || m.Usage.TotalTokens == 0 {
		return ""
	}
	if m.Usage.Estimated {
		return fmt.Sprintf("~%d tokens (estimated)", m.Usage.TotalTokens)
	}
	if m.Usage.PromptTokens > 0 || m.Usage.CompletionTokens > 0 {
		return fmt.Sprintf("%d tokens (%d prompt, %d completion)",
			m.Usage.TotalTokens, m.Usage.PromptTokens, m.Usage.CompletionTokens)
	}
	return fmt.Sprintf("%d tokens", m.Usage.TotalTokens)
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}

// formatShortTimestamp formats a timestamp for inline display.
func formatShortTimestamp(t time.Time) string {
	return t.Local().Format("15:04:05")
}
