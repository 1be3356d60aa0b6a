// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAtomicWriteFile_ReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "value.json")

	if err := AtomicWriteFile(path, []byte("first"), 0o600); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("second"), 0o600); err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("content = %q, want %q", data, "second")
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir failed: %v", err)
	}
	for _, e := range entries {
		if IsTempFile(e.Name()) {
			t.Errorf("temp file %q left behind", e.Name())
		}
	}
}

func TestTruncateWidth(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 0, ""},
		{"hello", 2, "he"},
		{"日本語テキスト", 7, "日本..."},
	}
	for _, tt := range tests {
		if got := TruncateWidth(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateWidth(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 4); got != "ab  " {
		t.Errorf("PadRight = %q", got)
	}
	if got := StringWidth(PadRight("日本", 6)); got != 6 {
		t.Errorf("padded width = %d, want 6", got)
	}
}

func TestSingleLine(t *testing.T) {
	if got := SingleLine("a\r\nb\n\n c"); got != "a b c" {
		t.Errorf("SingleLine = %q", got)
	}
}

func TestWordWrap(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"the quick brown fox", 9, "the quick\nbrown fox"},
		{"short", 20, "short"},
		{"a\n\nb", 5, "a\n\nb"},
		{"unbreakableword x", 4, "unbreakableword\nx"},
		{"no wrap", 0, "no wrap"},
	}
	for _, tt := range tests {
		if got := WordWrap(tt.in, tt.width); got != tt.want {
			t.Errorf("WordWrap(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
