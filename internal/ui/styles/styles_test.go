// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/thinkly/internal/markup"
	"github.com/jeranaias/thinkly/internal/storage"
)

func stubDetect(t *testing.T, dark bool) {
	t.Helper()
	prev := detectDark
	detectDark = func() bool { return dark }
	t.Cleanup(func() { detectDark = prev })
}

func TestNewTheme(t *testing.T) {
	dark := NewTheme(true)
	assert.True(t, dark.IsDark)
	assert.Equal(t, DarkPalette, dark.Palette)
	assert.Equal(t, markup.StyleDark, dark.ChromaStyle())
	assert.NotEmpty(t, dark.UserBubble.Render("hi"))

	light := dark.Toggle()
	assert.False(t, light.IsDark)
	assert.Equal(t, LightPalette, light.Palette)
	assert.Equal(t, markup.StyleLight, light.ChromaStyle())
}

func TestToggle_KeepsSize(t *testing.T) {
	th := NewTheme(true)
	th.SetSize(120, 40)
	next := th.Toggle()
	assert.Equal(t, 120, next.Width)
	assert.Equal(t, 40, next.Height)
}

func TestPreference_DefaultsFromSetting(t *testing.T) {
	stubDetect(t, true)
	kv := storage.NewMemoryKV()

	assert.True(t, NewPreference(kv, ModeDark).Dark())
	assert.False(t, NewPreference(kv, ModeLight).Dark())
	assert.True(t, NewPreference(kv, ModeAuto).Dark())

	stubDetect(t, false)
	assert.False(t, NewPreference(kv, ModeAuto).Dark())
}

func TestPreference_StoredAsJSONBool(t *testing.T) {
	kv := storage.NewMemoryKV()
	pref := NewPreference(kv, ModeDark)

	require.NoError(t, pref.Set(false))
	raw, err := kv.Get(storage.KeyDarkMode)
	require.NoError(t, err)
	assert.Equal(t, "false", string(raw))
	assert.False(t, pref.Dark())

	dark, err := pref.Toggle()
	require.NoError(t, err)
	assert.True(t, dark)
	raw, _ = kv.Get(storage.KeyDarkMode)
	assert.Equal(t, "true", string(raw))
}

func TestPreference_UnreadableFallsBack(t *testing.T) {
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(storage.KeyDarkMode, []byte("maybe")))
	pref := NewPreference(kv, ModeLight)

	_, ok := pref.Stored()
	assert.False(t, ok)
	assert.False(t, pref.Dark())
}

func TestPreference_Reset(t *testing.T) {
	kv := storage.NewMemoryKV()
	pref := NewPreference(kv, ModeLight)
	require.NoError(t, pref.Set(true))
	require.NoError(t, pref.Reset())
	assert.False(t, pref.Dark())
	require.NoError(t, pref.Reset())
}

func TestParseMode(t *testing.T) {
	dark, err := ParseMode("Dark")
	require.NoError(t, err)
	assert.True(t, dark)

	dark, err = ParseMode(" light ")
	require.NoError(t, err)
	assert.False(t, dark)

	_, err = ParseMode("sepia")
	assert.Error(t, err)
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		width      int
		value, max float64
		full       int
	}{
		{10, 0, 10, 0},
		{10, 10, 10, 10},
		{10, 5, 10, 5},
		{10, 20, 10, 10},
		{10, 3, 0, 0},
	}
	for _, tt := range tests {
		filled, empty := RenderBar(tt.width, tt.value, tt.max)
		assert.Equal(t, tt.width, utf8.RuneCountInString(filled)+utf8.RuneCountInString(empty))
		assert.Equal(t, tt.full, utf8.RuneCountInString(filled))
	}

	filled, empty := RenderBar(0, 1, 1)
	assert.Empty(t, filled)
	assert.Empty(t, empty)
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "   ", Sparkline([]int{0, 0, 0}))
	line := []rune(Sparkline([]int{0, 1, 8}))
	require.Len(t, line, 3)
	assert.Equal(t, ' ', line[0])
	assert.Equal(t, '▁', line[1])
	assert.Equal(t, '█', line[2])
}
