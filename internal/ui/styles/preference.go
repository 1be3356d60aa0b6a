// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/muesli/termenv"

	"github.com/jeranaias/thinkly/internal/storage"
)

// Theme setting values accepted by [ui] theme.
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
)

// detectDark reports the terminal background; swapped in tests.
var detectDark = termenv.HasDarkBackground

// Preference reads and writes the darkMode key.
type Preference struct {
	kv       storage.KV
	fallback string
}

// NewPreference creates a preference over kv. fallback is the [ui] theme
// setting used while darkMode has never been written.
func NewPreference(kv storage.KV, fallback string) *Preference {
	return &Preference{kv: kv, fallback: fallback}
}

// Dark returns the stored mode, or the fallback when none is stored or the
// stored value is unreadable.
func (p *Preference) Dark() bool {
	if dark, ok := p.Stored(); ok {
		return dark
	}
	return DefaultDark(p.fallback)
}

// Stored returns the persisted value, if there is a readable one.
func (p *Preference) Stored() (dark, ok bool) {
	data, err := p.kv.Get(storage.KeyDarkMode)
	if err != nil {
		return false, false
	}
	if err := json.Unmarshal(data, &dark); err != nil {
		return false, false
	}
	return dark, true
}

// Set persists the mode as a JSON boolean.
func (p *Preference) Set(dark bool) error {
	data, _ := json.Marshal(dark)
	if err := p.kv.Set(storage.KeyDarkMode, data); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}

// Toggle flips and persists the mode, returning the new value.
func (p *Preference) Toggle() (bool, error) {
	next := !p.Dark()
	return next, p.Set(next)
}

// Reset forgets the stored mode so the fallback applies again.
func (p *Preference) Reset() error {
	err := p.kv.Delete(storage.KeyDarkMode)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}

// DefaultDark resolves a [ui] theme setting to a mode.
func DefaultDark(mode string) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeDark:
		return true
	case ModeLight:
		return false
	default:
		return detectDark()
	}
}

// ParseMode parses a theme command argument. "toggle" is handled by callers.
func ParseMode(s string) (dark bool, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ModeDark:
		return true, nil
	case ModeLight:
		return false, nil
	default:
		return false, fmt.Errorf("unknown theme %q (use dark or light)", s)
	}
}
