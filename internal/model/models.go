// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// =============================================================================
// PROVIDER IDENTIFIERS
// =============================================================================

// ProviderID identifies an LLM backend.
type ProviderID string

const (
	ProviderGemini  ProviderID = "gemini"
	ProviderMistral ProviderID = "mistral"
)

// DefaultProvider is selected when nothing has been persisted yet.
const DefaultProvider = ProviderGemini

// ErrInvalidModel is returned for provider identifiers outside the known set.
var ErrInvalidModel = errors.New("invalid model")

// ProviderInfo is the display metadata shown by the model selector.
type ProviderInfo struct {
	ID          ProviderID
	Name        string
	Description string
	Color       string
}

// Providers lists the selectable backends in menu order.
var Providers = []ProviderInfo{
	{
		ID:          ProviderGemini,
		Name:        "Google Gemini",
		Description: "Powerful AI model by Google",
		Color:       "#4285F4",
	},
	{
		ID:          ProviderMistral,
		Name:        "Mistral",
		Description: "High-performance open model",
		Color:       "#7C3AED",
	},
}

// String returns the identifier.
func (p ProviderID) String() string {
	return string(p)
}

// Valid reports whether p is a known provider.
func (p ProviderID) Valid() bool {
	_, ok := LookupProvider(p)
	return ok
}

// DisplayName returns the selector name, e.g. "Google Gemini".
func (p ProviderID) DisplayName() string {
	if info, ok := LookupProvider(p); ok {
		return info.Name
	}
	return "Unknown Model"
}

// ShortName returns the capitalised identifier used in charts ("Gemini").
// Empty identifiers (messages persisted without a model) read "Unknown".
func (p ProviderID) ShortName() string {
	if p == "" {
		return "Unknown"
	}
	return cases.Title(language.English).String(string(p))
}

// Next returns the provider after p in menu order, wrapping around.
func (p ProviderID) Next() ProviderID {
	for i, info := range Providers {
		if info.ID == p {
			return Providers[(i+1)%len(Providers)].ID
		}
	}
	return DefaultProvider
}

// LookupProvider returns the metadata for id.
func LookupProvider(id ProviderID) (ProviderInfo, bool) {
	for _, info := range Providers {
		if info.ID == id {
			return info, true
		}
	}
	return ProviderInfo{}, false
}

// ParseProvider validates a user-supplied identifier.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseProvider(s string) (ProviderID, error) {
	id := ProviderID(strings.ToLower(strings.TrimSpace(s)))
	if !id.Valid() {
		return "", fmt.Errorf("%w: %q (want one of %s)", ErrInvalidModel, s, providerList())
	}
	return id, nil
}

func providerList() string {
	ids := make([]string, len(Providers))
	for i, info := range Providers {
		ids[i] = string(info.ID)
	}
	return strings.Join(ids, ", ")
}
