// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/thinkly/internal/model"
	"github.com/jeranaias/thinkly/internal/telemetry"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports the full message list. Options other than Now are
// ignored so the output can be re-read as chat_messages.
type JSONExporter struct {
	options *Options
}

// jsonDocument is the exported shape.
type jsonDocument struct {
	Title         string           `json:"title"`
	SelectedModel model.ProviderID `json:"selected_model"`
	ExportedAt    time.Time        `json:"exported_at"`
	Generator     string           `json:"generator"`
	Stats         telemetry.Stats  `json:"stats"`
	Messages      []model.Message  `json:"messages"`
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export converts a conversation to indented JSON.
func (e *JSONExporter) Export(conv *Conversation) ([]byte, error) {
	if err := conv.validate(); err != nil {
		return nil, err
	}
	doc := jsonDocument{
		Title:         conv.Title,
		SelectedModel: conv.SelectedModel,
		ExportedAt:    e.options.now().UTC(),
		Generator:     Generator,
		Stats:         telemetry.Compute(conv.Messages, time.Local),
		Messages:      conv.Messages,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
