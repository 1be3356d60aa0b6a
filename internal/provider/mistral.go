// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jeranaias/thinkly/internal/config"
	"github.com/jeranaias/thinkly/internal/logging"
	"github.com/jeranaias/thinkly/internal/model"
)

// Mistral generation parameters.
const (
	mistralTemperature = 0.7
	mistralMaxTokens   = 1000
)

// =============================================================================
// WIRE TYPES
// =============================================================================

type mistralMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type mistralRequest struct {
	Model       string           `json:"model"`
	Messages    []mistralMessage `json:"messages"`
	MaxTokens   int              `json:"max_tokens"`
	Temperature float64          `json:"temperature"`
	Stream      bool             `json:"stream"`
}

type mistralResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      *mistralMessage `json:"message"`
		FinishReason string          `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// =============================================================================
// ADAPTER
// =============================================================================

// Mistral talks to the chat completions endpoint.
type Mistral struct {
	apiKey   string
	endpoint string
	model    string

	client Doer
	pacer  *Pacer
	logger *slog.Logger
}

// NewMistral creates a Mistral adapter.
func NewMistral(cfg config.MistralConfig, opts Options) *Mistral {
	opts = opts.withDefaults()
	m := &Mistral{
		apiKey:   strings.TrimSpace(cfg.APIKey),
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		client:   opts.HTTPClient,
		pacer:    opts.Pacer,
		logger:   opts.Logger.With("provider", string(model.ProviderMistral)),
	}
	if m.endpoint == "" {
		m.endpoint = config.DefaultMistralEndpoint
	}
	if m.model == "" {
		m.model = config.DefaultMistralModel
	}
	return m
}

// ID returns "mistral".
func (m *Mistral) ID() model.ProviderID {
	return model.ProviderMistral
}

// IsConfigured reports whether an API key is set.
func (m *Mistral) IsConfigured() bool {
	return m.apiKey != ""
}

// Model returns the configured Mistral model name.
func (m *Mistral) Model() string {
	return m.model
}

// buildMistralMessages forwards user and assistant turns as-is and appends
// the new user message.
func buildMistralMessages(message string, history []Turn) []mistralMessage {
	turns := conversational(history)
	msgs := make([]mistralMessage, 0, len(turns)+1)
	for _, t := range turns {
		msgs = append(msgs, mistralMessage{Role: string(t.Role), Content: t.Content})
	}
	return append(msgs, mistralMessage{Role: string(model.RoleUser), Content: message})
}

// Send dispatches one chat completion.
func (m *Mistral) Send(ctx context.Context, message string, history []Turn) (Result, error) {
	message, err := checkInput(message)
	if err != nil {
		return Result{}, err
	}

	resp, err := m.call(ctx, mistralRequest{
		Model:       m.model,
		Messages:    buildMistralMessages(message, history),
		MaxTokens:   mistralMaxTokens,
		Temperature: mistralTemperature,
		Stream:      false,
	})
	if err != nil {
		return Result{}, err
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil || resp.Choices[0].Message.Content == "" {
		return Result{}, newError(m.ID(), KindMalformedResponse, http.StatusOK, "", nil)
	}

	result := Result{Message: resp.Choices[0].Message.Content}
	if u := resp.Usage; u != nil {
		result.Usage = &model.Usage{
			PromptTokens:     u.PromptTokens,
			CompletionTokens: u.CompletionTokens,
			TotalTokens:      u.TotalTokens,
		}
	}
	return result, nil
}

// Validate sends a tiny completion to check the key.
func (m *Mistral) Validate(ctx context.Context) error {
	_, err := m.call(ctx, mistralRequest{
		Model:     m.model,
		Messages:  []mistralMessage{{Role: string(model.RoleUser), Content: "Hello"}},
		MaxTokens: 5,
	})
	return err
}

// call paces, posts and decodes one request.
func (m *Mistral) call(ctx context.Context, req mistralRequest) (*mistralResponse, error) {
	if !m.IsConfigured() {
		return nil, missingKeyError(m.ID(), "THINKLY_MISTRAL_KEY")
	}

	if err := m.pacer.Wait(ctx); err != nil {
		return nil, errPacerWait(err)
	}

	start := time.Now()
	m.logger.Debug("dispatching request", "model", m.model, "turns", len(req.Messages), "key", logging.Fingerprint(m.apiKey))

	header := http.Header{}
	header.Set("Authorization", "Bearer "+m.apiKey)

	reply, err := postJSON(ctx, m.client, m.endpoint, header, req)
	if err != nil {
		m.logger.Warn("request failed", "error", err, "elapsed", time.Since(start))
		return nil, classifyTransport(m.ID(), err)
	}
	if !reply.OK() {
		perr := classifyStatus(m.ID(), reply)
		m.logger.Warn("request rejected", "status", reply.Status, "kind", perr.Kind, "elapsed", time.Since(start))
		return nil, perr
	}

	var resp mistralResponse
	if err := json.Unmarshal(reply.Body, &resp); err != nil {
		return nil, newError(m.ID(), KindMalformedResponse, reply.Status, "", err)
	}
	m.logger.Debug("response received", "elapsed", time.Since(start))
	return &resp, nil
}
