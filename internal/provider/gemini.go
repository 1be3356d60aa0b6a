// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jeranaias/thinkly/internal/config"
	"github.com/jeranaias/thinkly/internal/logging"
	"github.com/jeranaias/thinkly/internal/model"
)

// Gemini generation parameters.
const (
	geminiTemperature     = 0.7
	geminiTopK            = 40
	geminiTopP            = 0.95
	geminiMaxOutputTokens = 1000
	geminiSafetyThreshold = "BLOCK_MEDIUM_AND_ABOVE"
)

var geminiSafetyCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

// =============================================================================
// WIRE TYPES
// =============================================================================

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	TopK            int     `json:"topK,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
	SafetySettings   []geminiSafetySetting  `json:"safetySettings,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// =============================================================================
// ADAPTER
// =============================================================================

// Gemini talks to Google's generateContent endpoint.
type Gemini struct {
	apiKey   string
	endpoint string

	client    Doer
	pacer     *Pacer
	estimator Estimator
	logger    *slog.Logger
}

// NewGemini creates a Gemini adapter.
func NewGemini(cfg config.GeminiConfig, opts Options) *Gemini {
	opts = opts.withDefaults()
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = config.DefaultGeminiEndpoint
	}
	return &Gemini{
		apiKey:    strings.TrimSpace(cfg.APIKey),
		endpoint:  endpoint,
		client:    opts.HTTPClient,
		pacer:     opts.Pacer,
		estimator: opts.Estimator,
		logger:    opts.Logger.With("provider", string(model.ProviderGemini)),
	}
}

// ID returns "gemini".
func (g *Gemini) ID() model.ProviderID {
	return model.ProviderGemini
}

// IsConfigured reports whether an API key is set.
func (g *Gemini) IsConfigured() bool {
	return g.apiKey != ""
}

// requestURL appends the key as a query parameter.
// SECURITY: The result contains the key and must never be logged.
func (g *Gemini) requestURL() (string, error) {
	u, err := url.Parse(g.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid gemini endpoint: %w", err)
	}
	q := u.Query()
	q.Set("key", g.apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// buildGeminiContents maps history plus the new message onto Gemini roles:
// user stays user, assistant becomes model, everything else is dropped.
func buildGeminiContents(message string, history []Turn) []geminiContent {
	turns := conversational(history)
	contents := make([]geminiContent, 0, len(turns)+1)
	for _, t := range turns {
		role := "user"
		if t.Role == model.RoleAssistant {
			role = "model"
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: t.Content}}})
	}
	return append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: message}}})
}

func geminiSafety() []geminiSafetySetting {
	settings := make([]geminiSafetySetting, len(geminiSafetyCategories))
	for i, c := range geminiSafetyCategories {
		settings[i] = geminiSafetySetting{Category: c, Threshold: geminiSafetyThreshold}
	}
	return settings
}

// Send dispatches one generateContent call.
func (g *Gemini) Send(ctx context.Context, message string, history []Turn) (Result, error) {
	message, err := checkInput(message)
	if err != nil {
		return Result{}, err
	}

	req := geminiRequest{
		Contents: buildGeminiContents(message, history),
		GenerationConfig: geminiGenerationConfig{
			Temperature:     geminiTemperature,
			TopK:            geminiTopK,
			TopP:            geminiTopP,
			MaxOutputTokens: geminiMaxOutputTokens,
		},
		SafetySettings: geminiSafety(),
	}

	resp, err := g.call(ctx, req)
	if err != nil {
		return Result{}, err
	}

	text, ok := resp.text()
	if !ok {
		return Result{}, newError(g.ID(), KindMalformedResponse, http.StatusOK, "", nil)
	}

	var usage *model.Usage
	if m := resp.UsageMetadata; m != nil && m.TotalTokenCount > 0 {
		usage = &model.Usage{
			PromptTokens:     m.PromptTokenCount,
			CompletionTokens: m.CandidatesTokenCount,
			TotalTokens:      m.TotalTokenCount,
		}
	} else {
		usage = estimatedUsage(g.estimator, text)
	}

	return Result{Message: text, Usage: usage}, nil
}

// Validate sends a tiny request to check the key.
func (g *Gemini) Validate(ctx context.Context) error {
	_, err := g.call(ctx, geminiRequest{
		Contents:         []geminiContent{{Role: "user", Parts: []geminiPart{{Text: "Hello"}}}},
		GenerationConfig: geminiGenerationConfig{MaxOutputTokens: 5},
	})
	return err
}

// call paces, posts and decodes one request.
func (g *Gemini) call(ctx context.Context, req geminiRequest) (*geminiResponse, error) {
	if !g.IsConfigured() {
		return nil, missingKeyError(g.ID(), "THINKLY_GEMINI_KEY")
	}
	target, err := g.requestURL()
	if err != nil {
		return nil, newError(g.ID(), KindBadRequest, 0, "", err)
	}

	if err := g.pacer.Wait(ctx); err != nil {
		return nil, errPacerWait(err)
	}

	start := time.Now()
	g.logger.Debug("dispatching request", "turns", len(req.Contents), "key", logging.Fingerprint(g.apiKey))

	reply, err := postJSON(ctx, g.client, target, nil, req)
	if err != nil {
		g.logger.Warn("request failed", "error", redactKey(err.Error(), g.apiKey), "elapsed", time.Since(start))
		return nil, classifyTransport(g.ID(), err)
	}
	if !reply.OK() {
		perr := classifyStatus(g.ID(), reply)
		g.logger.Warn("request rejected", "status", reply.Status, "kind", perr.Kind, "elapsed", time.Since(start))
		return nil, perr
	}

	var resp geminiResponse
	if err := json.Unmarshal(reply.Body, &resp); err != nil {
		return nil, newError(g.ID(), KindMalformedResponse, reply.Status, "", err)
	}
	g.logger.Debug("response received", "elapsed", time.Since(start))
	return &resp, nil
}

// text returns candidates[0].content.parts[0].text.
func (r *geminiResponse) text() (string, bool) {
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return "", false
	}
	text := r.Candidates[0].Content.Parts[0].Text
	return text, text != ""
}

// redactKey strips the API key from transport error text, which embeds the URL.
func redactKey(s, key string) string {
	if key == "" {
		return s
	}
	s = strings.ReplaceAll(s, url.QueryEscape(key), "[REDACTED]")
	return strings.ReplaceAll(s, key, "[REDACTED]")
}
