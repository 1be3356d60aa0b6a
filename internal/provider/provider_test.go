// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/thinkly/internal/config"
	"github.com/jeranaias/thinkly/internal/logging"
	"github.com/jeranaias/thinkly/internal/model"
)

// =============================================================================
// HELPERS
// =============================================================================

// capture records the last request a test server received.
type capture struct {
	calls atomic.Int32

	mu     sync.Mutex
	body   map[string]any
	query  string
	header http.Header
}

func (c *capture) last() (map[string]any, string, http.Header) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.body, c.query, c.header
}

func newServer(t *testing.T, c *capture, status int, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.calls.Add(1)
		data, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(data, &body)
		c.mu.Lock()
		c.body, c.query, c.header = body, r.URL.RawQuery, r.Header.Clone()
		c.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testOptions() Options {
	return Options{Pacer: NewPacer(0), Logger: logging.Discard()}
}

func newTestGemini(url, key string) *Gemini {
	return NewGemini(config.GeminiConfig{APIKey: key, Endpoint: url}, testOptions())
}

func newTestMistral(url, key string) *Mistral {
	return NewMistral(config.MistralConfig{APIKey: key, Endpoint: url, Model: "mistral-large-latest"}, testOptions())
}

const geminiOK = `{
	"candidates": [{"content": {"parts": [{"text": "Hi there!"}], "role": "model"}, "finishReason": "STOP"}],
	"usageMetadata": {"promptTokenCount": 3, "candidatesTokenCount": 4, "totalTokenCount": 7}
}`

const mistralOK = `{
	"id": "cmpl-1",
	"model": "mistral-large-latest",
	"choices": [{"message": {"role": "assistant", "content": "Bonjour!"}, "finish_reason": "stop"}],
	"usage": {"prompt_tokens": 5, "completion_tokens": 2, "total_tokens": 7}
}`

// =============================================================================
// GEMINI
// =============================================================================

func TestGemini_RequestShape(t *testing.T) {
	var c capture
	srv := newServer(t, &c, http.StatusOK, geminiOK)
	g := newTestGemini(srv.URL+"/v1beta/models/gemini-1.5-flash:generateContent", "AIza-test")

	history := []Turn{
		{Role: model.RoleUser, Content: "first"},
		{Role: model.RoleAssistant, Content: "reply"},
		{Role: model.RoleError, Content: "Error: boom"},
	}
	res, err := g.Send(context.Background(), "  Hello  ", history)
	require.NoError(t, err)

	assert.Equal(t, "Hi there!", res.Message)
	require.NotNil(t, res.Usage)
	assert.Equal(t, 7, res.Usage.TotalTokens)
	assert.False(t, res.Usage.Estimated)

	body, query, header := c.last()
	assert.Equal(t, "key=AIza-test", query)
	assert.Empty(t, header.Get("Authorization"))

	contents := body["contents"].([]any)
	require.Len(t, contents, 3, "error turns are not forwarded")
	roles := make([]string, len(contents))
	for i, raw := range contents {
		roles[i] = raw.(map[string]any)["role"].(string)
	}
	assert.Equal(t, []string{"user", "model", "user"}, roles)
	last := contents[2].(map[string]any)["parts"].([]any)[0].(map[string]any)["text"]
	assert.Equal(t, "Hello", last)

	gen := body["generationConfig"].(map[string]any)
	assert.Equal(t, 0.7, gen["temperature"])
	assert.Equal(t, float64(40), gen["topK"])
	assert.Equal(t, 0.95, gen["topP"])
	assert.Equal(t, float64(1000), gen["maxOutputTokens"])

	safety := body["safetySettings"].([]any)
	require.Len(t, safety, 4)
	for _, raw := range safety {
		assert.Equal(t, "BLOCK_MEDIUM_AND_ABOVE", raw.(map[string]any)["threshold"])
	}
}

func TestGemini_EstimatesUsageWhenMetadataMissing(t *testing.T) {
	var c capture
	srv := newServer(t, &c, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"héllo"}]}}]}`)
	g := newTestGemini(srv.URL, "k")

	res, err := g.Send(context.Background(), "hi", nil)
	require.NoError(t, err)
	require.NotNil(t, res.Usage)
	assert.Equal(t, 5, res.Usage.TotalTokens)
	assert.True(t, res.Usage.Estimated)
}

func TestGemini_StatusClassification(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		kind    Kind
		message string
	}{
		{400, `{}`, KindBadRequest, "Invalid request to Gemini API. Please check your input."},
		{401, `{}`, KindUnauthorized, "Invalid API key. Please check your Gemini API key."},
		{403, `{}`, KindUnauthorized, "Invalid API key. Please check your Gemini API key."},
		{429, `{}`, KindRateLimited, "Rate limit exceeded. Please wait a moment and try again."},
		{500, `{}`, KindServerError, "Gemini server error. Please try again later."},
		{503, `not json`, KindServerError, "Gemini server error. Please try again later."},
		{404, `{"error":{"code":404,"message":"model not found"}}`, KindBadRequest, "model not found"},
		{413, `{}`, KindBadRequest, "API Error (413): Unknown error"},
		{418, ``, KindBadRequest, "API Error (418): Unknown error"},
	}
	for _, tt := range tests {
		var c capture
		srv := newServer(t, &c, tt.status, tt.body)
		g := newTestGemini(srv.URL, "k")

		_, err := g.Send(context.Background(), "hi", nil)
		require.Error(t, err, "status %d", tt.status)

		var perr *Error
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, tt.kind, perr.Kind, "status %d", tt.status)
		assert.Equal(t, tt.status, perr.Status)
		assert.Equal(t, tt.message, err.Error())
		assert.Equal(t, model.ProviderGemini, perr.Provider)
	}
}

func TestGemini_MalformedResponses(t *testing.T) {
	for _, body := range []string{`{}`, `{"candidates":[]}`, `{"candidates":[{"content":{"parts":[]}}]}`, `<html>`} {
		var c capture
		srv := newServer(t, &c, http.StatusOK, body)
		g := newTestGemini(srv.URL, "k")

		_, err := g.Send(context.Background(), "hi", nil)
		assert.True(t, errors.Is(err, ErrMalformedResponse), "body %q: %v", body, err)
		assert.Equal(t, "Invalid response format from Gemini API", err.Error())
	}
}

func TestGemini_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	g := newTestGemini(url, "secret-key")
	_, err := g.Send(context.Background(), "hi", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
	assert.Equal(t, "Network error. Please check your internet connection.", err.Error())
	assert.NotContains(t, err.Error(), "secret-key")
}

func TestGemini_MissingKeyMakesNoCall(t *testing.T) {
	var c capture
	srv := newServer(t, &c, http.StatusOK, geminiOK)
	g := newTestGemini(srv.URL, "  ")

	_, err := g.Send(context.Background(), "hi", nil)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, int32(0), c.calls.Load())
}

func TestGemini_EmptyInputRejected(t *testing.T) {
	var c capture
	srv := newServer(t, &c, http.StatusOK, geminiOK)
	g := newTestGemini(srv.URL, "k")

	_, err := g.Send(context.Background(), " \n\t", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, int32(0), c.calls.Load())
}

func TestGemini_Validate(t *testing.T) {
	var c capture
	srv := newServer(t, &c, http.StatusOK, geminiOK)
	g := newTestGemini(srv.URL, "k")

	require.NoError(t, g.Validate(context.Background()))
	body, _, _ := c.last()
	gen := body["generationConfig"].(map[string]any)
	assert.Equal(t, float64(5), gen["maxOutputTokens"])
	assert.NotContains(t, body, "safetySettings")
}

// Two sends issued back to back must reach the network at least one
// second apart.
func TestGemini_ConsecutiveSendsArePaced(t *testing.T) {
	var c capture
	srv := newServer(t, &c, http.StatusOK, geminiOK)

	pacer := NewPacer(DefaultMinInterval)
	g := NewGemini(config.GeminiConfig{APIKey: "k", Endpoint: srv.URL}, Options{Pacer: pacer, Logger: logging.Discard()})

	_, err := g.Send(context.Background(), "one", nil)
	require.NoError(t, err)
	first := pacer.Last()

	_, err = g.Send(context.Background(), "two", nil)
	require.NoError(t, err)
	second := pacer.Last()

	assert.GreaterOrEqual(t, second.Sub(first), time.Second)
	assert.Equal(t, int32(2), c.calls.Load())
}

// =============================================================================
// MISTRAL
// =============================================================================

func TestMistral_RequestShape(t *testing.T) {
	var c capture
	srv := newServer(t, &c, http.StatusOK, mistralOK)
	m := newTestMistral(srv.URL, "m-secret")

	history := []Turn{
		{Role: model.RoleUser, Content: "q1"},
		{Role: model.RoleError, Content: "Error: x"},
		{Role: model.RoleAssistant, Content: "a1"},
	}
	res, err := m.Send(context.Background(), "q2", history)
	require.NoError(t, err)
	assert.Equal(t, "Bonjour!", res.Message)
	require.NotNil(t, res.Usage)
	assert.Equal(t, 7, res.Usage.TotalTokens)

	body, _, header := c.last()
	assert.Equal(t, "Bearer m-secret", header.Get("Authorization"))
	assert.Equal(t, "mistral-large-latest", body["model"])
	assert.Equal(t, float64(1000), body["max_tokens"])
	assert.Equal(t, 0.7, body["temperature"])
	assert.Equal(t, false, body["stream"])

	msgs := body["messages"].([]any)
	require.Len(t, msgs, 3)
	var got [][2]string
	for _, raw := range msgs {
		msg := raw.(map[string]any)
		got = append(got, [2]string{msg["role"].(string), msg["content"].(string)})
	}
	assert.Equal(t, [][2]string{{"user", "q1"}, {"assistant", "a1"}, {"user", "q2"}}, got)
}

func TestMistral_UsageOptional(t *testing.T) {
	var c capture
	srv := newServer(t, &c, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`)
	m := newTestMistral(srv.URL, "k")

	res, err := m.Send(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Nil(t, res.Usage)
}

func TestMistral_StatusClassification(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		kind    Kind
		message string
	}{
		{400, `{"message":"bad"}`, KindBadRequest, "Invalid request to Mistral API. Please check your input."},
		{401, `{"message":"Unauthorized"}`, KindUnauthorized, "Invalid API key. Please check your Mistral API key."},
		{429, `{}`, KindRateLimited, "Rate limit exceeded. Please wait a moment and try again."},
		{502, `{}`, KindServerError, "Mistral server error. Please try again later."},
		{404, `{"message":"nope"}`, KindBadRequest, "nope"},
		{413, `{"message":"nope"}`, KindBadRequest, "nope"},
		{422, `{"object":"error","message":"Invalid model"}`, KindBadRequest, "Invalid model"},
	}
	for _, tt := range tests {
		var c capture
		srv := newServer(t, &c, tt.status, tt.body)
		m := newTestMistral(srv.URL, "k")

		_, err := m.Send(context.Background(), "hi", nil)
		assert.Equal(t, tt.kind, KindOf(err), "status %d", tt.status)
		assert.Equal(t, tt.message, err.Error())
	}
}

func TestClientErrorsAreBadRequests(t *testing.T) {
	for status := 400; status < 500; status++ {
		switch status {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
			continue
		}
		assert.Equal(t, KindBadRequest, kindForStatus(status), "status %d", status)
	}

	var c capture
	srv := newServer(t, &c, http.StatusUnprocessableEntity, `{"message":"Invalid model"}`)
	_, err := newTestMistral(srv.URL, "k").Send(context.Background(), "hi", nil)
	assert.True(t, errors.Is(err, ErrBadRequest))
}

func TestAny2xxIsSuccess(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusCreated, http.StatusAccepted} {
		var c capture
		srv := newServer(t, &c, status, geminiOK)
		res, err := newTestGemini(srv.URL, "k").Send(context.Background(), "hi", nil)
		require.NoError(t, err, "status %d", status)
		assert.Equal(t, "Hi there!", res.Message)

		srv = newServer(t, &c, status, mistralOK)
		res, err = newTestMistral(srv.URL, "k").Send(context.Background(), "hi", nil)
		require.NoError(t, err, "status %d", status)
		assert.Equal(t, "Bonjour!", res.Message)
	}
}

func TestMistral_MalformedAndMissingKey(t *testing.T) {
	var c capture
	srv := newServer(t, &c, http.StatusOK, `{"choices":[]}`)

	_, err := newTestMistral(srv.URL, "k").Send(context.Background(), "hi", nil)
	assert.True(t, errors.Is(err, ErrMalformedResponse))
	assert.Equal(t, "Invalid response format from Mistral API", err.Error())

	before := c.calls.Load()
	_, err = newTestMistral(srv.URL, "").Send(context.Background(), "hi", nil)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, before, c.calls.Load())
}

func TestMistral_Validate(t *testing.T) {
	var c capture
	srv := newServer(t, &c, http.StatusUnauthorized, `{"message":"Unauthorized"}`)
	err := newTestMistral(srv.URL, "k").Validate(context.Background())
	assert.True(t, errors.Is(err, ErrUnauthorized))
	body, _, _ := c.last()
	assert.Equal(t, float64(5), body["max_tokens"])
}

// =============================================================================
// REGISTRY AND ERRORS
// =============================================================================

func TestNewSet_SharesOnePacer(t *testing.T) {
	cfg := config.Default()
	set := NewSet(cfg, Options{Logger: logging.Discard()})

	g, err := set.Get(model.ProviderGemini)
	require.NoError(t, err)
	m, err := set.Get(model.ProviderMistral)
	require.NoError(t, err)

	assert.Same(t, g.(*Gemini).pacer, m.(*Mistral).pacer)
	assert.Equal(t, time.Second, g.(*Gemini).pacer.Floor())

	_, err = set.Get("gpt")
	assert.ErrorIs(t, err, model.ErrInvalidModel)
}

func TestErrorIs_MatchesKindAndProvider(t *testing.T) {
	err := newError(model.ProviderMistral, KindRateLimited, 429, "", nil)

	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.False(t, errors.Is(err, ErrServerError))
	assert.True(t, errors.Is(err, &Error{Kind: KindRateLimited, Provider: model.ProviderMistral}))
	assert.False(t, errors.Is(err, &Error{Kind: KindRateLimited, Provider: model.ProviderGemini}))
	assert.True(t, KindRateLimited.Retryable())
	assert.False(t, KindUnauthorized.Retryable())
}

func TestNewEstimator(t *testing.T) {
	assert.Equal(t, TokenizerChars, NewEstimator("chars", nil).Name())
	assert.Equal(t, TokenizerTiktoken, NewEstimator("TikToken", nil).Name())
	assert.Equal(t, TokenizerChars, NewEstimator("bogus", nil).Name())
	assert.Equal(t, 3, CharEstimator{}.Count("日本語"))
}
