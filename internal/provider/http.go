// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jeranaias/thinkly/internal/model"
)

// MaxResponseSize is the maximum allowed response body size.
// SECURITY: Response size limit prevents memory exhaustion.
const MaxResponseSize = 10 * 1024 * 1024

// userAgent identifies thinkly to the provider APIs.
const userAgent = "thinkly/1.0"

// Doer is the subset of *http.Client the adapters need.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// The client has no Timeout; every call is bounded by its context.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
}

// httpReply is a fully-read HTTP response.
type httpReply struct {
	Status int
	Body   []byte
}

// OK reports a 2xx status.
func (r *httpReply) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// postJSON marshals body, POSTs it, and reads the reply with a size cap.
// The returned error is non-nil only when no usable response was received.
func postJSON(ctx context.Context, client Doer, url string, header http.Header, body any) (*httpReply, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)

	// SECURITY: Clear Authorization header immediately after request to prevent logging
	req.Header.Del("Authorization")

	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := readResponse(resp)
	if err != nil {
		return nil, err
	}
	return &httpReply{Status: resp.StatusCode, Body: data}, nil
}

// readResponse reads the body, failing when it exceeds MaxResponseSize.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// =============================================================================
// STATUS CLASSIFICATION
// =============================================================================

// kindForStatus maps a non-2xx HTTP status to a failure kind. Every
// client-side status other than 401, 403 and 429 is a bad request.
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusBadRequest:
		return KindBadRequest
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthorized
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 500:
		return KindServerError
	default:
		return KindBadRequest
	}
}

// apiErrorBody covers the error envelopes both providers use:
// Gemini {"error":{"code":..,"message":..}} and Mistral {"message":..} or
// {"error":{"message":..}}.
type apiErrorBody struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// apiErrorMessage extracts the provider's error text, if any.
func apiErrorMessage(body []byte) string {
	var env apiErrorBody
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	if env.Error != nil && env.Error.Message != "" {
		return env.Error.Message
	}
	return env.Message
}

// classifyStatus converts a non-2xx reply to a classified error.
func classifyStatus(p model.ProviderID, reply *httpReply) *Error {
	return newError(p, kindForStatus(reply.Status), reply.Status, apiErrorMessage(reply.Body), nil)
}

// classifyTransport converts a failed round trip (no response) to an error.
func classifyTransport(p model.ProviderID, err error) *Error {
	return newError(p, KindNetwork, 0, "", err)
}
