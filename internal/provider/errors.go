// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jeranaias/thinkly/internal/model"
)

// ErrInvalidInput is returned for an empty (after trimming) message.
var ErrInvalidInput = errors.New("message is empty")

// =============================================================================
// ERROR CLASSIFICATION
// =============================================================================

// Kind classifies a provider failure. KindUnknown is only reported by
// KindOf for errors that are not *Error.
type Kind int

const (
	KindUnknown Kind = iota
	KindBadRequest
	KindUnauthorized
	KindRateLimited
	KindServerError
	KindNetwork
	KindMalformedResponse
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "BadRequest"
	case KindUnauthorized:
		return "Unauthorized"
	case KindRateLimited:
		return "RateLimited"
	case KindServerError:
		return "ServerError"
	case KindNetwork:
		return "NetworkError"
	case KindMalformedResponse:
		return "MalformedResponse"
	default:
		return "Unknown"
	}
}

// Retryable reports whether a later manual retry may succeed unchanged.
func (k Kind) Retryable() bool {
	return k == KindRateLimited || k == KindServerError || k == KindNetwork
}

// Error is a classified provider failure. Message is the human-readable
// cause shown to the user.
type Error struct {
	Kind     Kind
	Provider model.ProviderID
	Status   int
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the transport error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by Kind, and by Provider when the target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Provider == "" || t.Provider == e.Provider
}

// Sentinels for errors.Is checks against a classification.
var (
	ErrBadRequest        = &Error{Kind: KindBadRequest, Message: "bad request"}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrRateLimited       = &Error{Kind: KindRateLimited, Message: "rate limited"}
	ErrServerError       = &Error{Kind: KindServerError, Message: "server error"}
	ErrNetwork           = &Error{Kind: KindNetwork, Message: "network error"}
	ErrMalformedResponse = &Error{Kind: KindMalformedResponse, Message: "invalid response format"}
)

// KindOf returns the classification of err, or KindUnknown.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// =============================================================================
// USER-FACING MESSAGES
// =============================================================================

// newError builds a classified error with the standard user-facing text.
// apiMessage is the provider's own error text, shown for client errors other
// than a plain 400.
func newError(p model.ProviderID, kind Kind, status int, apiMessage string, cause error) *Error {
	return &Error{
		Kind:     kind,
		Provider: p,
		Status:   status,
		Message:  userMessage(p, kind, status, apiMessage),
		Err:      cause,
	}
}

func userMessage(p model.ProviderID, kind Kind, status int, apiMessage string) string {
	name := p.ShortName()
	switch kind {
	case KindBadRequest:
		if status == 0 || status == http.StatusBadRequest {
			return fmt.Sprintf("Invalid request to %s API. Please check your input.", name)
		}
		if apiMessage != "" {
			return apiMessage
		}
		return fmt.Sprintf("API Error (%d): Unknown error", status)
	case KindUnauthorized:
		return fmt.Sprintf("Invalid API key. Please check your %s API key.", name)
	case KindRateLimited:
		return "Rate limit exceeded. Please wait a moment and try again."
	case KindServerError:
		return fmt.Sprintf("%s server error. Please try again later.", name)
	case KindNetwork:
		return "Network error. Please check your internet connection."
	case KindMalformedResponse:
		return fmt.Sprintf("Invalid response format from %s API", name)
	default:
		return fmt.Sprintf("API Error (%d): Unknown error", status)
	}
}

// missingKeyError is returned before any network call when no key is set.
func missingKeyError(p model.ProviderID, envVar string) *Error {
	return &Error{
		Kind:     KindUnauthorized,
		Provider: p,
		Message: fmt.Sprintf("%s API key not found. Set %s or %s.api_key in the config file.",
			p.ShortName(), envVar, p),
	}
}
