// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/jeranaias/thinkly/internal/logging"
	"github.com/jeranaias/thinkly/internal/model"
)

// Estimator counts tokens locally when a provider reports no usage.
// Counts are best-effort telemetry, not billing figures.
type Estimator interface {
	Count(text string) int
	Name() string
}

// Tokenizer names accepted by NewEstimator.
const (
	TokenizerChars    = "chars"
	TokenizerTiktoken = "tiktoken"
)

// NewEstimator returns the estimator named by the usage.tokenizer setting.
// Unknown names get the character estimator.
func NewEstimator(name string, logger *slog.Logger) Estimator {
	if strings.EqualFold(name, TokenizerTiktoken) {
		return &TiktokenEstimator{logger: logging.OrDefault(logger)}
	}
	return CharEstimator{}
}

// estimatedUsage wraps a local count in a Usage marked as estimated.
func estimatedUsage(est Estimator, text string) *model.Usage {
	return &model.Usage{
		TotalTokens: est.Count(text),
		Estimated:   true,
	}
}

// =============================================================================
// CHARACTER ESTIMATOR
// =============================================================================

// CharEstimator reports the character count of the reply.
type CharEstimator struct{}

// Count returns the number of runes in text.
func (CharEstimator) Count(text string) int {
	return utf8.RuneCountInString(text)
}

// Name returns "chars".
func (CharEstimator) Name() string { return TokenizerChars }

// =============================================================================
// TIKTOKEN ESTIMATOR
// =============================================================================

// TiktokenEstimator counts cl100k_base tokens. The encoding is loaded on
// first use; if it cannot be loaded the character count is used instead.
type TiktokenEstimator struct {
	logger *slog.Logger

	once sync.Once
	enc  *tiktoken.Tiktoken
}

func (t *TiktokenEstimator) load() {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		t.logger.Warn("tiktoken unavailable, falling back to character counts", "error", err)
		return
	}
	t.enc = enc
}

// Count returns the token count of text.
func (t *TiktokenEstimator) Count(text string) int {
	t.once.Do(t.load)
	if t.enc == nil {
		return CharEstimator{}.Count(text)
	}
	return len(t.enc.Encode(text, nil, nil))
}

// Name returns "tiktoken".
func (t *TiktokenEstimator) Name() string { return TokenizerTiktoken }
