// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"sort"
	"time"

	"github.com/jeranaias/thinkly/internal/model"
)

// UnknownModel labels messages with no model tag.
const UnknownModel = "unknown"

// =============================================================================
// STATS
// =============================================================================

// Stats summarizes a conversation.
type Stats struct {
	TotalMessages     int `json:"total_messages"`
	UserMessages      int `json:"user_messages"`
	AssistantMessages int `json:"assistant_messages"`
	ErrorMessages     int `json:"error_messages"`

	// TotalTokens estimates every message at ceil(chars/4).
	TotalTokens int `json:"total_tokens"`
	// ReportedTokens sums provider-reported usage on assistant messages.
	ReportedTokens int `json:"reported_tokens"`

	// AverageResponse is the mean user-to-reply gap; zero without samples.
	AverageResponse time.Duration `json:"average_response"`
	ResponseSamples int           `json:"response_samples"`

	ModelUsage []ModelCount `json:"model_usage"`
	Types      MessageTypes `json:"message_types"`
	Hourly     [24]int      `json:"hourly_activity"`
	First      time.Time    `json:"first,omitempty"`
	Last       time.Time    `json:"last,omitempty"`
}

// ModelCount is the number of messages tagged with one model.
type ModelCount struct {
	Model string `json:"model"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MessageTypes splits messages by content. Text and Code cover every
// message; Error counts error-role messages on top of that split.
type MessageTypes struct {
	Text  int `json:"text"`
	Code  int `json:"code"`
	Error int `json:"error"`
}

// Compute derives stats from messages. Hourly buckets use loc (nil means
// time.Local).
func Compute(messages []model.Message, loc *time.Location) Stats {
	if loc == nil {
		loc = time.Local
	}

	var s Stats
	s.TotalMessages = len(messages)
	usage := make(map[string]int)

	var pending time.Time
	var waiting bool
	var responseTotal time.Duration

	for _, m := range messages {
		switch m.Role {
		case model.RoleUser:
			s.UserMessages++
			pending, waiting = m.Timestamp, true
		case model.RoleAssistant, model.RoleError:
			if m.Role == model.RoleAssistant {
				s.AssistantMessages++
			} else {
				s.ErrorMessages++
			}
			if waiting {
				if gap := m.Timestamp.Sub(pending); gap >= 0 {
					responseTotal += gap
					s.ResponseSamples++
				}
				waiting = false
			}
		}

		name := string(m.Model)
		if name == "" {
			name = UnknownModel
		}
		usage[name]++

		if m.HasCode() {
			s.Types.Code++
		} else {
			s.Types.Text++
		}

		s.TotalTokens += m.EstimateTokens()
		if m.Role == model.RoleAssistant && m.Usage != nil {
			s.ReportedTokens += m.Usage.TotalTokens
		}

		if !m.Timestamp.IsZero() {
			s.Hourly[m.Timestamp.In(loc).Hour()]++
			if s.First.IsZero() || m.Timestamp.Before(s.First) {
				s.First = m.Timestamp
			}
			if m.Timestamp.After(s.Last) {
				s.Last = m.Timestamp
			}
		}
	}
	s.Types.Error = s.ErrorMessages

	if s.ResponseSamples > 0 {
		s.AverageResponse = responseTotal / time.Duration(s.ResponseSamples)
	}

	s.ModelUsage = make([]ModelCount, 0, len(usage))
	for id, n := range usage {
		s.ModelUsage = append(s.ModelUsage, ModelCount{
			Model: id,
			Name:  model.ProviderID(id).ShortName(),
			Count: n,
		})
	}
	sort.Slice(s.ModelUsage, func(i, j int) bool {
		if s.ModelUsage[i].Count != s.ModelUsage[j].Count {
			return s.ModelUsage[i].Count > s.ModelUsage[j].Count
		}
		return s.ModelUsage[i].Model < s.ModelUsage[j].Model
	})
	return s
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// PeakHour returns the busiest hour and its count. Ties go to the earlier
// hour; an empty conversation returns (0, 0).
func (s Stats) PeakHour() (hour, count int) {
	for h, n := range s.Hourly {
		if n > count {
			hour, count = h, n
		}
	}
	return hour, count
}

// ErrorRate returns error messages as a fraction of replies.
func (s Stats) ErrorRate() float64 {
	replies := s.AssistantMessages + s.ErrorMessages
	if replies == 0 {
		return 0
	}
	return float64(s.ErrorMessages) / float64(replies)
}

// Span returns the time between the first and last message.
func (s Stats) Span() time.Duration {
	if s.First.IsZero() {
		return 0
	}
	return s.Last.Sub(s.First)
}

// HourlyMax returns the largest hourly bucket, for chart scaling.
func (s Stats) HourlyMax() int {
	_, n := s.PeakHour()
	return n
}
