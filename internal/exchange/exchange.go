// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package exchange

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jeranaias/thinkly/internal/logging"
	"github.com/jeranaias/thinkly/internal/model"
	"github.com/jeranaias/thinkly/internal/provider"
)

// DefaultTimeout bounds one provider call when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// fallbackCause is shown when a failure carries no text of its own.
const fallbackCause = "Failed to send message. Please try again."

var (
	// ErrInvalidInput is returned for empty (after trimming) input.
	ErrInvalidInput = provider.ErrInvalidInput
	// ErrBusy is returned when an exchange is already in flight.
	ErrBusy = errors.New("an exchange is already in progress")
)

// =============================================================================
// STATE
// =============================================================================

// State is the orchestrator's position in the exchange lifecycle.
type State int32

const (
	StateIdle State = iota
	StateSending
	StateSettled
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateSettled:
		return "settled"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Outcome describes a finished exchange.
type Outcome struct {
	// State is StateSettled or StateFailed.
	State State
	User  model.Message
	// Reply is the assistant message, or the error message when Failed.
	Reply model.Message
	// Err is the provider failure when Failed.
	Err     error
	Elapsed time.Duration
}

// =============================================================================
// COLLABORATORS
// =============================================================================

// Conversation is the session state an exchange reads and appends to.
type Conversation interface {
	Append(msg model.Message) error
	SelectedModel() model.ProviderID
	History() []provider.Turn
	SetLastError(msg string)
}

// Registry resolves a provider identifier to its adapter.
type Registry interface {
	Get(id model.ProviderID) (provider.Provider, error)
}

// Options configures an Orchestrator.
type Options struct {
	// Timeout bounds each provider call. Zero means DefaultTimeout.
	Timeout time.Duration
	Logger  *slog.Logger
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Orchestrator runs exchanges against a conversation.
type Orchestrator struct {
	conv      Conversation
	providers Registry
	timeout   time.Duration
	logger    *slog.Logger

	busy  atomic.Bool
	state atomic.Int32

	listenersMu sync.Mutex
	listeners   []func(State)
}

// New creates an orchestrator.
func New(conv Conversation, providers Registry, opts Options) *Orchestrator {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Orchestrator{
		conv:      conv,
		providers: providers,
		timeout:   timeout,
		logger:    logging.OrDefault(opts.Logger).With("component", "exchange"),
	}
}

// Busy reports whether an exchange is in flight.
func (o *Orchestrator) Busy() bool {
	return o.busy.Load()
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// Timeout returns the per-call bound.
func (o *Orchestrator) Timeout() time.Duration {
	return o.timeout
}

// OnChange registers fn to be called on every state transition. fn runs on
// the goroutine calling Send and must not call Send itself.
func (o *Orchestrator) OnChange(fn func(State)) {
	o.listenersMu.Lock()
	defer o.listenersMu.Unlock()
	o.listeners = append(o.listeners, fn)
}

func (o *Orchestrator) transition(s State) {
	o.state.Store(int32(s))
	o.listenersMu.Lock()
	listeners := append([]func(State){}, o.listeners...)
	o.listenersMu.Unlock()
	for _, fn := range listeners {
		fn(s)
	}
}

// Send runs one exchange for input.
//
// It returns ErrInvalidInput for blank input and ErrBusy while another
// exchange is in flight; neither appends anything. Provider failures are
// reported through Outcome (State == StateFailed) with a nil error.
func (o *Orchestrator) Send(ctx context.Context, input string) (Outcome, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return Outcome{}, ErrInvalidInput
	}
	if !o.busy.CompareAndSwap(false, true) {
		return Outcome{}, ErrBusy
	}
	defer o.busy.Store(false)

	selected := o.conv.SelectedModel()
	p, err := o.providers.Get(selected)
	if err != nil {
		return Outcome{}, err
	}

	// The history handed to the provider is fixed before the user message
	// is appended.
	history := o.conv.History()

	user := model.NewMessage(model.RoleUser, text, selected)
	if err := o.conv.Append(user); err != nil {
		return Outcome{}, fmt.Errorf("failed to record message: %w", err)
	}
	o.conv.SetLastError("")
	o.transition(StateSending)
	defer o.transition(StateIdle)

	start := time.Now()
	o.logger.Info("exchange started", "model", string(selected), "history", len(history))

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	res, sendErr := p.Send(callCtx, text, history)
	cancel()

	out := Outcome{User: user, Elapsed: time.Since(start)}

	if sendErr != nil {
		cause := causeOf(sendErr, o.timeout)
		out.State = StateFailed
		out.Err = sendErr
		out.Reply = model.NewErrorMessage(cause, selected)

		o.conv.SetLastError(out.Reply.Content)
		o.logger.Warn("exchange failed", "model", string(selected),
			"kind", provider.KindOf(sendErr), "elapsed", out.Elapsed)

		if err := o.conv.Append(out.Reply); err != nil {
			o.transition(StateFailed)
			return out, fmt.Errorf("failed to record error message: %w", err)
		}
		o.transition(StateFailed)
		return out, nil
	}

	out.Reply = model.NewMessage(model.RoleAssistant, res.Message, selected)
	out.Reply.Usage = res.Usage
	if err := o.conv.Append(out.Reply); err != nil {
		out.State = StateFailed
		out.Err = err
		o.conv.SetLastError(model.ErrorPrefix + err.Error())
		o.transition(StateFailed)
		return out, fmt.Errorf("failed to record reply: %w", err)
	}

	out.State = StateSettled
	o.logger.Info("exchange settled", "model", string(selected), "elapsed", out.Elapsed)
	o.transition(StateSettled)
	return out, nil
}

// causeOf returns the human-readable text for a failed call.
func causeOf(err error, timeout time.Duration) string {
	var perr *provider.Error
	if errors.As(err, &perr) && perr.Message != "" {
		return perr.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("Request timed out after %s. Please try again.", timeout)
	}
	if errors.Is(err, context.Canceled) {
		return "Request cancelled."
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallbackCause
}
