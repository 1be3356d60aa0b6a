// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package exchange

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/thinkly/internal/logging"
	"github.com/jeranaias/thinkly/internal/model"
	"github.com/jeranaias/thinkly/internal/provider"
	"github.com/jeranaias/thinkly/internal/session"
	"github.com/jeranaias/thinkly/internal/storage"
)

// =============================================================================
// FAKES
// =============================================================================

// fakeProvider replies with reply/err, optionally blocking until release is
// closed.
type fakeProvider struct {
	id      model.ProviderID
	reply   provider.Result
	err     error
	release chan struct{}
	started chan struct{}

	calls atomic.Int32
	mu    sync.Mutex
	seen  [][]provider.Turn
}

func (f *fakeProvider) ID() model.ProviderID { return f.id }

func (f *fakeProvider) Send(ctx context.Context, message string, history []provider.Turn) (provider.Result, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.seen = append(f.seen, history)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return provider.Result{}, ctx.Err()
		}
	}
	return f.reply, f.err
}

func (f *fakeProvider) Validate(context.Context) error { return nil }

func (f *fakeProvider) history(i int) []provider.Turn {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[i]
}

type registry map[model.ProviderID]provider.Provider

func (r registry) Get(id model.ProviderID) (provider.Provider, error) {
	p, ok := r[id]
	if !ok {
		return nil, model.ErrInvalidModel
	}
	return p, nil
}

func setup(t *testing.T, p *fakeProvider, opts Options) (*Orchestrator, *session.Store) {
	t.Helper()
	store := session.Open(storage.NewMemoryKV(), logging.Discard())
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	o := New(store, registry{p.id: p}, opts)
	return o, store
}

// =============================================================================
// TESTS
// =============================================================================

func TestSend_Success(t *testing.T) {
	p := &fakeProvider{
		id:    model.ProviderGemini,
		reply: provider.Result{Message: "Hi there!", Usage: &model.Usage{TotalTokens: 7}},
	}
	o, store := setup(t, p, Options{})

	out, err := o.Send(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, StateSettled, out.State)
	assert.NoError(t, out.Err)

	msgs := store.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Hello", msgs[0].Content)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, model.ProviderGemini, msgs[0].Model)
	assert.Equal(t, "Hi there!", msgs[1].Content)
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)
	assert.Equal(t, model.ProviderGemini, msgs[1].Model)
	require.NotNil(t, msgs[1].Usage)
	assert.Equal(t, 7, msgs[1].Usage.TotalTokens)

	assert.Empty(t, p.history(0))
	assert.False(t, o.Busy())
	assert.Equal(t, StateIdle, o.State())
	assert.Empty(t, store.LastError())
}

func TestSend_TrimsInput(t *testing.T) {
	p := &fakeProvider{id: model.ProviderGemini, reply: provider.Result{Message: "ok"}}
	o, store := setup(t, p, Options{})

	_, err := o.Send(context.Background(), "  Hello \n")
	require.NoError(t, err)
	assert.Equal(t, "Hello", store.Messages()[0].Content)
}

func TestSend_ProviderFailure(t *testing.T) {
	p := &fakeProvider{
		id: model.ProviderGemini,
		err: &provider.Error{
			Kind:     provider.KindUnauthorized,
			Provider: model.ProviderGemini,
			Status:   401,
			Message:  "Invalid API key. Please check your Gemini API key.",
		},
	}
	o, store := setup(t, p, Options{})

	out, err := o.Send(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, StateFailed, out.State)
	assert.ErrorIs(t, out.Err, provider.ErrUnauthorized)

	const want = "Error: Invalid API key. Please check your Gemini API key."
	msgs := store.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleError, msgs[1].Role)
	assert.Equal(t, want, msgs[1].Content)
	assert.Equal(t, want, store.LastError())
	assert.False(t, o.Busy())
	assert.Equal(t, StateIdle, o.State())
}

func TestSend_NewSendClearsLastError(t *testing.T) {
	p := &fakeProvider{id: model.ProviderGemini, err: &provider.Error{Kind: provider.KindServerError, Message: "boom"}}
	o, store := setup(t, p, Options{})

	_, err := o.Send(context.Background(), "one")
	require.NoError(t, err)
	require.NotEmpty(t, store.LastError())

	p.err = nil
	p.reply = provider.Result{Message: "fine"}
	_, err = o.Send(context.Background(), "two")
	require.NoError(t, err)
	assert.Empty(t, store.LastError())
}

func TestSend_EmptyInputRejected(t *testing.T) {
	p := &fakeProvider{id: model.ProviderGemini}
	o, store := setup(t, p, Options{})

	for _, in := range []string{"", "   ", "\n\t"} {
		_, err := o.Send(context.Background(), in)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
	assert.Zero(t, store.Len())
	assert.Zero(t, p.calls.Load())
}

func TestSend_BusyIsNoOp(t *testing.T) {
	p := &fakeProvider{
		id:      model.ProviderGemini,
		reply:   provider.Result{Message: "done"},
		release: make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	o, store := setup(t, p, Options{})

	done := make(chan error, 1)
	go func() {
		_, err := o.Send(context.Background(), "first")
		done <- err
	}()
	<-p.started

	assert.True(t, o.Busy())
	assert.Equal(t, StateSending, o.State())
	lenBefore := store.Len()

	_, err := o.Send(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, lenBefore, store.Len())
	assert.Equal(t, int32(1), p.calls.Load())

	close(p.release)
	require.NoError(t, <-done)
	assert.False(t, o.Busy())
	assert.Equal(t, 2, store.Len())
}

func TestSend_HistoryExcludesCurrentMessage(t *testing.T) {
	p := &fakeProvider{id: model.ProviderGemini, reply: provider.Result{Message: "reply"}}
	o, _ := setup(t, p, Options{})

	_, err := o.Send(context.Background(), "first")
	require.NoError(t, err)
	_, err = o.Send(context.Background(), "second")
	require.NoError(t, err)

	assert.Equal(t, []provider.Turn{
		{Role: model.RoleUser, Content: "first"},
		{Role: model.RoleAssistant, Content: "reply"},
	}, p.history(1))
}

func TestSend_ModelSwitchTagsOnlyNewMessages(t *testing.T) {
	gem := &fakeProvider{id: model.ProviderGemini, reply: provider.Result{Message: "g"}}
	mis := &fakeProvider{id: model.ProviderMistral, reply: provider.Result{Message: "m"}}
	store := session.Open(storage.NewMemoryKV(), logging.Discard())
	o := New(store, registry{gem.id: gem, mis.id: mis}, Options{Logger: logging.Discard()})

	_, err := o.Send(context.Background(), "a")
	require.NoError(t, err)
	require.NoError(t, store.SelectModel(model.ProviderMistral))
	_, err = o.Send(context.Background(), "b")
	require.NoError(t, err)

	msgs := store.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, model.ProviderGemini, msgs[0].Model)
	assert.Equal(t, model.ProviderGemini, msgs[1].Model)
	assert.Equal(t, model.ProviderMistral, msgs[2].Model)
	assert.Equal(t, model.ProviderMistral, msgs[3].Model)
	assert.Equal(t, int32(1), gem.calls.Load())
	assert.Equal(t, int32(1), mis.calls.Load())
}

func TestSend_Timeout(t *testing.T) {
	p := &fakeProvider{id: model.ProviderMistral, release: make(chan struct{})}
	o, store := setup(t, p, Options{Timeout: 20 * time.Millisecond})
	require.NoError(t, store.SelectModel(model.ProviderMistral))

	out, err := o.Send(context.Background(), "slow")
	require.NoError(t, err)
	assert.Equal(t, StateFailed, out.State)
	assert.True(t, errors.Is(out.Err, context.DeadlineExceeded))
	assert.Contains(t, store.LastError(), "timed out")
	assert.False(t, o.Busy())
}

func TestSend_UnknownProvider(t *testing.T) {
	p := &fakeProvider{id: model.ProviderMistral}
	o, store := setup(t, p, Options{})

	_, err := o.Send(context.Background(), "hi")
	assert.ErrorIs(t, err, model.ErrInvalidModel)
	assert.Zero(t, store.Len())
	assert.False(t, o.Busy())
}

func TestOnChange_ReportsTransitions(t *testing.T) {
	p := &fakeProvider{id: model.ProviderGemini, reply: provider.Result{Message: "ok"}}
	o, _ := setup(t, p, Options{})

	var got []State
	o.OnChange(func(s State) { got = append(got, s) })

	_, err := o.Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, []State{StateSending, StateSettled, StateIdle}, got)
}

func TestNew_DefaultTimeout(t *testing.T) {
	o := New(nil, nil, Options{})
	assert.Equal(t, DefaultTimeout, o.Timeout())
}
