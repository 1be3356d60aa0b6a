// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultMinInterval is the minimum gap between two outbound provider calls.
const DefaultMinInterval = time.Second

// Pacer enforces a minimum interval between outbound calls. One instance is
// shared by every adapter in the process.
//
// Callers are serialized: a second caller waits for the first to record its
// dispatch before measuring its own gap.
type Pacer struct {
	floor time.Duration

	mu   sync.Mutex
	last time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPacer creates a pacer with the given floor. A non-positive floor
// disables pacing.
func NewPacer(floor time.Duration) *Pacer {
	return &Pacer{
		floor: floor,
		now:   time.Now,
		sleep: sleepCtx,
	}
}

// Wait blocks until at least the floor has elapsed since the previous
// dispatch, then records now as the new dispatch time. A cancelled context
// returns its error without recording a dispatch.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.last.IsZero() && p.floor > 0 {
		if wait := p.floor - p.now().Sub(p.last); wait > 0 {
			if err := p.sleep(ctx, wait); err != nil {
				return err
			}
		}
	}
	p.last = p.now()
	return nil
}

// Last returns the most recent dispatch time (zero before the first call).
func (p *Pacer) Last() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Floor returns the configured minimum interval.
func (p *Pacer) Floor() time.Duration {
	return p.floor
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// errPacerWait wraps a context error raised while waiting for the floor.
func errPacerWait(err error) error {
	return fmt.Errorf("waiting for rate limit: %w", err)
}
