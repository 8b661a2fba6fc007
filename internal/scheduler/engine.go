// Package scheduler owns the in-process timers: one armed timer per pending
// reminder, keyed by record id, driven by an injected clock so tests can
// move time without waiting.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/lifeline-bot/companion/internal/models"
)

const dispatchTimeout = 30 * time.Second

type Engine struct {
	mu     sync.Mutex
	timers map[string]*clock.Timer

	clk  clock.Clock
	disp *Dispatcher
	log  zerolog.Logger
}

func NewEngine(disp *Dispatcher, clk clock.Clock, log zerolog.Logger) *Engine {
	return &Engine{
		timers: make(map[string]*clock.Timer),
		clk:    clk,
		disp:   disp,
		log:    log.With().Str("comp", "scheduler").Logger(),
	}
}

// Arm registers a timer that dispatches rec at its fire time. A reminder that
// is already due fires immediately rather than being dropped. Arming an id
// that already has a timer replaces it, so a record can never hold two live
// timers.
func (e *Engine) Arm(rec *models.Reminder) {
	delay := rec.FireAt.Sub(e.clk.Now())
	if delay <= 0 {
		e.log.Info().Str("id", rec.ID).Time("fire_at", rec.FireAt).Msg("reminder already due, dispatching now")
		go e.fire(rec)
		return
	}

	r := *rec
	e.mu.Lock()
	if t, ok := e.timers[rec.ID]; ok {
		t.Stop()
	}
	e.timers[rec.ID] = e.clk.AfterFunc(delay, func() {
		e.fire(&r)
	})
	e.mu.Unlock()

	e.log.Info().Str("id", rec.ID).Time("fire_at", rec.FireAt).Dur("delay", delay).Msg("reminder armed")
}

// Cancel stops the timer for id if one is armed. Unknown or already-fired
// ids are a no-op.
func (e *Engine) Cancel(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t, ok := e.timers[id]; ok {
		t.Stop()
		delete(e.timers, id)
	}
}

// Armed reports whether a timer is currently registered for id.
func (e *Engine) Armed(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.timers[id]
	return ok
}

func (e *Engine) fire(rec *models.Reminder) {
	e.mu.Lock()
	delete(e.timers, rec.ID)
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	next, err := e.disp.Dispatch(ctx, rec)
	if err != nil {
		e.log.Error().Err(err).Str("id", rec.ID).Msg("dispatch failed")
		return
	}
	if next != nil {
		e.Arm(next)
	}
}

// SweepDue dispatches every currently-due pending record through the same
// delivery gate the timers use, and returns how many were delivered. The
// idempotency guard in the dispatcher makes it safe to run concurrently with
// armed timers.
func (e *Engine) SweepDue(ctx context.Context) (int, error) {
	due, err := e.disp.Due(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, rec := range due {
		// The sweep supersedes any armed timer for this occurrence.
		e.Cancel(rec.ID)

		next, err := e.disp.Dispatch(ctx, rec)
		if err != nil {
			e.log.Error().Err(err).Str("id", rec.ID).Msg("sweep dispatch failed")
			continue
		}
		sent++
		if next != nil {
			e.Arm(next)
		}
	}
	return sent, nil
}
