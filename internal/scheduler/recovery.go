package scheduler

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/lifeline-bot/companion/internal/models"
	"github.com/lifeline-bot/companion/internal/recurrence"
	"github.com/lifeline-bot/companion/internal/repository"
)

// Loader re-arms all live reminders after a restart. A missed one-shot is
// discarded, not resent: its moment has passed and a stale reminder is worse
// than silence. A missed recurring reminder rolls forward to its next
// occurrence instead of firing for the stale one.
type Loader struct {
	store    repository.Store
	resolver *recurrence.Resolver
	engine   *Engine
	clk      clock.Clock
	log      zerolog.Logger
}

func NewLoader(store repository.Store, resolver *recurrence.Resolver, engine *Engine, clk clock.Clock, log zerolog.Logger) *Loader {
	return &Loader{
		store:    store,
		resolver: resolver,
		engine:   engine,
		clk:      clk,
		log:      log.With().Str("comp", "recovery").Logger(),
	}
}

// Run loads every persisted reminder and re-arms the live ones. An empty
// store is success with zero records. A record that fails to roll forward is
// skipped; it never takes the other records' timers down with it.
func (l *Loader) Run(ctx context.Context) error {
	records, err := l.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load reminders: %w", err)
	}

	now := l.clk.Now()
	armed, rolled, skipped := 0, 0, 0

	for _, rec := range records {
		switch {
		case !rec.IsRecurring() && rec.State == models.StateSent:
			// Terminal one-shot, nothing to do.

		case rec.FireAt.After(now):
			if rec.State == models.StatePending {
				l.engine.Arm(rec)
				armed++
			}

		case rec.IsRecurring():
			next, err := l.resolver.Next(rec.Recurrence, now)
			if err != nil {
				l.log.Error().Err(err).Str("id", rec.ID).Msg("failed to roll reminder forward")
				continue
			}
			if err := l.store.UpdateSchedule(ctx, rec.ID, next, models.StatePending); err != nil {
				l.log.Error().Err(err).Str("id", rec.ID).Msg("failed to persist rolled fire time")
				continue
			}
			rec.FireAt = next
			rec.State = models.StatePending
			l.engine.Arm(rec)
			rolled++

		default:
			// Past-due one-shot found at startup: discard permanently.
			if _, err := l.store.MarkSentIfPending(ctx, rec.ID); err != nil {
				l.log.Error().Err(err).Str("id", rec.ID).Msg("failed to discard stale reminder")
				continue
			}
			skipped++
		}
	}

	l.log.Info().
		Int("armed", armed).
		Int("rolled_forward", rolled).
		Int("discarded", skipped).
		Int("total", len(records)).
		Msg("recovery complete")
	return nil
}
