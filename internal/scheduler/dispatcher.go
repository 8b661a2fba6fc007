package scheduler

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/lifeline-bot/companion/internal/delivery"
	"github.com/lifeline-bot/companion/internal/models"
	"github.com/lifeline-bot/companion/internal/recurrence"
	"github.com/lifeline-bot/companion/internal/repository"
)

// Dispatcher is the delivery gate. Every firing, timer driven or sweep
// driven, goes through Dispatch, which claims the record atomically before
// touching the network so a racing duplicate trigger results in exactly one
// send.
type Dispatcher struct {
	store    repository.Store
	sender   delivery.Sender
	resolver *recurrence.Resolver
	clk      clock.Clock
	log      zerolog.Logger
}

func NewDispatcher(store repository.Store, sender delivery.Sender, resolver *recurrence.Resolver, clk clock.Clock, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		store:    store,
		sender:   sender,
		resolver: resolver,
		clk:      clk,
		log:      log.With().Str("comp", "dispatcher").Logger(),
	}
}

// Dispatch delivers one reminder occurrence. For a recurring record it
// returns the advanced record (next fire time, state reset to pending) for
// the caller to re-arm; otherwise it returns nil.
//
// A failed send releases the row back to pending and is not retried here:
// the record is picked up again only by a sweep or a restart.
func (d *Dispatcher) Dispatch(ctx context.Context, rec *models.Reminder) (*models.Reminder, error) {
	claimed, err := d.store.MarkSentIfPending(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("claim reminder %s: %w", rec.ID, err)
	}
	if !claimed {
		// Already sent for this occurrence (duplicate trigger); skip silently.
		d.log.Debug().Str("id", rec.ID).Msg("reminder already sent, skipping")
		return nil, nil
	}

	if err := d.sender.Send(ctx, rec.Recipient, rec.Task, rec.FireAt); err != nil {
		if uerr := d.store.UpdateSchedule(ctx, rec.ID, rec.FireAt, models.StatePending); uerr != nil {
			d.log.Error().Err(uerr).Str("id", rec.ID).Msg("failed to release reminder after send failure")
		}
		return nil, fmt.Errorf("deliver reminder %s: %w", rec.ID, err)
	}

	if !rec.IsRecurring() {
		return nil, nil
	}

	next, err := d.resolver.Next(rec.Recurrence, d.clk.Now())
	if err != nil {
		return nil, fmt.Errorf("advance reminder %s: %w", rec.ID, err)
	}
	if err := d.store.UpdateSchedule(ctx, rec.ID, next, models.StatePending); err != nil {
		return nil, fmt.Errorf("persist next occurrence of %s: %w", rec.ID, err)
	}

	advanced := *rec
	advanced.FireAt = next
	advanced.State = models.StatePending
	return &advanced, nil
}

// Due lists the pending records that are due right now.
func (d *Dispatcher) Due(ctx context.Context) ([]*models.Reminder, error) {
	return d.store.ListDue(ctx, d.clk.Now())
}
