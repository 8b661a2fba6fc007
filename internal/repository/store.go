// Package repository defines the persisted record store consumed by the
// scheduler and the bot, plus its Postgres implementation. An in-memory
// implementation lives in the memory subpackage.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/lifeline-bot/companion/internal/models"
)

var ErrNotFound = errors.New("record not found")

// Store is the reminder record store. Read-after-write consistency within a
// single process is assumed; MarkSentIfPending is the only operation that
// must be atomic with respect to the record's row (it is the double-send
// guard for the dispatcher and the sweep).
type Store interface {
	Insert(ctx context.Context, r *models.Reminder) error
	// UpdateSchedule rewrites fire time and delivery state together, used
	// when a recurrence advances or a failed send is released back to pending.
	UpdateSchedule(ctx context.Context, id string, fireAt time.Time, state models.DeliveryState) error
	// MarkSentIfPending atomically claims the record for delivery. It returns
	// false when the record was already sent (or does not exist).
	MarkSentIfPending(ctx context.Context, id string) (bool, error)
	ListAll(ctx context.Context) ([]*models.Reminder, error)
	// ListDue returns pending records with fireAt <= due, ordered by fireAt.
	ListDue(ctx context.Context, due time.Time) ([]*models.Reminder, error)
	ListByRecipient(ctx context.Context, recipient string) ([]*models.Reminder, error)
}

// UserStore keeps per-recipient consent state for the pause/resume commands.
type UserStore interface {
	GetConsent(ctx context.Context, handle string) (models.ConsentStatus, error)
	SetConsent(ctx context.Context, handle string, status models.ConsentStatus) error
}
