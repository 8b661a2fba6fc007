package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lifeline-bot/companion/internal/database"
	"github.com/lifeline-bot/companion/internal/models"
)

const reminderColumns = `id, recipient, task, fire_at, recurrence_kind, recurrence_weekday, recurrence_monthday, delivery_state, created_at`

type ReminderRepository struct {
	db *database.DB
}

func NewReminderRepository(db *database.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) Insert(ctx context.Context, reminder *models.Reminder) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO reminders (`+reminderColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		reminder.ID, reminder.Recipient, reminder.Task, reminder.FireAt,
		string(reminder.Recurrence.Kind), int(reminder.Recurrence.Weekday), reminder.Recurrence.DayOfMonth,
		string(reminder.State), reminder.CreatedAt,
	)
	return err
}

func (r *ReminderRepository) UpdateSchedule(ctx context.Context, id string, fireAt time.Time, state models.DeliveryState) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET fire_at = $1, delivery_state = $2 WHERE id = $3`,
		fireAt, string(state), id,
	)
	return err
}

// MarkSentIfPending is the atomic check-then-set guard: the conditional
// UPDATE claims the row only if it is still pending.
func (r *ReminderRepository) MarkSentIfPending(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET delivery_state = $1 WHERE id = $2 AND delivery_state = $3`,
		string(models.StateSent), id, string(models.StatePending),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ReminderRepository) ListAll(ctx context.Context) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+` FROM reminders ORDER BY fire_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReminders(rows)
}

func (r *ReminderRepository) ListDue(ctx context.Context, due time.Time) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE delivery_state = $1 AND fire_at <= $2
		 ORDER BY fire_at ASC`,
		string(models.StatePending), due,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReminders(rows)
}

func (r *ReminderRepository) ListByRecipient(ctx context.Context, recipient string) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE recipient = $1 ORDER BY fire_at ASC`,
		recipient,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReminders(rows)
}

func scanReminders(rows pgx.Rows) ([]*models.Reminder, error) {
	var reminders []*models.Reminder
	for rows.Next() {
		reminder := &models.Reminder{}
		var kind, state string
		var weekday int
		if err := rows.Scan(&reminder.ID, &reminder.Recipient, &reminder.Task, &reminder.FireAt,
			&kind, &weekday, &reminder.Recurrence.DayOfMonth, &state, &reminder.CreatedAt); err != nil {
			return nil, err
		}
		reminder.Recurrence.Kind = models.RecurrenceKind(kind)
		reminder.Recurrence.Weekday = time.Weekday(weekday)
		reminder.State = models.DeliveryState(state)
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetConsent(ctx context.Context, handle string) (models.ConsentStatus, error) {
	var status string
	err := r.db.Pool.QueryRow(ctx,
		`SELECT consent_status FROM users WHERE handle = $1`, handle,
	).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ConsentActive, nil
	}
	if err != nil {
		return "", err
	}
	return models.ConsentStatus(status), nil
}

func (r *UserRepository) SetConsent(ctx context.Context, handle string, status models.ConsentStatus) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO users (handle, consent_status) VALUES ($1, $2)
		 ON CONFLICT (handle) DO UPDATE SET consent_status = EXCLUDED.consent_status`,
		handle, string(status),
	)
	return err
}
