package reminders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeline-bot/companion/internal/models"
	"github.com/lifeline-bot/companion/internal/parser"
	"github.com/lifeline-bot/companion/internal/recurrence"
	"github.com/lifeline-bot/companion/internal/repository/memory"
	"github.com/lifeline-bot/companion/internal/scheduler"
)

type noopSender struct{}

func (noopSender) Send(context.Context, string, string, time.Time) error { return nil }

type harness struct {
	service *Service
	store   *memory.ReminderStore
	engine  *scheduler.Engine
}

func newHarness(t *testing.T, now time.Time) *harness {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(now)
	store := memory.NewReminderStore()
	resolver := recurrence.NewResolver(time.UTC)
	disp := scheduler.NewDispatcher(store, noopSender{}, resolver, mock, zerolog.Nop())
	engine := scheduler.NewEngine(disp, mock, zerolog.Nop())
	return &harness{
		service: NewService(parser.New(), resolver, store, engine, mock, time.UTC, zerolog.Nop()),
		store:   store,
		engine:  engine,
	}
}

func TestCreateOneShot(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	h := newHarness(t, now)

	rec, err := h.service.CreateFromInstruction(context.Background(), "12345", "drink water in 30 minutes")
	require.NoError(t, err)

	assert.Equal(t, "drink water", rec.Task)
	assert.Equal(t, "12345", rec.Recipient)
	assert.Equal(t, now.Add(30*time.Minute), rec.FireAt)
	assert.Equal(t, models.StatePending, rec.State)
	assert.True(t, rec.Recurrence.None())

	stored, ok := h.store.Get(rec.ID)
	require.True(t, ok)
	assert.Equal(t, rec.FireAt, stored.FireAt)
	assert.True(t, h.engine.Armed(rec.ID))
}

func TestCreateDailyFirstOccurrence(t *testing.T) {
	// At 10:00 the 08:00 slot for today is gone, so the first occurrence is
	// tomorrow morning.
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	h := newHarness(t, now)

	rec, err := h.service.CreateFromInstruction(context.Background(), "12345", "stretch every day")
	require.NoError(t, err)

	assert.Equal(t, "stretch", rec.Task)
	assert.Equal(t, models.RecurDaily, rec.Recurrence.Kind)
	assert.Equal(t, time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC), rec.FireAt)
	assert.True(t, h.engine.Armed(rec.ID))
}

func TestCreateMonthlySkipsShortMonth(t *testing.T) {
	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	h := newHarness(t, now)

	rec, err := h.service.CreateFromInstruction(context.Background(), "12345", "pay rent every 31st")
	require.NoError(t, err)

	assert.Equal(t, "pay rent", rec.Task)
	assert.Equal(t, models.RecurMonthly, rec.Recurrence.Kind)
	assert.Equal(t, 31, rec.Recurrence.DayOfMonth)
	assert.Equal(t, time.Date(2024, 3, 31, 9, 0, 0, 0, time.UTC), rec.FireAt)
}

func TestCreateRejectsPastInstant(t *testing.T) {
	now := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	h := newHarness(t, now)

	_, err := h.service.CreateFromInstruction(context.Background(), "12345", "call mom yesterday")
	require.Error(t, err)

	var perr *parser.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, parser.FailPastDate, perr.Kind)

	all, err := h.store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all, "nothing should be persisted for a rejected instruction")
}

func TestListUpcomingFiltersSentAndPast(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	h := newHarness(t, now)
	ctx := context.Background()

	require.NoError(t, h.store.Insert(ctx, &models.Reminder{
		ID: "future", Recipient: "12345", Task: "water plants",
		FireAt: now.Add(time.Hour), State: models.StatePending,
	}))
	require.NoError(t, h.store.Insert(ctx, &models.Reminder{
		ID: "done", Recipient: "12345", Task: "old task",
		FireAt: now.Add(-time.Hour), State: models.StateSent,
	}))
	require.NoError(t, h.store.Insert(ctx, &models.Reminder{
		ID: "other", Recipient: "99999", Task: "not yours",
		FireAt: now.Add(time.Hour), State: models.StatePending,
	}))

	recs, err := h.service.ListUpcoming(ctx, "12345")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "water plants", recs[0].Task)
}

func TestCreateRejectsInstructionWithoutTime(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	h := newHarness(t, now)

	_, err := h.service.CreateFromInstruction(context.Background(), "12345", "buy milk")
	require.Error(t, err)

	var perr *parser.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, parser.FailNoTimeFound, perr.Kind)
}
