package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeline-bot/companion/internal/models"
	"github.com/lifeline-bot/companion/internal/recurrence"
	"github.com/lifeline-bot/companion/internal/repository/memory"
	"github.com/lifeline-bot/companion/internal/scheduler"
)

type silentSender struct{}

func (silentSender) Send(context.Context, string, string, time.Time) error { return nil }

func newTestServer(t *testing.T, secret string) (*Server, *memory.ReminderStore, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	store := memory.NewReminderStore()
	resolver := recurrence.NewResolver(time.UTC)
	disp := scheduler.NewDispatcher(store, silentSender{}, resolver, mock, zerolog.Nop())
	engine := scheduler.NewEngine(disp, mock, zerolog.Nop())
	srv := New(":0", store, engine, mock, time.UTC, secret, zerolog.Nop())
	return srv, store, mock
}

func seed(t *testing.T, store *memory.ReminderStore, task string, fireAt time.Time, state models.DeliveryState) {
	t.Helper()
	require.NoError(t, store.Insert(context.Background(), &models.Reminder{
		ID:        uuid.NewString(),
		Recipient: "12345",
		Task:      task,
		FireAt:    fireAt,
		State:     state,
	}))
}

func get(srv *Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestSweepRequiresSecret(t *testing.T) {
	srv, _, _ := newTestServer(t, "s3cret")

	assert.Equal(t, http.StatusForbidden, get(srv, "/check-reminders").Code)
	assert.Equal(t, http.StatusForbidden, get(srv, "/check-reminders?key=wrong").Code)
}

func TestSweepRejectsWhenNoSecretConfigured(t *testing.T) {
	// Without a configured secret the route is closed entirely, not open.
	srv, _, _ := newTestServer(t, "")
	assert.Equal(t, http.StatusForbidden, get(srv, "/check-reminders?key=").Code)
}

func TestSweepDispatchesDueReminders(t *testing.T) {
	srv, store, mock := newTestServer(t, "s3cret")
	now := mock.Now()
	seed(t, store, "water the plants", now.Add(-time.Minute), models.StatePending)
	seed(t, store, "future task", now.Add(time.Hour), models.StatePending)

	rec := get(srv, "/check-reminders?key=s3cret")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sent 1 message(s)")
}

func TestAdminListsReminders(t *testing.T) {
	srv, store, mock := newTestServer(t, "")
	now := mock.Now()
	seed(t, store, "water the plants", now.Add(time.Hour), models.StatePending)
	seed(t, store, "old task", now.Add(-time.Hour), models.StateSent)

	rec := get(srv, "/admin")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "water the plants")
	assert.Contains(t, body, "old task")
	assert.Contains(t, body, "Future")
	assert.Contains(t, body, "Sent")
}
