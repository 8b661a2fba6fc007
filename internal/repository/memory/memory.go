// Package memory provides in-memory Store and UserStore implementations,
// used by tests and as the record store when no DATABASE_URI is configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lifeline-bot/companion/internal/models"
	"github.com/lifeline-bot/companion/internal/repository"
)

type ReminderStore struct {
	mu        sync.RWMutex
	reminders map[string]*models.Reminder
}

func NewReminderStore() *ReminderStore {
	return &ReminderStore{reminders: make(map[string]*models.Reminder)}
}

func (s *ReminderStore) Insert(_ context.Context, r *models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.reminders[r.ID] = &cp
	return nil
}

func (s *ReminderStore) UpdateSchedule(_ context.Context, id string, fireAt time.Time, state models.DeliveryState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reminders[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.FireAt = fireAt
	r.State = state
	return nil
}

func (s *ReminderStore) MarkSentIfPending(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reminders[id]
	if !ok || r.State != models.StatePending {
		return false, nil
	}
	r.State = models.StateSent
	return true, nil
}

func (s *ReminderStore) ListAll(_ context.Context) ([]*models.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Reminder, 0, len(s.reminders))
	for _, r := range s.reminders {
		cp := *r
		out = append(out, &cp)
	}
	sortByFireAt(out)
	return out, nil
}

func (s *ReminderStore) ListDue(_ context.Context, due time.Time) ([]*models.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Reminder
	for _, r := range s.reminders {
		if r.State == models.StatePending && !r.FireAt.After(due) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sortByFireAt(out)
	return out, nil
}

func (s *ReminderStore) ListByRecipient(_ context.Context, recipient string) ([]*models.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Reminder
	for _, r := range s.reminders {
		if r.Recipient == recipient {
			cp := *r
			out = append(out, &cp)
		}
	}
	sortByFireAt(out)
	return out, nil
}

// Get is a test helper; it is not part of the Store interface.
func (s *ReminderStore) Get(id string) (*models.Reminder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reminders[id]
	if !ok {
		return nil, false
	}
	cp := *r
	return &cp, true
}

func sortByFireAt(rs []*models.Reminder) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].FireAt.Before(rs[j].FireAt) })
}

type UserStore struct {
	mu      sync.RWMutex
	consent map[string]models.ConsentStatus
}

func NewUserStore() *UserStore {
	return &UserStore{consent: make(map[string]models.ConsentStatus)}
}

func (s *UserStore) GetConsent(_ context.Context, handle string) (models.ConsentStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if status, ok := s.consent[handle]; ok {
		return status, nil
	}
	return models.ConsentActive, nil
}

func (s *UserStore) SetConsent(_ context.Context, handle string, status models.ConsentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consent[handle] = status
	return nil
}
