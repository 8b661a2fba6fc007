package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeline-bot/companion/internal/models"
)

func utc(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestDailyBeforeEight(t *testing.T) {
	r := NewResolver(time.UTC)

	next, err := r.Next(models.RecurrenceRule{Kind: models.RecurDaily}, utc(2024, 1, 1, 7, 0))
	require.NoError(t, err)
	assert.Equal(t, utc(2024, 1, 1, 8, 0), next)
}

func TestDailyAfterEightRollsToNextDay(t *testing.T) {
	r := NewResolver(time.UTC)

	next, err := r.Next(models.RecurrenceRule{Kind: models.RecurDaily}, utc(2024, 1, 1, 10, 0))
	require.NoError(t, err)
	assert.Equal(t, utc(2024, 1, 2, 8, 0), next)
}

func TestDailyAtExactlyEightIsStrict(t *testing.T) {
	r := NewResolver(time.UTC)

	next, err := r.Next(models.RecurrenceRule{Kind: models.RecurDaily}, utc(2024, 1, 1, 8, 0))
	require.NoError(t, err)
	assert.Equal(t, utc(2024, 1, 2, 8, 0), next)
}

func TestWeeklySameDayPastNineSkipsAWeek(t *testing.T) {
	r := NewResolver(time.UTC)

	// 2024-01-01 is a Monday. At 10:00 the Monday 09:00 slot is gone.
	rule := models.RecurrenceRule{Kind: models.RecurWeekly, Weekday: time.Monday}
	next, err := r.Next(rule, utc(2024, 1, 1, 10, 0))
	require.NoError(t, err)
	assert.Equal(t, utc(2024, 1, 8, 9, 0), next)
}

func TestWeeklyLaterInTheWeek(t *testing.T) {
	r := NewResolver(time.UTC)

	rule := models.RecurrenceRule{Kind: models.RecurWeekly, Weekday: time.Friday}
	next, err := r.Next(rule, utc(2024, 1, 1, 10, 0))
	require.NoError(t, err)
	assert.Equal(t, utc(2024, 1, 5, 9, 0), next)
	assert.Equal(t, time.Friday, next.Weekday())
}

func TestMonthlyLaterInTheMonth(t *testing.T) {
	r := NewResolver(time.UTC)

	rule := models.RecurrenceRule{Kind: models.RecurMonthly, DayOfMonth: 15}
	next, err := r.Next(rule, utc(2024, 1, 10, 12, 0))
	require.NoError(t, err)
	assert.Equal(t, utc(2024, 1, 15, 9, 0), next)
}

func TestMonthlyPastDayRollsToNextMonth(t *testing.T) {
	r := NewResolver(time.UTC)

	rule := models.RecurrenceRule{Kind: models.RecurMonthly, DayOfMonth: 15}
	next, err := r.Next(rule, utc(2024, 1, 20, 12, 0))
	require.NoError(t, err)
	assert.Equal(t, utc(2024, 2, 15, 9, 0), next)
}

func TestMonthlyDay31SkipsFebruary(t *testing.T) {
	r := NewResolver(time.UTC)

	// February has no 31st even in a leap year, so the next occurrence after
	// early February is March 31.
	rule := models.RecurrenceRule{Kind: models.RecurMonthly, DayOfMonth: 31}
	next, err := r.Next(rule, utc(2024, 2, 1, 12, 0))
	require.NoError(t, err)
	assert.Equal(t, utc(2024, 3, 31, 9, 0), next)
}

func TestNextIsAlwaysStrictlyFuture(t *testing.T) {
	r := NewResolver(time.UTC)

	rules := []models.RecurrenceRule{
		{Kind: models.RecurDaily},
		{Kind: models.RecurWeekly, Weekday: time.Sunday},
		{Kind: models.RecurMonthly, DayOfMonth: 1},
		{Kind: models.RecurMonthly, DayOfMonth: 31},
	}
	now := utc(2024, 1, 1, 0, 0)
	for day := 0; day < 40; day++ {
		ref := now.AddDate(0, 0, day).Add(9 * time.Hour)
		for _, rule := range rules {
			next, err := r.Next(rule, ref)
			require.NoError(t, err)
			assert.True(t, next.After(ref), "rule %v at %s gave %s", rule, ref, next)
		}
	}
}

func TestNextIsDeterministic(t *testing.T) {
	r := NewResolver(time.UTC)

	rule := models.RecurrenceRule{Kind: models.RecurWeekly, Weekday: time.Wednesday}
	ref := utc(2024, 1, 1, 10, 0)
	a, err := r.Next(rule, ref)
	require.NoError(t, err)
	b, err := r.Next(rule, ref)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNextRejectsNonRecurringRule(t *testing.T) {
	r := NewResolver(time.UTC)

	_, err := r.Next(models.RecurrenceRule{}, utc(2024, 1, 1, 10, 0))
	assert.Error(t, err)
}
