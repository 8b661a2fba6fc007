package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeline-bot/companion/internal/models"
)

var ref = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC) // a Monday

func TestParseRelativeMinutes(t *testing.T) {
	p := New()

	res, err := p.Parse("drink water in 30 minutes", ref)
	require.NoError(t, err)
	assert.Equal(t, "drink water", res.Task)
	assert.Equal(t, ref.Add(30*time.Minute), res.FireAt)
	assert.True(t, res.Recurrence.None())
}

func TestParseNormalizesAfterPhrase(t *testing.T) {
	p := New()

	res, err := p.Parse("take a break after 20 minutes", ref)
	require.NoError(t, err)
	assert.Equal(t, "take a break", res.Task)
	assert.Equal(t, ref.Add(20*time.Minute), res.FireAt)
}

func TestParseNormalizedFormYieldsSameInstant(t *testing.T) {
	p := New()

	original, err := p.Parse("stretch later today", ref)
	require.NoError(t, err)
	normalized, err := p.Parse("stretch in 2 hours", ref)
	require.NoError(t, err)

	assert.Equal(t, normalized.FireAt, original.FireAt)
	assert.Equal(t, normalized.Task, original.Task)
}

func TestParseTonightRewrite(t *testing.T) {
	p := New()

	res, err := p.Parse("watch the kettle tonight", ref)
	require.NoError(t, err)
	// "tonight" is rewritten to "today at 8pm" before extraction; the span is
	// only present in the normalized text, so the residual comes from there.
	assert.Equal(t, "watch the kettle", res.Task)
	assert.Equal(t, time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC), res.FireAt)
}

func TestParseStripsTrailingPreposition(t *testing.T) {
	p := New()

	res, err := p.Parse("take medicine at 9pm", ref)
	require.NoError(t, err)
	assert.Equal(t, "take medicine", res.Task)
	assert.Equal(t, time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC), res.FireAt)
}

func TestParseDailyRecurrence(t *testing.T) {
	p := New()

	for _, instruction := range []string{
		"stretch every day",
		"stretch daily",
		"stretch every morning at 7",
	} {
		res, err := p.Parse(instruction, ref)
		require.NoError(t, err, instruction)
		assert.Equal(t, "stretch", res.Task, instruction)
		assert.Equal(t, models.RecurDaily, res.Recurrence.Kind, instruction)
	}
}

func TestParseWeeklyRecurrence(t *testing.T) {
	p := New()

	res, err := p.Parse("submit report every friday", ref)
	require.NoError(t, err)
	assert.Equal(t, "submit report", res.Task)
	assert.Equal(t, models.RecurWeekly, res.Recurrence.Kind)
	assert.Equal(t, time.Friday, res.Recurrence.Weekday)
}

func TestParseWeeklyDefaultsToMonday(t *testing.T) {
	p := New()

	res, err := p.Parse("water the plants every week", ref)
	require.NoError(t, err)
	assert.Equal(t, models.RecurWeekly, res.Recurrence.Kind)
	assert.Equal(t, time.Monday, res.Recurrence.Weekday)
}

func TestParseMonthlyRecurrence(t *testing.T) {
	p := New()

	res, err := p.Parse("pay rent every 28th", ref)
	require.NoError(t, err)
	assert.Equal(t, "pay rent", res.Task)
	assert.Equal(t, models.RecurMonthly, res.Recurrence.Kind)
	assert.Equal(t, 28, res.Recurrence.DayOfMonth)
}

func TestParseMonthlyClampsDay(t *testing.T) {
	p := New()

	res, err := p.Parse("check in every 99th", ref)
	require.NoError(t, err)
	assert.Equal(t, models.RecurMonthly, res.Recurrence.Kind)
	assert.Equal(t, 31, res.Recurrence.DayOfMonth)
}

func TestParseAmbiguousRecurrence(t *testing.T) {
	p := New()

	_, err := p.Parse("call grandma every so often", ref)
	require.Error(t, err)
	perr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, FailAmbiguousRecurrence, perr.Kind)
}

func TestParseNoTimeFound(t *testing.T) {
	p := New()

	_, err := p.Parse("buy milk", ref)
	require.Error(t, err)
	perr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, FailNoTimeFound, perr.Kind)
	assert.Equal(t, "buy milk", perr.Instruction)
}

func TestParseRecurrenceOnlyFallsBackToInstruction(t *testing.T) {
	p := New()

	res, err := p.Parse("every day", ref)
	require.NoError(t, err)
	// Nothing is left after stripping the recurrence phrase, so the original
	// instruction is kept as the task.
	assert.Equal(t, "every day", res.Task)
}

func TestFallbackChain(t *testing.T) {
	res, err := fallback("finish report later today", ref)
	require.NoError(t, err)
	assert.Equal(t, ref.Add(2*time.Hour), res.FireAt)
	assert.Equal(t, "finish report", res.Task)

	res, err = fallback("lock the door tonight", ref)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC), res.FireAt)

	// Past 8pm, "tonight" rolls to the next evening.
	late := time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC)
	res, err = fallback("lock the door tonight", late)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC), res.FireAt)

	res, err = fallback("pack bags tomorrow", ref)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC), res.FireAt)

	_, err = fallback("no time here", ref)
	require.Error(t, err)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, s := range []string{
		"take a break after 20 minutes",
		"stretch later today",
		"watch the kettle tonight",
		"call mom this evening",
	} {
		once := normalize(s)
		assert.Equal(t, once, normalize(once), s)
	}
}
