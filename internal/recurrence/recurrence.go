// Package recurrence computes the next concrete firing instant for a
// recurrence rule. Daily reminders fire at 08:00, weekly and monthly ones at
// 09:00, always strictly after the reference instant.
package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/lifeline-bot/companion/internal/models"
)

const (
	dailyHour  = 8
	weeklyHour = 9
)

// Resolver turns a RecurrenceRule plus a reference instant into the next
// occurrence. It is stateless apart from the timezone the schedule lives in,
// so identical (rule, now) inputs always produce identical outputs.
type Resolver struct {
	loc *time.Location
}

func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	return &Resolver{loc: loc}
}

// Next returns the first occurrence of rule strictly after now.
//
// A monthly rule whose day does not exist in a candidate month (day 31 in
// February) skips forward to the next month that contains it; that is the
// BYMONTHDAY behavior of RFC 5545 and of rrule-go.
func (r *Resolver) Next(rule models.RecurrenceRule, now time.Time) (time.Time, error) {
	ref := now.In(r.loc)

	opt := rrule.ROption{
		Dtstart:  ref,
		Byminute: []int{0},
		Bysecond: []int{0},
	}

	switch rule.Kind {
	case models.RecurDaily:
		opt.Freq = rrule.DAILY
		opt.Byhour = []int{dailyHour}
	case models.RecurWeekly:
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = []rrule.Weekday{toRRuleWeekday(rule.Weekday)}
		opt.Byhour = []int{weeklyHour}
	case models.RecurMonthly:
		opt.Freq = rrule.MONTHLY
		opt.Bymonthday = []int{rule.DayOfMonth}
		opt.Byhour = []int{weeklyHour}
	default:
		return time.Time{}, fmt.Errorf("not a recurring rule: %q", rule.Kind)
	}

	rr, err := rrule.NewRRule(opt)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to build rule: %w", err)
	}

	next := rr.After(ref, false)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("no occurrence of %q after %s", rule.Kind, ref)
	}
	return next, nil
}

func toRRuleWeekday(d time.Weekday) rrule.Weekday {
	switch d {
	case time.Monday:
		return rrule.MO
	case time.Tuesday:
		return rrule.TU
	case time.Wednesday:
		return rrule.WE
	case time.Thursday:
		return rrule.TH
	case time.Friday:
		return rrule.FR
	case time.Saturday:
		return rrule.SA
	default:
		return rrule.SU
	}
}
