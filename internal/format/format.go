// Package format renders timestamps and recurrence rules for outbound
// messages.
package format

import (
	"fmt"
	"time"

	"github.com/lifeline-bot/companion/internal/models"
)

// When renders an instant the way a confirmation message shows it, in the
// deployment timezone.
func When(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("Monday, January 2, 2006 at 3:04 PM")
}

// Recurrence describes a rule in plain words for confirmations.
func Recurrence(rule models.RecurrenceRule) string {
	switch rule.Kind {
	case models.RecurDaily:
		return "every day at 8:00 AM"
	case models.RecurWeekly:
		return fmt.Sprintf("every %s at 9:00 AM", rule.Weekday)
	case models.RecurMonthly:
		return fmt.Sprintf("every month on the %s at 9:00 AM", ordinal(rule.DayOfMonth))
	default:
		return "once"
	}
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
