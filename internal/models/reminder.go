package models

import "time"

// DeliveryState tracks whether the current occurrence of a reminder has been
// delivered. A record moves pending -> sent at most once per fire time; a
// recurring reminder is reset to pending when its next occurrence is computed.
type DeliveryState string

const (
	StatePending DeliveryState = "pending"
	StateSent    DeliveryState = "sent"
)

type RecurrenceKind string

const (
	RecurNone    RecurrenceKind = ""
	RecurDaily   RecurrenceKind = "daily"
	RecurWeekly  RecurrenceKind = "weekly"
	RecurMonthly RecurrenceKind = "monthly"
)

// RecurrenceRule is embedded by value in a Reminder. Weekday is only
// meaningful for weekly rules, DayOfMonth (clamped to 1..31 at parse time)
// only for monthly rules.
type RecurrenceRule struct {
	Kind       RecurrenceKind `json:"kind"`
	Weekday    time.Weekday   `json:"weekday,omitempty"`
	DayOfMonth int            `json:"day_of_month,omitempty"`
}

func (r RecurrenceRule) None() bool {
	return r.Kind == RecurNone
}

type Reminder struct {
	ID         string         `json:"id"`
	Recipient  string         `json:"recipient"` // chat identity the reminder is delivered to
	Task       string         `json:"task"`
	FireAt     time.Time      `json:"fire_at"`
	Recurrence RecurrenceRule `json:"recurrence"`
	State      DeliveryState  `json:"state"`
	CreatedAt  time.Time      `json:"created_at"`
}

// IsRecurring returns true if this reminder regenerates after firing.
func (r *Reminder) IsRecurring() bool {
	return !r.Recurrence.None()
}
