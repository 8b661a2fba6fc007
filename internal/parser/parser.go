// Package parser turns a free-text instruction ("drink water in 30 minutes",
// "stretch every morning") into either a one-shot instant or a recurrence
// rule, plus the residual task description.
//
// Priority order: recurrence detection, relative-phrase normalization,
// general natural-language extraction, then a small literal fallback chain.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/lifeline-bot/companion/internal/models"
)

// Result is the outcome of a successful parse. Exactly one of FireAt or
// Recurrence is meaningful: a recurring instruction carries the rule and
// leaves FireAt zero (the caller computes the first occurrence through the
// resolver so it is always strictly in the future).
type Result struct {
	Task       string
	FireAt     time.Time
	Recurrence models.RecurrenceRule
}

type Parser struct {
	w *when.Parser
}

func New() *Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Parser{w: w}
}

var (
	dailyStripRe   = regexp.MustCompile(`(?i)\s*(?:every\s+(?:day|morning|evening|night|daily)|daily)\b(?:\s+at\s+\d{1,2}(?::\d{2})?\s*(?:am|pm)?)?`)
	weeklyStripRe  = regexp.MustCompile(`(?i)\s*(?:every\s+(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday|week|weekly)|weekly)\b(?:\s+at\s+\d{1,2}(?::\d{2})?\s*(?:am|pm)?)?`)
	monthlyDayRe   = regexp.MustCompile(`(?i)every\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	monthlyStripRe = regexp.MustCompile(`(?i)\s*every\s+\d{1,2}(?:st|nd|rd|th)?\b(?:\s+at\s+\d{1,2}(?::\d{2})?\s*(?:am|pm)?)?`)
	trailingPrepRe = regexp.MustCompile(`(?i)\s+(?:at|on|by|in|after|around|to|for)$`)
	spacesRe       = regexp.MustCompile(`\s+`)
)

// weekdayNames is checked in order; the first name found wins, Monday is the
// default for a bare "every week".
var weekdayNames = []struct {
	name string
	day  time.Weekday
}{
	{"monday", time.Monday},
	{"tuesday", time.Tuesday},
	{"wednesday", time.Wednesday},
	{"thursday", time.Thursday},
	{"friday", time.Friday},
	{"saturday", time.Saturday},
	{"sunday", time.Sunday},
}

// Parse interprets instruction relative to now. It returns a typed *Error on
// failure; validation of the extracted instant (past date, invalid calendar
// instant) is the caller's responsibility.
func (p *Parser) Parse(instruction string, now time.Time) (*Result, error) {
	instruction = strings.TrimSpace(instruction)
	lower := strings.ToLower(instruction)

	if hasRecurrenceMarker(lower) {
		return parseRecurring(instruction, lower)
	}
	return p.parseOneShot(instruction, now)
}

func hasRecurrenceMarker(lower string) bool {
	return strings.Contains(lower, "every") ||
		strings.Contains(lower, "daily") ||
		strings.Contains(lower, "weekly")
}

func parseRecurring(instruction, lower string) (*Result, error) {
	switch {
	case strings.Contains(lower, "every day") || strings.Contains(lower, "daily") ||
		(strings.Contains(lower, "every") && containsAny(lower, "morning", "evening", "night")):
		return &Result{
			Task:       residual(dailyStripRe.ReplaceAllString(instruction, ""), instruction),
			Recurrence: models.RecurrenceRule{Kind: models.RecurDaily},
		}, nil

	case strings.Contains(lower, "every week") || strings.Contains(lower, "weekly") ||
		(strings.Contains(lower, "every") && containsWeekday(lower)):
		return &Result{
			Task: residual(weeklyStripRe.ReplaceAllString(instruction, ""), instruction),
			Recurrence: models.RecurrenceRule{
				Kind:    models.RecurWeekly,
				Weekday: weekdayIn(lower),
			},
		}, nil

	case monthlyDayRe.MatchString(instruction):
		m := monthlyDayRe.FindStringSubmatch(instruction)
		day, _ := strconv.Atoi(m[1])
		return &Result{
			Task: residual(monthlyStripRe.ReplaceAllString(instruction, ""), instruction),
			Recurrence: models.RecurrenceRule{
				Kind:       models.RecurMonthly,
				DayOfMonth: clampDay(day),
			},
		}, nil

	default:
		// "every" was present but matched no supported shape; the caller must
		// ask for a rephrase rather than guess.
		return nil, &Error{Kind: FailAmbiguousRecurrence, Instruction: instruction}
	}
}

func (p *Parser) parseOneShot(instruction string, now time.Time) (*Result, error) {
	normalized := normalize(instruction)

	match, err := p.w.Parse(normalized, now)
	if err == nil && match != nil {
		task := removeSpan(instruction, match.Text)
		if task == instruction {
			// The span came from a normalization substitution and is not
			// present verbatim in the original; strip it from the normalized
			// form instead.
			task = removeSpan(normalized, match.Text)
		}
		task = strings.TrimSpace(trailingPrepRe.ReplaceAllString(task, ""))
		return &Result{Task: residual(task, "this"), FireAt: match.Time}, nil
	}

	return fallback(instruction, now)
}

// fallback handles the literal phrases the general grammar missed. First
// match wins: "later today", then "tonight", then "tomorrow".
func fallback(instruction string, now time.Time) (*Result, error) {
	lower := strings.ToLower(instruction)

	switch {
	case strings.Contains(lower, "later today"):
		return &Result{
			Task:   fallbackTask(instruction, "later today"),
			FireAt: now.Add(2 * time.Hour),
		}, nil

	case strings.Contains(lower, "tonight"):
		at := time.Date(now.Year(), now.Month(), now.Day(), 20, 0, 0, 0, now.Location())
		if !at.After(now) {
			at = at.AddDate(0, 0, 1)
		}
		return &Result{Task: fallbackTask(instruction, "tonight"), FireAt: at}, nil

	case strings.Contains(lower, "tomorrow"):
		t := now.AddDate(0, 0, 1)
		at := time.Date(t.Year(), t.Month(), t.Day(), 9, 0, 0, 0, now.Location())
		return &Result{Task: fallbackTask(instruction, "tomorrow"), FireAt: at}, nil

	default:
		return nil, &Error{Kind: FailNoTimeFound, Instruction: instruction}
	}
}

func fallbackTask(instruction, phrase string) string {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(phrase))
	return residual(re.ReplaceAllString(instruction, ""), "this")
}

// removeSpan deletes the first case-insensitive occurrence of span from text
// and collapses the whitespace around the hole.
func removeSpan(text, span string) string {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(span))
	loc := re.FindStringIndex(text)
	if loc == nil {
		return text
	}
	out := text[:loc[0]] + text[loc[1]:]
	return strings.TrimSpace(spacesRe.ReplaceAllString(out, " "))
}

// residual trims the stripped text, falling back when nothing is left so a
// reminder never ends up with an empty task.
func residual(stripped, fallback string) string {
	s := strings.TrimSpace(spacesRe.ReplaceAllString(stripped, " "))
	if s == "" {
		return fallback
	}
	return s
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func containsWeekday(lower string) bool {
	for _, wd := range weekdayNames {
		if strings.Contains(lower, wd.name) {
			return true
		}
	}
	return false
}

func weekdayIn(lower string) time.Weekday {
	for _, wd := range weekdayNames {
		if strings.Contains(lower, wd.name) {
			return wd.day
		}
	}
	return time.Monday
}

func clampDay(day int) int {
	if day < 1 {
		return 1
	}
	if day > 31 {
		return 31
	}
	return day
}
