// Package intent classifies inbound messages that are not reminder
// instructions, and detects the override commands (pause/resume) that beat
// everything else.
package intent

import (
	"regexp"
	"strings"
)

type Command string

const (
	CommandNone   Command = ""
	CommandPause  Command = "pause"
	CommandResume Command = "resume"
)

type Intent string

const (
	IntentGreeting Intent = "greeting"
	IntentCheckIn  Intent = "check_in"
	IntentQuestion Intent = "question"
	IntentUnknown  Intent = "unknown"
)

const reminderPrefix = "remind me to "

var (
	emojiRe    = regexp.MustCompile(`[\x{1F300}-\x{1FAFF}\x{2600}-\x{26FF}\x{2700}-\x{27BF}]`)
	spacesRe   = regexp.MustCompile(`\s+`)
	letterRe   = regexp.MustCompile(`[a-zA-Z\x{00C0}-\x{017F}]`)
	questionRe = regexp.MustCompile(`^(did|do|what|how|when|can)\b`)

	pauseKeywords  = []string{"stop", "pause", "unsubscribe", "cancel", "quit", "exit"}
	resumeKeywords = []string{"start", "resume", "reactivate"}

	greetingWords   = []string{"hi", "hello", "hey"}
	greetingPhrases = []string{
		"good morning", "morning",
		"good afternoon", "afternoon",
		"good evening", "evening",
		"are you there",
	}

	checkInPhrases = []string{
		"tired", "overwhelmed", "stressed", "anxious", "sad",
		"exhausting", "drained", "burned out", "too much", "feeling",
		"it's been a lot", "not good", "struggling",
	}
)

// Normalize returns the trimmed original plus a matching-friendly form with
// emojis stripped, lowercased and whitespace collapsed. Matching always uses
// the clean form; stored task text always uses the original.
func Normalize(text string) (original, clean string) {
	original = strings.TrimSpace(text)
	clean = emojiRe.ReplaceAllString(original, "")
	clean = strings.ToLower(clean)
	clean = strings.TrimSpace(spacesRe.ReplaceAllString(clean, " "))
	return original, clean
}

// HasLetters reports whether the message contains any alphabetic content;
// emoji-only messages get a presence reply instead of a parse attempt.
func HasLetters(text string) bool {
	return letterRe.MatchString(text)
}

// ReminderInstruction extracts the instruction body from a "remind me to ..."
// message, matched against the clean form but sliced from the original.
func ReminderInstruction(original, clean string) (string, bool) {
	if !strings.HasPrefix(clean, reminderPrefix) {
		return "", false
	}
	trimmed := strings.TrimSpace(original)
	if len(trimmed) <= len(reminderPrefix) {
		return "", false
	}
	return strings.TrimSpace(trimmed[len(reminderPrefix):]), true
}

// IsListRequest matches the "show me my reminders" family of messages.
func IsListRequest(clean string) bool {
	if clean == "list" || clean == "reminders" {
		return true
	}
	return strings.Contains(clean, "my reminders") || strings.Contains(clean, "list reminders")
}

// DetectCommand finds pause/resume commands by whole-word match.
func DetectCommand(clean string) Command {
	words := strings.Fields(clean)
	for _, w := range words {
		for _, kw := range pauseKeywords {
			if w == kw {
				return CommandPause
			}
		}
	}
	for _, w := range words {
		for _, kw := range resumeKeywords {
			if w == kw {
				return CommandResume
			}
		}
	}
	// Phrase commands ("come back", "hi again") need the full string.
	if strings.Contains(clean, "come back") || strings.Contains(clean, "hi again") {
		return CommandResume
	}
	return CommandNone
}

// Detect classifies a non-reminder message. Check-in beats greeting: care
// words win over a "good morning" opener.
func Detect(message string) Intent {
	_, clean := Normalize(message)

	for _, phrase := range checkInPhrases {
		if strings.Contains(clean, phrase) {
			return IntentCheckIn
		}
	}

	for _, phrase := range greetingPhrases {
		re := regexp.MustCompile(`^` + regexp.QuoteMeta(phrase) + `(\W|$)`)
		if re.MatchString(clean) {
			return IntentGreeting
		}
	}
	for _, word := range greetingWords {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
		if re.MatchString(clean) {
			return IntentGreeting
		}
	}

	if questionRe.MatchString(clean) {
		return IntentQuestion
	}

	return IntentUnknown
}
