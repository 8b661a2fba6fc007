package parser

import "fmt"

// FailureKind classifies why an instruction could not be turned into a
// schedule. All of these are user-recoverable: the bot answers with a
// clarification prompt and no record is created.
type FailureKind string

const (
	// FailAmbiguousRecurrence: the instruction says "every" but matches none
	// of the supported daily/weekly/monthly shapes.
	FailAmbiguousRecurrence FailureKind = "ambiguous_recurrence"
	// FailNoTimeFound: no time expression was recognized anywhere.
	FailNoTimeFound FailureKind = "no_time_found"
	// FailInvalidDate: the extracted instant is not a valid calendar instant.
	FailInvalidDate FailureKind = "invalid_date"
	// FailPastDate: the extracted instant is not in the future.
	FailPastDate FailureKind = "past_date"
)

type Error struct {
	Kind        FailureKind
	Instruction string
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse %q: %s", e.Instruction, e.Kind)
}
