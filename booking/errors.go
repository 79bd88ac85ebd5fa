package booking

import "errors"

// Recoverable failure conditions. Each is handled locally by the state
// machine (re-prompt, clarify, or retry); none escapes a turn as a panic
// or an unhandled error.
var (
	// ErrUnresolvableDate means the user's input never mapped to a
	// calendar date. Recovered by re-prompting for the date.
	ErrUnresolvableDate = errors.New("unresolvable date")

	// ErrNoAvailability means the engine legitimately found zero slots.
	// Recovered by re-prompting for a different date.
	ErrNoAvailability = errors.New("no availability slots")

	// ErrAmbiguousSelection means the selection resolver could not map
	// input onto a presented slot. Recovered by asking to disambiguate.
	ErrAmbiguousSelection = errors.New("ambiguous slot selection")

	// ErrInconsistentState means confirmation was reached without a
	// stored selection. Logged, session returned to slot selection,
	// never a crash.
	ErrInconsistentState = errors.New("inconsistent session state")

	// ErrSessionNotFound is returned when a session id is unknown.
	ErrSessionNotFound = errors.New("session not found")
)
