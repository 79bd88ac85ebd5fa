// Package booking implements the conversational meeting-booking core: the
// per-session state machine, the extraction normalizer, the slot selection
// and confirmation resolvers, and the session store with per-key exclusion.
// It performs no I/O of its own; the calendar provider and the language
// understander are injected at the boundary.
package booking

// Intent is the closed set of conversational intents produced by the
// language understanding boundary. The core consumes it as input and never
// derives it itself.
type Intent string

const (
	IntentGreeting          Intent = "greeting"
	IntentBookMeeting       Intent = "book_meeting"
	IntentCheckAvailability Intent = "check_availability"
	IntentSelectSlot        Intent = "select_slot"
	IntentConfirmBooking    Intent = "confirm_booking"
	IntentModifyBooking     Intent = "modify_booking"
	IntentCancelBooking     Intent = "cancel_booking"
	IntentGeneral           Intent = "general"
)

// ParseIntent maps a string onto the closed intent set, defaulting to
// general for anything unrecognized.
func ParseIntent(s string) Intent {
	switch Intent(s) {
	case IntentGreeting, IntentBookMeeting, IntentCheckAvailability,
		IntentSelectSlot, IntentConfirmBooking, IntentModifyBooking,
		IntentCancelBooking, IntentGeneral:
		return Intent(s)
	default:
		return IntentGeneral
	}
}

// State is the conversation stage of one booking cycle.
type State string

const (
	StateGreeting            State = "greeting"
	StateCollectingInfo      State = "collecting_info"
	StateShowingSlots        State = "showing_slots"
	StateConfirmingSelection State = "confirming_selection"
	StateCompleted           State = "completed"
)

// PromptKind tells the presentation layer which prompt to compose next.
// The core never composes prose.
type PromptKind string

const (
	PromptGreeting         PromptKind = "greeting"
	PromptAskDate          PromptKind = "ask_date"
	PromptShowSlots        PromptKind = "show_slots"
	PromptNoAvailability   PromptKind = "no_availability"
	PromptClarifySelection PromptKind = "clarify_selection"
	PromptConfirmSelection PromptKind = "confirm_selection"
	PromptBooked           PromptKind = "booked"
	PromptRetryProvider    PromptKind = "retry_provider"
	PromptSelectionLost    PromptKind = "selection_lost"
	PromptHelp             PromptKind = "help"
)
