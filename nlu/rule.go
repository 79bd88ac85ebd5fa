// Package nlu implements the language understanding boundary of the
// booking core: intent classification and field extraction. Two
// implementations exist, a deterministic rule matcher and a model-backed
// understander; configuration selects one, and the agent substitutes the
// rule matcher when the model fails.
package nlu

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/hrygo/schedsense/booking"
)

// RuleUnderstander classifies intents and extracts fields with keyword
// and pattern matching. Deterministic: the same message and session state
// always produce the same output. It never returns an error.
type RuleUnderstander struct{}

func NewRuleUnderstander() *RuleUnderstander { return &RuleUnderstander{} }

var greetingTokens = map[string]bool{
	"hello": true, "hi": true, "hey": true, "yo": true,
	"good morning": true, "good afternoon": true, "good evening": true,
	"hi there": true, "hello there": true,
}

var selectionHintRegex = regexp.MustCompile(`\boption\s+\d|\b(first|second|third|fourth|fifth)\b|that one|looks good`)

func containsAny(msg string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(msg, w) {
			return true
		}
	}
	return false
}

// ClassifyIntent maps a message onto the closed intent set. Session state
// disambiguates the overloaded vocabulary: "schedule" confirms inside
// ConfirmingSelection but starts a booking anywhere else, and a bare "2"
// is a selection only while slots are on the table.
func (r *RuleUnderstander) ClassifyIntent(_ context.Context, message string, s *booking.Session) (booking.Intent, error) {
	msg := strings.ToLower(strings.TrimSpace(message))
	if msg == "" {
		return booking.IntentGeneral, nil
	}

	if s != nil {
		switch s.State {
		case booking.StateConfirmingSelection:
			if booking.ResolveConfirmation(msg) || containsAny(msg, "no", "not", "different", "another") {
				return booking.IntentConfirmBooking, nil
			}
		case booking.StateShowingSlots:
			if _, err := booking.ResolveSelection(msg, booking.MaxRetainedSlots); err == nil {
				return booking.IntentSelectSlot, nil
			}
		}
	}

	if greetingTokens[strings.TrimRight(msg, "!. ")] {
		return booking.IntentGreeting, nil
	}
	if containsAny(msg, "cancel", "nevermind", "never mind") {
		return booking.IntentCancelBooking, nil
	}
	if containsAny(msg, "reschedule", "move the meeting", "change the time", "different time") {
		return booking.IntentModifyBooking, nil
	}
	if selectionHintRegex.MatchString(msg) {
		return booking.IntentSelectSlot, nil
	}
	if containsAny(msg, "availab", "free time", "open slot", "what times", "when are you") {
		return booking.IntentCheckAvailability, nil
	}
	if containsAny(msg, "book", "schedule", "meeting", "appointment", "set up a call") {
		return booking.IntentBookMeeting, nil
	}
	if booking.ResolveConfirmation(msg) {
		return booking.IntentConfirmBooking, nil
	}
	return booking.IntentGeneral, nil
}

var (
	isoDateRegex  = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	usDateRegex   = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`)
	weekdayRegex  = regexp.MustCompile(`\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	clockRegex    = regexp.MustCompile(`\b\d{1,2}(:\d{2})?\s*(am|pm)\b`)
	durationRegex = regexp.MustCompile(`\b(\d+)\s*(hours?|hrs?|minutes?|mins?)\b`)
	emailRegex    = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

// titleKeywords maps message keywords to canonical meeting titles, most
// specific first.
var titleKeywords = []struct {
	keyword string
	title   string
}{
	{"consultation", "Consultation"},
	{"interview", "Interview"},
	{"team", "Team Meeting"},
	{"client", "Client Meeting"},
	{"standup", "Standup"},
	{"review", "Review Meeting"},
	{"call", "Phone Call"},
}

// ExtractFields pulls raw booking fields out of a message. Values stay
// raw phrases ("tomorrow", "2 hours"); canonicalization is the
// normalizer's job.
func (r *RuleUnderstander) ExtractFields(_ context.Context, message string, _ time.Time) (booking.RawFields, error) {
	msg := strings.ToLower(message)
	raw := booking.RawFields{}

	switch {
	case isoDateRegex.MatchString(msg):
		raw["date"] = isoDateRegex.FindString(msg)
	case usDateRegex.MatchString(msg):
		raw["date"] = usDateRegex.FindString(msg)
	case strings.Contains(msg, "tomorrow"):
		raw["date"] = "tomorrow"
	case strings.Contains(msg, "today"):
		raw["date"] = "today"
	case strings.Contains(msg, "next week"):
		raw["date"] = "next week"
	case weekdayRegex.MatchString(msg):
		raw["date"] = weekdayRegex.FindString(msg)
	}

	switch {
	case clockRegex.MatchString(msg):
		raw["time"] = clockRegex.FindString(msg)
	case strings.Contains(msg, "morning"):
		raw["time"] = "morning"
	case strings.Contains(msg, "afternoon"):
		raw["time"] = "afternoon"
	case strings.Contains(msg, "evening"):
		raw["time"] = "evening"
	case strings.Contains(msg, "noon"):
		raw["time"] = "noon"
	}

	if m := durationRegex.FindStringSubmatch(msg); m != nil {
		raw["duration"] = m[0]
	} else if strings.Contains(msg, "half hour") || strings.Contains(msg, "half an hour") {
		raw["duration"] = "30 minutes"
	}

	for _, tk := range titleKeywords {
		if strings.Contains(msg, tk.keyword) {
			raw["title"] = tk.title
			break
		}
	}

	if email := emailRegex.FindString(message); email != "" {
		raw["attendee_contact"] = email
	}

	return raw, nil
}
