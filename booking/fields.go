package booking

import "time"

// Defaults applied at the point of booking, never at extraction time.
const (
	DefaultTitle           = "Meeting"
	DefaultDurationMinutes = 60
)

// RawFields is the loosely-structured output of the language understanding
// boundary: field name to raw value, e.g. {"date": "tomorrow",
// "duration": "90", "title": "Client Meeting"}.
type RawFields map[string]string

// ExtractedFields holds the canonicalized booking fields accumulated over
// the conversation. Zero values mean "not yet provided".
type ExtractedFields struct {
	// Date is the resolved calendar date in the engine's time zone,
	// never a phrase. Nil while unresolved.
	Date *time.Time `json:"date,omitempty"`

	// TimeHint is a coarse time-of-day preference: "morning",
	// "afternoon", "evening", or an explicit "15:04" clock time.
	TimeHint string `json:"time_hint,omitempty"`

	// DurationMinutes is the requested meeting length; 0 while unset.
	DurationMinutes int `json:"duration_minutes,omitempty"`

	Title           string `json:"title,omitempty"`
	Description     string `json:"description,omitempty"`
	AttendeeContact string `json:"attendee_contact,omitempty"`
}

// Merge folds newer fields into f. A field already set is only overwritten
// by a non-zero replacement; later turns may refine, never silently erase.
func (f *ExtractedFields) Merge(newer ExtractedFields) {
	if newer.Date != nil {
		d := *newer.Date
		f.Date = &d
	}
	if newer.TimeHint != "" {
		f.TimeHint = newer.TimeHint
	}
	if newer.DurationMinutes > 0 {
		f.DurationMinutes = newer.DurationMinutes
	}
	if newer.Title != "" {
		f.Title = newer.Title
	}
	if newer.Description != "" {
		f.Description = newer.Description
	}
	if newer.AttendeeContact != "" {
		f.AttendeeContact = newer.AttendeeContact
	}
}

// EffectiveDuration returns the requested duration, falling back to the
// configured default (or the package default when defaultMinutes is 0).
func (f ExtractedFields) EffectiveDuration(defaultMinutes int) time.Duration {
	minutes := f.DurationMinutes
	if minutes < 1 {
		minutes = defaultMinutes
	}
	if minutes < 1 {
		minutes = DefaultDurationMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// EffectiveTitle returns the meeting title with the booking-time default
// applied.
func (f ExtractedFields) EffectiveTitle() string {
	if f.Title == "" {
		return DefaultTitle
	}
	return f.Title
}
