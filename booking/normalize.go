package booking

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Normalizer turns loosely-structured raw fields into canonical
// ExtractedFields. It never fails: unresolvable fields are left unset and
// downstream logic asks the user for them.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer creates a normalizer resolving relative dates in loc.
func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc}
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

var (
	clockTimeRegex = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm)?$`)
	digitsRegex    = regexp.MustCompile(`^\d+$`)
)

// Normalize canonicalizes raw extracted fields relative to now. Defaults
// for duration and title are NOT applied here; they belong to the point of
// booking.
func (n *Normalizer) Normalize(raw RawFields, now time.Time) ExtractedFields {
	var out ExtractedFields
	if raw == nil {
		return out
	}

	if phrase, ok := raw["date"]; ok {
		if d, err := n.ResolveDate(phrase, now); err == nil {
			out.Date = &d
		}
	}
	if hint, ok := raw["time"]; ok {
		out.TimeHint = normalizeTimeHint(hint)
	}
	if dur, ok := raw["duration"]; ok {
		out.DurationMinutes = parseDurationMinutes(dur)
	}
	if title, ok := raw["title"]; ok {
		out.Title = strings.TrimSpace(title)
	}
	if desc, ok := raw["description"]; ok {
		out.Description = strings.TrimSpace(desc)
	}
	if contact, ok := raw["attendee_contact"]; ok {
		out.AttendeeContact = strings.TrimSpace(contact)
	}
	return out
}

// ResolveDate maps a date phrase onto a calendar date in the normalizer's
// time zone. Supported: "today", "tomorrow", "next week", bare weekday
// names (always the next future occurrence; a same-day weekday resolves a
// full week ahead, never today), and the absolute formats YYYY-MM-DD and
// MM/DD/YYYY. Anything else fails with ErrUnresolvableDate.
func (n *Normalizer) ResolveDate(phrase string, now time.Time) (time.Time, error) {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if phrase == "" {
		return time.Time{}, ErrUnresolvableDate
	}

	now = now.In(n.loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, n.loc)

	switch phrase {
	case "today":
		return midnight, nil
	case "tomorrow":
		return midnight.AddDate(0, 0, 1), nil
	case "next week":
		return midnight.AddDate(0, 0, 7), nil
	}

	if target, ok := weekdayNames[phrase]; ok {
		ahead := (int(target) - int(now.Weekday()) + 7) % 7
		if ahead == 0 {
			// Same-day match means next week's occurrence, so a meeting
			// is never silently placed in the past within the day.
			ahead = 7
		}
		return midnight.AddDate(0, 0, ahead), nil
	}

	for _, layout := range []string{"2006-01-02", "01/02/2006"} {
		if t, err := time.ParseInLocation(layout, phrase, n.loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, ErrUnresolvableDate
}

// normalizeTimeHint canonicalizes a coarse time-of-day preference to
// "morning"/"afternoon"/"evening" or a 24h "15:04" clock time. Returns ""
// when the hint is unusable.
func normalizeTimeHint(hint string) string {
	hint = strings.ToLower(strings.TrimSpace(hint))
	switch hint {
	case "morning", "afternoon", "evening":
		return hint
	case "noon":
		return "12:00"
	}

	m := clockTimeRegex.FindStringSubmatch(hint)
	if m == nil {
		return ""
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil || hour > 23 {
		return ""
	}
	minute := 0
	if m[2] != "" {
		minute, err = strconv.Atoi(m[2])
		if err != nil || minute > 59 {
			return ""
		}
	}
	switch m[3] {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	case "":
		// Bare hours without am/pm are only trusted in 24h form.
		if m[2] == "" {
			return ""
		}
	}
	if hour > 23 {
		return ""
	}
	return padClock(hour) + ":" + padClock(minute)
}

func padClock(v int) string {
	if v < 10 {
		return "0" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}

// parseDurationMinutes parses a raw duration value in minutes. Accepts a
// bare integer ("90") or a phrase like "2 hours" / "30 minutes". Returns 0
// when unparsable or out of range.
func parseDurationMinutes(raw string) int {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return 0
	}
	if digitsRegex.MatchString(raw) {
		v, _ := strconv.Atoi(raw)
		if v >= 1 {
			return v
		}
		return 0
	}

	m := durationPhraseRegex.FindStringSubmatch(raw)
	if m == nil {
		return 0
	}
	v, err := strconv.Atoi(m[1])
	if err != nil || v < 1 {
		return 0
	}
	if strings.HasPrefix(m[2], "h") {
		return v * 60
	}
	return v
}

var durationPhraseRegex = regexp.MustCompile(`(\d+)\s*(hours?|hrs?|minutes?|mins?)`)
