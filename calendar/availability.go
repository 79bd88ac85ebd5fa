package calendar

import (
	"log/slog"
	"sort"
	"time"
)

// Default engine settings, matching the typical office calendar.
const (
	DefaultWorkingHourStart = 9
	DefaultWorkingHourEnd   = 17
	DefaultMaxSlots         = 10
)

// HourRange bounds the working window of a day, [Start, End) in local hours.
type HourRange struct {
	Start int
	End   int
}

// Engine computes bookable slots from busy intervals. It performs no I/O;
// busy intervals are supplied per day by the caller.
type Engine struct {
	loc           *time.Location
	workingHours  HourRange
	nonWorkingDay func(time.Weekday) bool
	maxSlots      int
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithWorkingHours sets the daily working window.
func WithWorkingHours(start, end int) EngineOption {
	return func(e *Engine) {
		e.workingHours = HourRange{Start: start, End: end}
	}
}

// WithNonWorkingDays marks the given weekdays as unschedulable.
func WithNonWorkingDays(days ...time.Weekday) EngineOption {
	set := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		set[d] = true
	}
	return func(e *Engine) {
		e.nonWorkingDay = func(d time.Weekday) bool { return set[d] }
	}
}

// WithNonWorkingPredicate installs a custom non-working-day predicate.
func WithNonWorkingPredicate(pred func(time.Weekday) bool) EngineOption {
	return func(e *Engine) {
		e.nonWorkingDay = pred
	}
}

// WithMaxSlots caps the number of slots produced across all days.
func WithMaxSlots(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxSlots = n
		}
	}
}

// NewEngine creates an availability engine localized to loc.
// Defaults: 09-17 working hours, Saturday/Sunday non-working, 10 slots max.
func NewEngine(loc *time.Location, opts ...EngineOption) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	e := &Engine{
		loc:          loc,
		workingHours: HourRange{Start: DefaultWorkingHourStart, End: DefaultWorkingHourEnd},
		nonWorkingDay: func(d time.Weekday) bool {
			return d == time.Saturday || d == time.Sunday
		},
		maxSlots: DefaultMaxSlots,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Location returns the engine's configured time zone.
func (e *Engine) Location() *time.Location { return e.loc }

// WorkingHours returns the configured daily working window.
func (e *Engine) WorkingHours() HourRange { return e.workingHours }

// MaxSlots returns the cap on slots produced per call.
func (e *Engine) MaxSlots() int { return e.maxSlots }

// BusyByDay returns the busy intervals relevant to one calendar day.
// The returned intervals need not be sorted or non-overlapping.
type BusyByDay func(day time.Time) []BusyInterval

// FindSlots sweeps each working day in [rangeStart, rangeEnd] and emits
// non-overlapping candidate slots of the given duration, in ascending
// order, stopping once the engine's slot cap is reached.
//
// Within each day, a cursor starts at the working-window open; for each
// busy interval in ascending order the slot [cursor, cursor+duration) is
// emitted when it fits entirely before the interval, and the cursor then
// jumps past the interval. A final slot covers the tail of the window if
// the duration still fits. No emitted slot can overlap a busy interval.
func (e *Engine) FindSlots(rangeStart, rangeEnd time.Time, duration time.Duration, busyByDay BusyByDay) []Slot {
	return e.FindSlotsInWindow(rangeStart, rangeEnd, duration, e.workingHours, busyByDay)
}

// FindSlotsInWindow is FindSlots with an explicit working window, used when
// a time-of-day preference narrows the configured hours for one query.
func (e *Engine) FindSlotsInWindow(rangeStart, rangeEnd time.Time, duration time.Duration, hours HourRange, busyByDay BusyByDay) []Slot {
	if duration <= 0 {
		return nil
	}

	slots := make([]Slot, 0, e.maxSlots)
	day := time.Date(rangeStart.Year(), rangeStart.Month(), rangeStart.Day(), 0, 0, 0, 0, e.loc)
	lastDay := time.Date(rangeEnd.Year(), rangeEnd.Month(), rangeEnd.Day(), 0, 0, 0, 0, e.loc)

	for !day.After(lastDay) && len(slots) < e.maxSlots {
		current := day
		day = day.AddDate(0, 0, 1)

		if e.nonWorkingDay(current.Weekday()) {
			continue
		}

		dayStart := current.Add(time.Duration(hours.Start) * time.Hour)
		dayEnd := current.Add(time.Duration(hours.End) * time.Hour)
		if !dayStart.Before(dayEnd) {
			continue
		}

		var busy []BusyInterval
		if busyByDay != nil {
			busy = clipAndSort(busyByDay(current), dayStart, dayEnd)
		}

		cursor := dayStart
		for _, b := range busy {
			if len(slots) >= e.maxSlots {
				return slots
			}
			if !cursor.Add(duration).After(b.Start) {
				slots = append(slots, newSlot(cursor, cursor.Add(duration)))
			}
			if b.End.After(cursor) {
				cursor = b.End
			}
		}
		if len(slots) < e.maxSlots && !cursor.Add(duration).After(dayEnd) {
			slots = append(slots, newSlot(cursor, cursor.Add(duration)))
		}
	}

	slog.Debug("availability computed",
		"range_start", rangeStart.Format("2006-01-02"),
		"range_end", rangeEnd.Format("2006-01-02"),
		"duration_min", int(duration.Minutes()),
		"slots", len(slots))

	return slots
}

// clipAndSort discards intervals wholly outside the working window, clips
// the rest to it, and returns them in ascending start order. Inputs are
// never assumed pre-sorted or non-overlapping.
func clipAndSort(busy []BusyInterval, dayStart, dayEnd time.Time) []BusyInterval {
	out := make([]BusyInterval, 0, len(busy))
	for _, b := range busy {
		if b.Validate() != nil {
			continue
		}
		if !b.Overlaps(dayStart, dayEnd) {
			continue
		}
		clipped := b
		if clipped.Start.Before(dayStart) {
			clipped.Start = dayStart
		}
		if clipped.End.After(dayEnd) {
			clipped.End = dayEnd
		}
		out = append(out, clipped)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// BucketByDay groups a flat interval list into a per-day lookup in loc.
// Intervals spanning midnight contribute to every day they touch.
func BucketByDay(intervals []BusyInterval, loc *time.Location) BusyByDay {
	byDay := make(map[string][]BusyInterval)
	for _, iv := range intervals {
		if iv.Validate() != nil {
			continue
		}
		day := time.Date(iv.Start.In(loc).Year(), iv.Start.In(loc).Month(), iv.Start.In(loc).Day(), 0, 0, 0, 0, loc)
		for day.Before(iv.End.In(loc)) {
			byDay[day.Format("2006-01-02")] = append(byDay[day.Format("2006-01-02")], iv)
			day = day.AddDate(0, 0, 1)
		}
	}
	return func(day time.Time) []BusyInterval {
		return byDay[day.In(loc).Format("2006-01-02")]
	}
}
