// Package calendar provides the availability engine and the calendar
// provider boundary. The engine turns busy intervals into bookable slots;
// providers supply busy intervals and create events.
package calendar

import (
	"fmt"
	"time"
)

// BusyInterval is an externally reported time range during which the
// calendar owner is unavailable. Start must be strictly before End.
type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate checks the start < end invariant.
func (b BusyInterval) Validate() error {
	if !b.Start.Before(b.End) {
		return fmt.Errorf("busy interval start %s is not before end %s", b.Start, b.End)
	}
	return nil
}

// Overlaps reports whether [start, end) intersects the busy interval.
func (b BusyInterval) Overlaps(start, end time.Time) bool {
	return start.Before(b.End) && b.Start.Before(end)
}

// Slot is a concrete bookable time interval of the requested duration,
// clear of all busy intervals considered for its day.
type Slot struct {
	Date       string    `json:"date"`       // calendar day, YYYY-MM-DD
	Start      time.Time `json:"start"`      // timezone-aware instant
	End        time.Time `json:"end"`        // Start + requested duration
	StartLabel string    `json:"start_time"` // display form, e.g. "09:00 AM"
	EndLabel   string    `json:"end_time"`
}

const slotLabelLayout = "03:04 PM"

func newSlot(start, end time.Time) Slot {
	return Slot{
		Date:       start.Format("2006-01-02"),
		Start:      start,
		End:        end,
		StartLabel: start.Format(slotLabelLayout),
		EndLabel:   end.Format(slotLabelLayout),
	}
}

// Event is a calendar event created through a provider.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Attendee    string    `json:"attendee,omitempty"`
	CalendarID  string    `json:"calendar_id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}
