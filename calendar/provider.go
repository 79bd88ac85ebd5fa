package calendar

import (
	"context"
	"errors"
	"time"
)

// ErrProviderUnavailable indicates a transport, storage, or auth failure at
// the calendar backend. Callers must treat it as "no data" and surface a
// retry to the user, never as an empty calendar.
var ErrProviderUnavailable = errors.New("calendar provider unavailable")

// CreateEventRequest carries the fields for a new calendar event.
type CreateEventRequest struct {
	Title       string
	Description string
	Attendee    string
	CalendarID  string
	Start       time.Time
	End         time.Time
}

// Provider is the calendar backend boundary. Two variants exist: the
// store-backed provider persisting real events, and the deterministic
// simulator used for development and tests. The booking core depends only
// on this interface.
type Provider interface {
	// FindBusyIntervals returns the busy intervals intersecting
	// [start, end) on the given calendar, in ascending start order.
	FindBusyIntervals(ctx context.Context, start, end time.Time, calendarID string) ([]BusyInterval, error)

	// CreateEvent books an event and returns its identifier.
	CreateEvent(ctx context.Context, req CreateEventRequest) (string, error)

	// ListUpcomingEvents returns up to limit events starting after now,
	// soonest first.
	ListUpcomingEvents(ctx context.Context, now time.Time, limit int, calendarID string) ([]Event, error)
}
