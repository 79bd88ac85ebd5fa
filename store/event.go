package store

import (
	"context"
)

// Event is a persisted calendar event row. Timestamps are Unix seconds.
type Event struct {
	ID              string
	CalendarID      string
	Title           string
	Description     string
	AttendeeContact string
	StartTs         int64
	EndTs           int64
	CreatedTs       int64
}

func (s *Store) CreateEvent(ctx context.Context, event *Event) error {
	return s.driver.CreateEvent(ctx, event)
}

func (s *Store) ListEventsBetween(ctx context.Context, calendarID string, startTs, endTs int64) ([]*Event, error) {
	return s.driver.ListEventsBetween(ctx, calendarID, startTs, endTs)
}

func (s *Store) ListUpcomingEvents(ctx context.Context, calendarID string, afterTs int64, limit int) ([]*Event, error) {
	return s.driver.ListUpcomingEvents(ctx, calendarID, afterTs, limit)
}
