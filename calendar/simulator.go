package calendar

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"
)

// Simulator is a deterministic in-memory calendar backend. Busy intervals
// come from a fixed seed pattern plus any events created through it, so
// identical inputs always yield identical availability.
type Simulator struct {
	mu     sync.RWMutex
	loc    *time.Location
	seed   []seedBusy
	events []Event
	failAt map[string]error // operation name -> injected failure
}

// seedBusy is a recurring busy block on working days, as offsets from
// local midnight.
type seedBusy struct {
	start    time.Duration
	end      time.Duration
	weekdays map[time.Weekday]bool
}

// NewSimulator creates a simulator localized to loc with a fixed busy
// pattern: a 10:00-11:00 block every Monday and Wednesday and a
// 14:00-15:30 block every Tuesday and Thursday.
func NewSimulator(loc *time.Location) *Simulator {
	if loc == nil {
		loc = time.UTC
	}
	return &Simulator{
		loc: loc,
		seed: []seedBusy{
			{start: 10 * time.Hour, end: 11 * time.Hour, weekdays: map[time.Weekday]bool{time.Monday: true, time.Wednesday: true}},
			{start: 14 * time.Hour, end: 15*time.Hour + 30*time.Minute, weekdays: map[time.Weekday]bool{time.Tuesday: true, time.Thursday: true}},
		},
		failAt: make(map[string]error),
	}
}

// NewEmptySimulator creates a simulator with no seeded busy pattern.
// Only events created through it occupy the calendar.
func NewEmptySimulator(loc *time.Location) *Simulator {
	s := NewSimulator(loc)
	s.seed = nil
	return s
}

// FailWith injects err for the named operation ("find_busy", "create_event",
// "list_events") until cleared with FailWith(op, nil). Used to exercise
// provider-failure paths in tests.
func (s *Simulator) FailWith(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failAt, op)
		return
	}
	s.failAt[op] = err
}

func (s *Simulator) injected(op string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failAt[op]
}

// FindBusyIntervals returns seeded blocks and created events intersecting
// [start, end), ascending by start.
func (s *Simulator) FindBusyIntervals(ctx context.Context, start, end time.Time, calendarID string) ([]BusyInterval, error) {
	if err := s.injected("find_busy"); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var busy []BusyInterval
	day := time.Date(start.In(s.loc).Year(), start.In(s.loc).Month(), start.In(s.loc).Day(), 0, 0, 0, 0, s.loc)
	for day.Before(end) {
		for _, sb := range s.seed {
			if !sb.weekdays[day.Weekday()] {
				continue
			}
			iv := BusyInterval{
				Start: day.Add(sb.start),
				End:   day.Add(sb.end),
			}
			if iv.Overlaps(start, end) {
				busy = append(busy, iv)
			}
		}
		day = day.AddDate(0, 0, 1)
	}

	for _, ev := range s.events {
		if ev.CalendarID != calendarID {
			continue
		}
		iv := BusyInterval{Start: ev.Start, End: ev.End}
		if iv.Overlaps(start, end) {
			busy = append(busy, iv)
		}
	}

	sort.Slice(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })
	return busy, nil
}

// CreateEvent records the event in memory and returns a generated id.
func (s *Simulator) CreateEvent(ctx context.Context, req CreateEventRequest) (string, error) {
	if err := s.injected("create_event"); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ev := Event{
		ID:          shortuuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Attendee:    req.Attendee,
		CalendarID:  req.CalendarID,
		Start:       req.Start,
		End:         req.End,
	}
	s.events = append(s.events, ev)

	slog.Debug("simulated event created",
		"event_id", ev.ID,
		"title", ev.Title,
		"start", ev.Start.Format(time.RFC3339))

	return ev.ID, nil
}

// ListUpcomingEvents returns created events starting after now.
func (s *Simulator) ListUpcomingEvents(ctx context.Context, now time.Time, limit int, calendarID string) ([]Event, error) {
	if err := s.injected("list_events"); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Event
	for _, ev := range s.events {
		if ev.CalendarID == calendarID && ev.Start.After(now) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// EventCount reports how many events have been created, for tests.
func (s *Simulator) EventCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
