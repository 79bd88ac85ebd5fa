package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/hrygo/schedsense/calendar"
)

// CalendarProvider is the store-backed calendar variant: busy intervals
// and created events live in the events table. Store failures surface as
// calendar.ErrProviderUnavailable so the booking core treats them as "no
// data, report failure", never as a free calendar.
type CalendarProvider struct {
	store   *Store
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewCalendarProvider wraps the store. perSecond bounds provider calls
// across all sessions; zero disables the limit.
func NewCalendarProvider(store *Store, perSecond float64, logger *slog.Logger) *CalendarProvider {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if perSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(perSecond), int(perSecond)+1)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CalendarProvider{store: store, limiter: limiter, logger: logger}
}

func (p *CalendarProvider) wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", calendar.ErrProviderUnavailable, err)
	}
	return nil
}

func (p *CalendarProvider) FindBusyIntervals(ctx context.Context, start, end time.Time, calendarID string) ([]calendar.BusyInterval, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	rows, err := p.store.ListEventsBetween(ctx, calendarID, start.Unix(), end.Unix())
	if err != nil {
		p.logger.Error("failed to list events", "calendar_id", calendarID, "error", err)
		return nil, fmt.Errorf("%w: %v", calendar.ErrProviderUnavailable, err)
	}
	busy := make([]calendar.BusyInterval, 0, len(rows))
	for _, row := range rows {
		busy = append(busy, calendar.BusyInterval{
			Start: time.Unix(row.StartTs, 0),
			End:   time.Unix(row.EndTs, 0),
		})
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })
	return busy, nil
}

func (p *CalendarProvider) CreateEvent(ctx context.Context, req calendar.CreateEventRequest) (string, error) {
	if err := p.wait(ctx); err != nil {
		return "", err
	}
	event := &Event{
		ID:              uuid.NewString(),
		CalendarID:      req.CalendarID,
		Title:           req.Title,
		Description:     req.Description,
		AttendeeContact: req.Attendee,
		StartTs:         req.Start.Unix(),
		EndTs:           req.End.Unix(),
		CreatedTs:       time.Now().Unix(),
	}
	if err := p.store.CreateEvent(ctx, event); err != nil {
		p.logger.Error("failed to create event", "calendar_id", req.CalendarID, "error", err)
		return "", fmt.Errorf("%w: %v", calendar.ErrProviderUnavailable, err)
	}
	return event.ID, nil
}

func (p *CalendarProvider) ListUpcomingEvents(ctx context.Context, now time.Time, limit int, calendarID string) ([]calendar.Event, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	rows, err := p.store.ListUpcomingEvents(ctx, calendarID, now.Unix(), limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", calendar.ErrProviderUnavailable, err)
	}
	events := make([]calendar.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, calendar.Event{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			Attendee:    row.AttendeeContact,
			CalendarID:  row.CalendarID,
			Start:       time.Unix(row.StartTs, 0),
			End:         time.Unix(row.EndTs, 0),
		})
	}
	return events, nil
}
