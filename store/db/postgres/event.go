package postgres

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hrygo/schedsense/store"
)

func (d *DB) CreateEvent(ctx context.Context, event *store.Event) error {
	stmt := `
		INSERT INTO event (id, calendar_id, title, description, attendee_contact, start_ts, end_ts, created_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := d.db.ExecContext(ctx, stmt,
		event.ID,
		event.CalendarID,
		event.Title,
		event.Description,
		event.AttendeeContact,
		event.StartTs,
		event.EndTs,
		event.CreatedTs,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to create event %s", event.ID)
	}
	return nil
}

func (d *DB) ListEventsBetween(ctx context.Context, calendarID string, startTs, endTs int64) ([]*store.Event, error) {
	stmt := `
		SELECT id, calendar_id, title, description, attendee_contact, start_ts, end_ts, created_ts
		FROM event
		WHERE calendar_id = $1 AND start_ts < $2 AND end_ts > $3
		ORDER BY start_ts ASC`
	return d.queryEvents(ctx, stmt, calendarID, endTs, startTs)
}

func (d *DB) ListUpcomingEvents(ctx context.Context, calendarID string, afterTs int64, limit int) ([]*store.Event, error) {
	stmt := `
		SELECT id, calendar_id, title, description, attendee_contact, start_ts, end_ts, created_ts
		FROM event
		WHERE calendar_id = $1 AND start_ts > $2
		ORDER BY start_ts ASC
		LIMIT $3`
	return d.queryEvents(ctx, stmt, calendarID, afterTs, limit)
}

func (d *DB) queryEvents(ctx context.Context, stmt string, args ...any) ([]*store.Event, error) {
	rows, err := d.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list events")
	}
	defer rows.Close()

	var events []*store.Event
	for rows.Next() {
		event := &store.Event{}
		if err := rows.Scan(
			&event.ID,
			&event.CalendarID,
			&event.Title,
			&event.Description,
			&event.AttendeeContact,
			&event.StartTs,
			&event.EndTs,
			&event.CreatedTs,
		); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
