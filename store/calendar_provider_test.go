package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/schedsense/calendar"
	"github.com/hrygo/schedsense/store"
)

func TestCalendarProvider_CreateThenFindBusy(t *testing.T) {
	ctx := context.Background()
	provider := store.NewCalendarProvider(newTestStore(t), 0, nil)

	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	id, err := provider.CreateEvent(ctx, calendar.CreateEventRequest{
		Title:      "Interview",
		Attendee:   "sam@example.com",
		CalendarID: "primary",
		Start:      start,
		End:        start.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	dayStart := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	busy, err := provider.FindBusyIntervals(ctx, dayStart, dayStart.AddDate(0, 0, 1), "primary")
	require.NoError(t, err)
	require.Len(t, busy, 1)
	assert.True(t, busy[0].Start.Equal(start))
	assert.True(t, busy[0].End.Equal(start.Add(time.Hour)))

	// Other calendars stay empty.
	busy, err = provider.FindBusyIntervals(ctx, dayStart, dayStart.AddDate(0, 0, 1), "other")
	require.NoError(t, err)
	assert.Empty(t, busy)
}

func TestCalendarProvider_ListUpcomingEvents(t *testing.T) {
	ctx := context.Background()
	provider := store.NewCalendarProvider(newTestStore(t), 0, nil)

	base := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := provider.CreateEvent(ctx, calendar.CreateEventRequest{
			Title:      "Standup",
			CalendarID: "primary",
			Start:      base.AddDate(0, 0, i),
			End:        base.AddDate(0, 0, i).Add(30 * time.Minute),
		})
		require.NoError(t, err)
	}

	events, err := provider.ListUpcomingEvents(ctx, base.Add(time.Hour), 10, "primary")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, events[0].Start.Before(events[1].Start))
	assert.Equal(t, "Standup", events[0].Title)
	assert.Equal(t, "primary", events[0].CalendarID)

	events, err = provider.ListUpcomingEvents(ctx, base.Add(time.Hour), 1, "primary")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
