package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mondayStart returns a Monday at midnight in loc, far enough in the
// future that weekday math stays stable.
func mondayStart(loc *time.Location) time.Time {
	return time.Date(2026, 9, 7, 0, 0, 0, 0, loc) // Monday
}

func busyOn(day time.Time, startHour, startMin, endHour, endMin int) BusyInterval {
	return BusyInterval{
		Start: time.Date(day.Year(), day.Month(), day.Day(), startHour, startMin, 0, 0, day.Location()),
		End:   time.Date(day.Year(), day.Month(), day.Day(), endHour, endMin, 0, 0, day.Location()),
	}
}

func TestFindSlots_SweepAroundBusyInterval(t *testing.T) {
	loc := time.UTC
	engine := NewEngine(loc, WithWorkingHours(9, 17))
	day := mondayStart(loc)

	// One meeting 10:00-11:00; the first slot must end exactly when the
	// meeting starts and the second must start when it ends.
	busy := []BusyInterval{busyOn(day, 10, 0, 11, 0)}
	slots := engine.FindSlots(day, day, time.Hour, BucketByDay(busy, loc))

	require.NotEmpty(t, slots)
	assert.Equal(t, "09:00 AM", slots[0].StartLabel)
	assert.Equal(t, "10:00 AM", slots[0].EndLabel)
	assert.Equal(t, "11:00 AM", slots[1].StartLabel)
	assert.Equal(t, "12:00 PM", slots[1].EndLabel)
}

func TestFindSlots_FullDayWindow(t *testing.T) {
	loc := time.UTC
	engine := NewEngine(loc, WithWorkingHours(9, 17))
	day := mondayStart(loc)

	// An 8-hour meeting in an 8-hour window: exactly one slot spanning
	// the whole day.
	slots := engine.FindSlots(day, day, 8*time.Hour, nil)

	require.Len(t, slots, 1)
	assert.Equal(t, "09:00 AM", slots[0].StartLabel)
	assert.Equal(t, "05:00 PM", slots[0].EndLabel)
}

func TestFindSlots_DurationLongerThanWindow(t *testing.T) {
	loc := time.UTC
	engine := NewEngine(loc, WithWorkingHours(9, 17))
	day := mondayStart(loc)

	slots := engine.FindSlots(day, day, 9*time.Hour, nil)
	assert.Empty(t, slots)
}

func TestFindSlots_SkipsWeekends(t *testing.T) {
	loc := time.UTC
	engine := NewEngine(loc)
	// Saturday through Sunday.
	saturday := time.Date(2026, 9, 5, 0, 0, 0, 0, loc)
	sunday := saturday.AddDate(0, 0, 1)

	slots := engine.FindSlots(saturday, sunday, time.Hour, nil)
	assert.Empty(t, slots)

	// The following full week never lands on a weekend.
	slots = engine.FindSlots(saturday, saturday.AddDate(0, 0, 8), time.Hour, nil)
	for _, s := range slots {
		wd := s.Start.Weekday()
		assert.NotEqual(t, time.Saturday, wd)
		assert.NotEqual(t, time.Sunday, wd)
	}
}

func TestFindSlots_CustomNonWorkingDays(t *testing.T) {
	loc := time.UTC
	engine := NewEngine(loc, WithNonWorkingDays(time.Monday, time.Tuesday))
	day := mondayStart(loc)

	slots := engine.FindSlots(day, day.AddDate(0, 0, 1), time.Hour, nil)
	assert.Empty(t, slots)
}

func TestFindSlots_MaxSlotsCap(t *testing.T) {
	loc := time.UTC
	engine := NewEngine(loc)
	day := mondayStart(loc)

	// Two full work weeks of 1h slots would produce far more than 10.
	slots := engine.FindSlots(day, day.AddDate(0, 0, 13), time.Hour, nil)
	assert.Len(t, slots, DefaultMaxSlots)

	small := NewEngine(loc, WithMaxSlots(4))
	slots = small.FindSlots(day, day.AddDate(0, 0, 13), time.Hour, nil)
	assert.Len(t, slots, 4)
}

func TestFindSlots_NoSlotOverlapsBusy(t *testing.T) {
	loc := time.UTC
	engine := NewEngine(loc)
	day := mondayStart(loc)

	// Deliberately unsorted and overlapping.
	busy := []BusyInterval{
		busyOn(day, 14, 0, 15, 30),
		busyOn(day, 9, 30, 10, 15),
		busyOn(day, 10, 0, 11, 0),
	}
	slots := engine.FindSlots(day, day, 30*time.Minute, BucketByDay(busy, loc))

	require.NotEmpty(t, slots)
	for _, s := range slots {
		for _, b := range busy {
			assert.False(t, b.Overlaps(s.Start, s.End),
				"slot %s-%s overlaps busy %s-%s", s.StartLabel, s.EndLabel, b.Start, b.End)
		}
		assert.Equal(t, 30*time.Minute, s.End.Sub(s.Start))
	}
}

func TestFindSlots_BusyOutsideWindowIgnored(t *testing.T) {
	loc := time.UTC
	engine := NewEngine(loc, WithWorkingHours(9, 17))
	day := mondayStart(loc)

	// Before and after working hours; the window must not be truncated.
	busy := []BusyInterval{
		busyOn(day, 6, 0, 8, 0),
		busyOn(day, 18, 0, 20, 0),
	}
	slots := engine.FindSlots(day, day, 8*time.Hour, BucketByDay(busy, loc))

	require.Len(t, slots, 1)
	assert.Equal(t, "09:00 AM", slots[0].StartLabel)
}

func TestFindSlots_Idempotent(t *testing.T) {
	loc := time.UTC
	engine := NewEngine(loc)
	day := mondayStart(loc)
	busy := []BusyInterval{
		busyOn(day, 10, 0, 11, 0),
		busyOn(day.AddDate(0, 0, 1), 13, 0, 14, 0),
	}

	first := engine.FindSlots(day, day.AddDate(0, 0, 4), time.Hour, BucketByDay(busy, loc))
	second := engine.FindSlots(day, day.AddDate(0, 0, 4), time.Hour, BucketByDay(busy, loc))
	assert.Equal(t, first, second)
}

func TestFindSlots_InvalidBusyIntervalSkipped(t *testing.T) {
	loc := time.UTC
	engine := NewEngine(loc)
	day := mondayStart(loc)

	inverted := BusyInterval{
		Start: time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, loc),
		End:   time.Date(day.Year(), day.Month(), day.Day(), 11, 0, 0, 0, loc),
	}
	require.Error(t, inverted.Validate())

	slots := engine.FindSlots(day, day, 8*time.Hour, BucketByDay([]BusyInterval{inverted}, loc))
	assert.Len(t, slots, 1, "invalid interval must not truncate the window")
}

func TestFindSlotsInWindow_NarrowedHours(t *testing.T) {
	loc := time.UTC
	engine := NewEngine(loc)
	day := mondayStart(loc)

	slots := engine.FindSlotsInWindow(day, day, time.Hour, HourRange{Start: 13, End: 17}, nil)
	require.NotEmpty(t, slots)
	assert.Equal(t, "01:00 PM", slots[0].StartLabel)
}

func TestBucketByDay_SpanningMidnight(t *testing.T) {
	loc := time.UTC
	day := mondayStart(loc)
	overnight := BusyInterval{
		Start: time.Date(day.Year(), day.Month(), day.Day(), 22, 0, 0, 0, loc),
		End:   time.Date(day.Year(), day.Month(), day.Day()+1, 2, 0, 0, 0, loc),
	}

	byDay := BucketByDay([]BusyInterval{overnight}, loc)
	assert.Len(t, byDay(day), 1)
	assert.Len(t, byDay(day.AddDate(0, 0, 1)), 1)
	assert.Empty(t, byDay(day.AddDate(0, 0, 2)))
}
