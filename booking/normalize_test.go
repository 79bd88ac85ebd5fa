package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A Friday morning, used as "now" throughout.
var normalizeNow = time.Date(2026, 9, 4, 10, 30, 0, 0, time.UTC)

func TestResolveDate(t *testing.T) {
	n := NewNormalizer(time.UTC)

	tests := []struct {
		phrase   string
		expected string
		ok       bool
	}{
		{"today", "2026-09-04", true},
		{"Tomorrow", "2026-09-05", true},
		{"next week", "2026-09-11", true},
		{"monday", "2026-09-07", true},
		{"thursday", "2026-09-10", true},
		// Same weekday as now resolves a full week out, never today.
		{"friday", "2026-09-11", true},
		{"2026-10-01", "2026-10-01", true},
		{"10/01/2026", "2026-10-01", true},
		{"someday", "", false},
		{"", "", false},
		{"32/99/2026", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			d, err := n.ResolveDate(tt.phrase, normalizeNow)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrUnresolvableDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d.Format("2006-01-02"))
		})
	}
}

func TestResolveDate_WeekdayNeverInPast(t *testing.T) {
	n := NewNormalizer(time.UTC)
	for day := 0; day < 7; day++ {
		now := normalizeNow.AddDate(0, 0, day)
		for name := range weekdayNames {
			d, err := n.ResolveDate(name, now)
			require.NoError(t, err)
			assert.True(t, d.After(now.Truncate(24*time.Hour)),
				"resolving %q on %s yielded %s", name, now.Weekday(), d.Format("2006-01-02"))
		}
	}
}

func TestNormalize_MergesOnlyResolvedFields(t *testing.T) {
	n := NewNormalizer(time.UTC)

	fields := n.Normalize(RawFields{
		"date":     "tomorrow",
		"time":     "afternoon",
		"duration": "2 hours",
		"title":    "Client Meeting",
	}, normalizeNow)

	require.NotNil(t, fields.Date)
	assert.Equal(t, "2026-09-05", fields.Date.Format("2006-01-02"))
	assert.Equal(t, "afternoon", fields.TimeHint)
	assert.Equal(t, 120, fields.DurationMinutes)
	assert.Equal(t, "Client Meeting", fields.Title)

	// Unresolvable values stay unset rather than defaulting.
	fields = n.Normalize(RawFields{"date": "whenever works", "duration": "a while"}, normalizeNow)
	assert.Nil(t, fields.Date)
	assert.Zero(t, fields.DurationMinutes)

	fields = n.Normalize(nil, normalizeNow)
	assert.Nil(t, fields.Date)
}

func TestNormalizeTimeHint(t *testing.T) {
	tests := []struct {
		in  string
		out string
	}{
		{"morning", "morning"},
		{"Afternoon", "afternoon"},
		{"evening", "evening"},
		{"noon", "12:00"},
		{"3 pm", "15:00"},
		{"3:30 pm", "15:30"},
		{"10 am", "10:00"},
		{"12 am", "00:00"},
		{"12 pm", "12:00"},
		{"15:04", "15:04"},
		// A bare hour without am/pm is ambiguous and dropped.
		{"3", ""},
		{"25:00", ""},
		{"sometime", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.out, normalizeTimeHint(tt.in), "hint %q", tt.in)
	}
}

func TestParseDurationMinutes(t *testing.T) {
	tests := []struct {
		in  string
		out int
	}{
		{"90", 90},
		{"1 hour", 60},
		{"2 hours", 120},
		{"45 minutes", 45},
		{"30 mins", 30},
		{"1 hr", 60},
		{"0", 0},
		{"", 0},
		{"a while", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.out, parseDurationMinutes(tt.in), "duration %q", tt.in)
	}
}

func TestExtractedFields_Merge(t *testing.T) {
	d1 := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	f := ExtractedFields{Date: &d1, Title: "Meeting", DurationMinutes: 60}
	f.Merge(ExtractedFields{Date: &d2, TimeHint: "morning"})

	assert.Equal(t, d2, *f.Date)
	assert.Equal(t, "morning", f.TimeHint)
	assert.Equal(t, "Meeting", f.Title, "zero-value fields never erase")
	assert.Equal(t, 60, f.DurationMinutes)

	// Merging an empty update changes nothing.
	before := f
	f.Merge(ExtractedFields{})
	assert.Equal(t, before, f)
}

func TestEffectiveDefaults(t *testing.T) {
	var f ExtractedFields
	assert.Equal(t, "Meeting", f.EffectiveTitle())
	assert.Equal(t, 60*time.Minute, f.EffectiveDuration(0))
	assert.Equal(t, 45*time.Minute, f.EffectiveDuration(45))

	f.Title = "Standup"
	f.DurationMinutes = 15
	assert.Equal(t, "Standup", f.EffectiveTitle())
	assert.Equal(t, 15*time.Minute, f.EffectiveDuration(45))
}
