package nlu

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/schedsense/booking"
)

func TestRuleUnderstander_ClassifyIntent(t *testing.T) {
	ctx := context.Background()
	r := NewRuleUnderstander()

	tests := []struct {
		message string
		want    booking.Intent
	}{
		{"hello", booking.IntentGreeting},
		{"Hi there!", booking.IntentGreeting},
		{"good morning", booking.IntentGreeting},
		{"I want to book a meeting", booking.IntentBookMeeting},
		{"schedule an appointment for me", booking.IntentBookMeeting},
		{"can we set up a call", booking.IntentBookMeeting},
		{"when are you free next week", booking.IntentCheckAvailability},
		{"what's your availability", booking.IntentCheckAvailability},
		{"option 2 please", booking.IntentSelectSlot},
		{"the first one", booking.IntentSelectSlot},
		{"that one looks good", booking.IntentSelectSlot},
		{"yes please", booking.IntentConfirmBooking},
		{"cancel the booking", booking.IntentCancelBooking},
		{"never mind", booking.IntentCancelBooking},
		{"can we do a different time", booking.IntentModifyBooking},
		{"reschedule to friday", booking.IntentModifyBooking},
		{"what's the weather like", booking.IntentGeneral},
		{"", booking.IntentGeneral},
	}
	for _, tt := range tests {
		got, err := r.ClassifyIntent(ctx, tt.message, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "message %q", tt.message)
	}
}

func TestRuleUnderstander_StateAwareClassification(t *testing.T) {
	ctx := context.Background()
	r := NewRuleUnderstander()
	now := time.Date(2026, 9, 4, 10, 0, 0, 0, time.UTC)

	confirming := booking.NewSession("s1", now)
	confirming.State = booking.StateConfirmingSelection

	showing := booking.NewSession("s2", now)
	showing.State = booking.StateShowingSlots

	// "yes" is a confirmation only when a selection is pending; elsewhere
	// it still reads as a confirmation by vocabulary, but "no" does not.
	got, err := r.ClassifyIntent(ctx, "yes", confirming)
	require.NoError(t, err)
	assert.Equal(t, booking.IntentConfirmBooking, got)

	got, err = r.ClassifyIntent(ctx, "no, something different", confirming)
	require.NoError(t, err)
	assert.Equal(t, booking.IntentConfirmBooking, got)

	// A bare index is a selection only while slots are on the table.
	got, err = r.ClassifyIntent(ctx, "2", showing)
	require.NoError(t, err)
	assert.Equal(t, booking.IntentSelectSlot, got)

	got, err = r.ClassifyIntent(ctx, "2", nil)
	require.NoError(t, err)
	assert.Equal(t, booking.IntentGeneral, got)

	// Booking vocabulary still wins outside the disambiguating states.
	got, err = r.ClassifyIntent(ctx, "book a meeting", showing)
	require.NoError(t, err)
	assert.Equal(t, booking.IntentBookMeeting, got)
}

func TestRuleUnderstander_ExtractFields(t *testing.T) {
	ctx := context.Background()
	r := NewRuleUnderstander()
	now := time.Date(2026, 9, 4, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		message string
		want    booking.RawFields
	}{
		{
			"book a meeting tomorrow morning",
			booking.RawFields{"date": "tomorrow", "time": "morning", "title": "Team Meeting"},
		},
		{
			"schedule a client call on 2026-09-10 at 2 pm",
			booking.RawFields{"date": "2026-09-10", "time": "2 pm", "title": "Client Meeting"},
		},
		{
			"a 90 minute interview on friday",
			booking.RawFields{"date": "friday", "duration": "90 minute", "title": "Interview"},
		},
		{
			"half an hour consultation on 9/15/2026",
			booking.RawFields{"date": "9/15/2026", "duration": "30 minutes", "title": "Consultation"},
		},
		{
			"next week in the afternoon, invite sam@example.com",
			booking.RawFields{"date": "next week", "time": "afternoon", "attendee_contact": "sam@example.com"},
		},
		{
			"around noon today for the standup",
			booking.RawFields{"date": "today", "time": "noon", "title": "Standup"},
		},
		{
			"thanks",
			booking.RawFields{},
		},
	}
	for _, tt := range tests {
		got, err := r.ExtractFields(ctx, tt.message, now)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "message %q", tt.message)
	}
}

func TestRuleUnderstander_TitleKeywordPrecedence(t *testing.T) {
	ctx := context.Background()
	r := NewRuleUnderstander()

	// "consultation call" must resolve to the more specific title.
	got, err := r.ExtractFields(ctx, "a consultation call", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "Consultation", got["title"])
}
