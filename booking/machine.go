package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hrygo/schedsense/calendar"
)

// DefaultSearchWindowDays is how far past the requested date the
// availability search extends.
const DefaultSearchWindowDays = 7

// DefaultMaxSlotsDisplayed caps how many slots a turn presents; the full
// engine result (up to MaxRetainedSlots) stays on the session.
const DefaultMaxSlotsDisplayed = 3

// MachineConfig tunes one state machine instance.
type MachineConfig struct {
	CalendarID             string
	DefaultDurationMinutes int
	MaxSlotsDisplayed      int
	SearchWindowDays       int
}

// TurnResult is what one processed turn hands to the presentation layer.
// It is a structured record; composing it into prose is not this
// package's concern.
type TurnResult struct {
	SessionID string          `json:"session_id"`
	State     State           `json:"state"`
	Intent    Intent          `json:"intent"`
	Fields    ExtractedFields `json:"fields"`
	Slots     []calendar.Slot `json:"slots,omitempty"`
	Selected  *calendar.Slot  `json:"selected,omitempty"`
	Confirmed bool            `json:"confirmed"`
	EventID   string          `json:"event_id,omitempty"`
	Prompt    PromptKind      `json:"prompt"`
}

// turnInput carries everything one transition needs.
type turnInput struct {
	ctx     context.Context
	message string
	intent  Intent
	now     time.Time
}

type transitionRule struct {
	name  string
	match func(s *Session, in *turnInput) bool
	apply func(s *Session, in *turnInput) (*TurnResult, error)
}

// Machine advances a session one turn at a time. It mutates only the
// session it is handed and makes at most one calendar-provider call per
// turn (findBusyIntervals while gathering availability, createEvent on a
// positive confirmation).
type Machine struct {
	engine   *calendar.Engine
	provider calendar.Provider
	config   MachineConfig
	logger   *slog.Logger
	rules    []transitionRule
}

func NewMachine(engine *calendar.Engine, provider calendar.Provider, config MachineConfig, logger *slog.Logger) *Machine {
	if config.MaxSlotsDisplayed <= 0 {
		config.MaxSlotsDisplayed = DefaultMaxSlotsDisplayed
	}
	if config.SearchWindowDays <= 0 {
		config.SearchWindowDays = DefaultSearchWindowDays
	}
	if config.DefaultDurationMinutes <= 0 {
		config.DefaultDurationMinutes = DefaultDurationMinutes
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &Machine{
		engine:   engine,
		provider: provider,
		config:   config,
		logger:   logger,
	}
	m.rules = []transitionRule{
		{
			name: "greet",
			match: func(s *Session, in *turnInput) bool {
				return s.State == StateGreeting && in.intent == IntentGreeting
			},
			apply: m.applyGreeting,
		},
		{
			name: "collect",
			match: func(s *Session, in *turnInput) bool {
				if in.intent == IntentBookMeeting || in.intent == IntentCheckAvailability {
					return true
				}
				return s.State == StateCollectingInfo && in.intent != IntentGeneral
			},
			apply: m.applyCollect,
		},
		{
			name: "select",
			match: func(s *Session, in *turnInput) bool {
				return in.intent == IntentSelectSlot || s.State == StateShowingSlots
			},
			apply: m.applySelect,
		},
		{
			name: "confirm",
			match: func(s *Session, in *turnInput) bool {
				return in.intent == IntentConfirmBooking || s.State == StateConfirmingSelection
			},
			apply: m.applyConfirm,
		},
		{
			name:  "general",
			match: func(*Session, *turnInput) bool { return true },
			apply: m.applyGeneral,
		},
	}
	return m
}

// Step evaluates the transition rules in priority order against the
// session and applies the first match. The caller is expected to have
// merged normalized fields into the session before stepping. Step mutates
// s in place; the only error it returns wraps
// calendar.ErrProviderUnavailable, and in that case s must be discarded
// by the caller (normalized fields aside, nothing from the turn is kept).
func (m *Machine) Step(ctx context.Context, s *Session, intent Intent, message string, now time.Time) (*TurnResult, error) {
	in := &turnInput{ctx: ctx, message: message, intent: intent, now: now}
	for _, rule := range m.rules {
		if !rule.match(s, in) {
			continue
		}
		res, err := rule.apply(s, in)
		if res != nil {
			m.logger.Debug("turn transition",
				"session_id", s.ID,
				"rule", rule.name,
				"intent", string(intent),
				"state", string(res.State),
				"prompt", string(res.Prompt))
		}
		return res, err
	}
	// Unreachable: the general rule matches everything.
	return m.result(s, in, PromptHelp), nil
}

func (m *Machine) result(s *Session, in *turnInput, prompt PromptKind) *TurnResult {
	display := s.Slots
	if len(display) > m.config.MaxSlotsDisplayed {
		display = display[:m.config.MaxSlotsDisplayed]
	}
	return &TurnResult{
		SessionID: s.ID,
		State:     s.State,
		Intent:    in.intent,
		Fields:    s.Fields,
		Slots:     display,
		Selected:  s.Selected,
		Confirmed: s.Confirmed,
		EventID:   s.EventID,
		Prompt:    prompt,
	}
}

func (m *Machine) applyGreeting(s *Session, in *turnInput) (*TurnResult, error) {
	s.State = StateCollectingInfo
	return m.result(s, in, PromptGreeting), nil
}

func (m *Machine) applyCollect(s *Session, in *turnInput) (*TurnResult, error) {
	if s.Fields.Date == nil {
		s.State = StateCollectingInfo
		return m.result(s, in, PromptAskDate), nil
	}

	slots, err := m.findSlots(in.ctx, s)
	if err != nil {
		return m.result(s, in, PromptRetryProvider), err
	}
	if len(slots) == 0 {
		m.logger.Info("no slots in search window",
			"session_id", s.ID,
			"date", s.Fields.Date.Format("2006-01-02"),
			"error", ErrNoAvailability)
		s.State = StateCollectingInfo
		s.Slots = nil
		return m.result(s, in, PromptNoAvailability), nil
	}
	s.RetainSlots(slots)
	s.Selected = nil
	s.State = StateShowingSlots
	return m.result(s, in, PromptShowSlots), nil
}

func (m *Machine) applySelect(s *Session, in *turnInput) (*TurnResult, error) {
	idx, err := ResolveSelection(in.message, len(s.Slots))
	if err != nil {
		s.State = StateShowingSlots
		return m.result(s, in, PromptClarifySelection), nil
	}
	sel := s.Slots[idx]
	s.Selected = &sel
	s.State = StateConfirmingSelection
	return m.result(s, in, PromptConfirmSelection), nil
}

func (m *Machine) applyConfirm(s *Session, in *turnInput) (*TurnResult, error) {
	if s.Selected == nil {
		m.logger.Warn("confirmation reached without a stored selection",
			"session_id", s.ID, "state", string(s.State), "error", ErrInconsistentState)
		s.State = StateShowingSlots
		s.Confirmed = false
		return m.result(s, in, PromptSelectionLost), nil
	}
	if !ResolveConfirmation(in.message) {
		s.State = StateShowingSlots
		s.Selected = nil
		return m.result(s, in, PromptShowSlots), nil
	}

	eventID, err := m.provider.CreateEvent(in.ctx, calendar.CreateEventRequest{
		Title:       s.Fields.EffectiveTitle(),
		Description: s.Fields.Description,
		Start:       s.Selected.Start,
		End:         s.Selected.End,
		Attendee:    s.Fields.AttendeeContact,
		CalendarID:  m.config.CalendarID,
	})
	if err != nil {
		return m.result(s, in, PromptRetryProvider),
			fmt.Errorf("create event for session %s: %w", s.ID, err)
	}
	s.Confirmed = true
	s.EventID = eventID
	s.State = StateCompleted
	return m.result(s, in, PromptBooked), nil
}

func (m *Machine) applyGeneral(s *Session, in *turnInput) (*TurnResult, error) {
	return m.result(s, in, PromptHelp), nil
}

// findSlots queries the provider for busy intervals over the search
// window past the resolved date and sweeps them into candidate slots.
// A time-of-day hint narrows the working window for this query only.
func (m *Machine) findSlots(ctx context.Context, s *Session) ([]calendar.Slot, error) {
	loc := m.engine.Location()
	date := s.Fields.Date.In(loc)
	rangeStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	// The engine treats the range end day as inclusive.
	rangeEnd := rangeStart.AddDate(0, 0, m.config.SearchWindowDays-1)

	busy, err := m.provider.FindBusyIntervals(ctx, rangeStart, rangeEnd.AddDate(0, 0, 1), m.config.CalendarID)
	if err != nil {
		return nil, fmt.Errorf("find busy intervals for session %s: %w", s.ID, err)
	}

	hours := hintWindow(s.Fields.TimeHint, m.engine.WorkingHours())
	duration := s.Fields.EffectiveDuration(m.config.DefaultDurationMinutes)
	return m.engine.FindSlotsInWindow(rangeStart, rangeEnd, duration, hours, calendar.BucketByDay(busy, loc)), nil
}

// hintWindow narrows the daily working window by a coarse time-of-day
// preference. An explicit "15:04" hint moves the window open to that hour.
// Hints that would empty the window are ignored.
func hintWindow(hint string, base calendar.HourRange) calendar.HourRange {
	out := base
	switch hint {
	case "":
		return base
	case "morning":
		if base.End > 12 {
			out.End = 12
		}
	case "afternoon":
		if base.Start < 12 {
			out.Start = 12
		}
	case "evening":
		if base.Start < 17 {
			out.Start = 17
		}
	default:
		var h, min int
		if _, err := fmt.Sscanf(hint, "%d:%d", &h, &min); err == nil && h > base.Start {
			out.Start = h
		}
	}
	if out.Start >= out.End {
		return base
	}
	return out
}
