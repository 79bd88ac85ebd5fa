package booking

import (
	"time"

	"github.com/hrygo/schedsense/calendar"
)

// MaxRetainedSlots bounds the slot list kept on a session between turns.
const MaxRetainedSlots = 10

// Session is the persisted state of one ongoing booking conversation,
// keyed by an opaque identifier. It is owned by the session store and
// mutated only through state-machine transitions while the per-session
// lock is held.
type Session struct {
	ID        string          `json:"id"`
	State     State           `json:"state"`
	Fields    ExtractedFields `json:"fields"`
	Slots     []calendar.Slot `json:"slots,omitempty"` // last presented, <= MaxRetainedSlots
	Selected  *calendar.Slot  `json:"selected,omitempty"`
	Confirmed bool            `json:"confirmed"`
	EventID   string          `json:"event_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewSession creates a fresh session in the greeting state.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		State:     StateGreeting,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy. Turns stage their mutations on a clone and
// commit it only when the transition succeeds, so a failed provider call
// never leaves partial state behind.
func (s *Session) Clone() *Session {
	cp := *s
	if s.Fields.Date != nil {
		d := *s.Fields.Date
		cp.Fields.Date = &d
	}
	if s.Slots != nil {
		cp.Slots = make([]calendar.Slot, len(s.Slots))
		copy(cp.Slots, s.Slots)
	}
	if s.Selected != nil {
		sel := *s.Selected
		cp.Selected = &sel
	}
	return &cp
}

// RetainSlots stores the presented slot list, capped at MaxRetainedSlots.
func (s *Session) RetainSlots(slots []calendar.Slot) {
	if len(slots) > MaxRetainedSlots {
		slots = slots[:MaxRetainedSlots]
	}
	s.Slots = make([]calendar.Slot, len(slots))
	copy(s.Slots, slots)
}

// ExpiredAt reports whether the session's idle time exceeds timeout at now.
func (s *Session) ExpiredAt(now time.Time, timeout time.Duration) bool {
	return timeout > 0 && now.Sub(s.UpdatedAt) > timeout
}
