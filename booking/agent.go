package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hrygo/schedsense/calendar"
)

// Understander is the language understanding boundary. Implementations may
// be model-backed or rule-based; both are selected by configuration. An
// implementation should prefer returning (IntentGeneral, nil) over an
// error, but the agent tolerates errors by substituting the deterministic
// fallback for the failing call.
type Understander interface {
	ClassifyIntent(ctx context.Context, message string, s *Session) (Intent, error)
	ExtractFields(ctx context.Context, message string, now time.Time) (RawFields, error)
}

// TurnObserver receives per-turn signals. The metrics package provides a
// Prometheus-backed implementation; NopObserver discards everything.
type TurnObserver interface {
	ObserveTurn(intent Intent, prompt PromptKind, elapsed time.Duration)
	ObserveTransition(from, to State)
	ObserveBookingConfirmed()
	ObserveProviderError(op string)
	ObserveUnderstanderFallback(call string)
}

// NopObserver is a TurnObserver that does nothing.
type NopObserver struct{}

func (NopObserver) ObserveTurn(Intent, PromptKind, time.Duration) {}
func (NopObserver) ObserveTransition(State, State)                {}
func (NopObserver) ObserveBookingConfirmed()                      {}
func (NopObserver) ObserveProviderError(string)                   {}
func (NopObserver) ObserveUnderstanderFallback(string)            {}

// Agent processes conversation turns end to end: load session, understand
// the message, normalize fields, step the state machine, persist. One
// agent serves all sessions; per-session exclusion lives in the session
// manager.
type Agent struct {
	sessions     *SessionManager
	understander Understander
	fallback     Understander
	normalizer   *Normalizer
	machine      *Machine
	observer     TurnObserver
	logger       *slog.Logger
	now          func() time.Time
}

func NewAgent(sessions *SessionManager, understander, fallback Understander, normalizer *Normalizer, machine *Machine, observer TurnObserver, logger *slog.Logger) *Agent {
	if observer == nil {
		observer = NopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if fallback == nil {
		fallback = understander
	}
	return &Agent{
		sessions:     sessions,
		understander: understander,
		fallback:     fallback,
		normalizer:   normalizer,
		machine:      machine,
		observer:     observer,
		logger:       logger,
		now:          time.Now,
	}
}

// ProcessMessage runs one turn for the given session. A provider failure
// does not corrupt the session: only fields normalized before the failing
// call survive, and the returned result asks the user to retry.
func (a *Agent) ProcessMessage(ctx context.Context, sessionID, message string) (*TurnResult, error) {
	started := a.now()
	var result *TurnResult

	err := a.sessions.WithSession(ctx, sessionID, started, func(s *Session) (*Session, error) {
		staged := s.Clone()
		before := staged.State

		intent := a.classify(ctx, message, staged)
		raw := a.extract(ctx, message, started)
		staged.Fields.Merge(a.normalizer.Normalize(raw, started))

		res, stepErr := a.machine.Step(ctx, staged, intent, message, started)
		result = res

		if stepErr != nil {
			if errors.Is(stepErr, calendar.ErrProviderUnavailable) {
				a.logger.Warn("calendar provider unavailable, turn aborted",
					"session_id", sessionID, "error", stepErr)
				// Only the confirm rule creates events; everything else
				// that touches the provider is an availability query.
				op := "find_busy"
				if staged.State == StateConfirmingSelection && staged.Selected != nil {
					op = "create_event"
				}
				a.observer.ObserveProviderError(op)
				// Keep normalized fields, drop everything else the
				// turn staged.
				commit := s.Clone()
				commit.Fields = staged.Fields
				result = a.machine.result(commit, &turnInput{intent: intent}, PromptRetryProvider)
				return commit, nil
			}
			return nil, stepErr
		}

		if before != staged.State {
			a.observer.ObserveTransition(before, staged.State)
		}
		if res.Confirmed && !s.Confirmed {
			a.observer.ObserveBookingConfirmed()
		}
		return staged, nil
	})
	if err != nil {
		return nil, err
	}

	a.observer.ObserveTurn(result.Intent, result.Prompt, a.now().Sub(started))
	return result, nil
}

func (a *Agent) classify(ctx context.Context, message string, s *Session) Intent {
	intent, err := a.understander.ClassifyIntent(ctx, message, s)
	if err == nil {
		return intent
	}
	a.logger.Warn("intent classification failed, using fallback",
		"session_id", s.ID, "error", err)
	a.observer.ObserveUnderstanderFallback("classify_intent")
	intent, err = a.fallback.ClassifyIntent(ctx, message, s)
	if err != nil {
		return IntentGeneral
	}
	return intent
}

func (a *Agent) extract(ctx context.Context, message string, now time.Time) RawFields {
	raw, err := a.understander.ExtractFields(ctx, message, now)
	if err == nil {
		return raw
	}
	a.logger.Warn("field extraction failed, using fallback", "error", err)
	a.observer.ObserveUnderstanderFallback("extract_fields")
	raw, err = a.fallback.ExtractFields(ctx, message, now)
	if err != nil {
		return RawFields{}
	}
	return raw
}

// Sessions exposes the session manager for admin surfaces.
func (a *Agent) Sessions() *SessionManager { return a.sessions }
