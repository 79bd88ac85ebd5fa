package booking

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// SessionBackend persists sessions. The in-memory backend below is the
// default; the store package provides a SQL-backed implementation.
type SessionBackend interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	// ListExpired returns the ids of sessions idle longer than timeout at now.
	ListExpired(ctx context.Context, now time.Time, timeout time.Duration) ([]string, error)
	// ListIDs returns all live session ids.
	ListIDs(ctx context.Context) ([]string, error)
}

// MemoryBackend keeps sessions in a map guarded by a RWMutex.
type MemoryBackend struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{sessions: make(map[string]*Session)}
}

func (m *MemoryBackend) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (m *MemoryBackend) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryBackend) ListExpired(_ context.Context, now time.Time, timeout time.Duration) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id, s := range m.sessions {
		if s.ExpiredAt(now, timeout) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *MemoryBackend) ListIDs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}

// SessionManager serializes access per session id. Concurrent turns for
// different sessions proceed in parallel; turns for the same session run
// one at a time in arrival order at the lock.
type SessionManager struct {
	backend SessionBackend
	logger  *slog.Logger

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewSessionManager(backend SessionBackend, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		backend: backend,
		logger:  logger,
		locks:   make(map[string]*sessionLock),
	}
}

// Backend exposes the underlying store, for cleanup and admin surfaces.
func (sm *SessionManager) Backend() SessionBackend { return sm.backend }

func (sm *SessionManager) acquire(id string) *sessionLock {
	sm.mu.Lock()
	l, ok := sm.locks[id]
	if !ok {
		l = &sessionLock{}
		sm.locks[id] = l
	}
	l.refs++
	sm.mu.Unlock()
	l.mu.Lock()
	return l
}

func (sm *SessionManager) release(id string, l *sessionLock) {
	l.mu.Unlock()
	sm.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(sm.locks, id)
	}
	sm.mu.Unlock()
}

// WithSession loads (or creates) the session for id, runs fn under the
// per-session lock, and persists the session fn returns. Returning a nil
// session from fn leaves the stored session untouched.
func (sm *SessionManager) WithSession(ctx context.Context, id string, now time.Time, fn func(s *Session) (*Session, error)) error {
	l := sm.acquire(id)
	defer sm.release(id, l)

	s, err := sm.backend.Get(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		s = NewSession(id, now)
	} else if err != nil {
		return err
	}

	next, fnErr := fn(s)
	if next != nil {
		next.UpdatedAt = now
		if err := sm.backend.Save(ctx, next); err != nil {
			sm.logger.Error("session save failed", "session_id", id, "error", err)
			return err
		}
	}
	return fnErr
}

// Remove deletes a session under its lock.
func (sm *SessionManager) Remove(ctx context.Context, id string) error {
	l := sm.acquire(id)
	defer sm.release(id, l)
	return sm.backend.Delete(ctx, id)
}

// RemoveExpired deletes the session only if it is still idle past timeout
// once the per-session lock is held. A turn that refreshed the session
// between the expiry listing and this call keeps it alive. Returns whether
// the session was deleted.
func (sm *SessionManager) RemoveExpired(ctx context.Context, id string, now time.Time, timeout time.Duration) (bool, error) {
	l := sm.acquire(id)
	defer sm.release(id, l)

	s, err := sm.backend.Get(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !s.ExpiredAt(now, timeout) {
		return false, nil
	}
	if err := sm.backend.Delete(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}
