package store

import (
	"context"
)

// Session is a persisted conversation session row. Payload holds the
// JSON-encoded conversational state; the store does not interpret it.
type Session struct {
	ID        string
	Payload   []byte
	CreatedTs int64
	UpdatedTs int64
}

func (s *Store) UpsertSession(ctx context.Context, session *Session) error {
	return s.driver.UpsertSession(ctx, session)
}

func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	return s.driver.GetSession(ctx, id)
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	return s.driver.DeleteSession(ctx, id)
}

func (s *Store) ListSessionIDs(ctx context.Context) ([]string, error) {
	return s.driver.ListSessionIDs(ctx)
}

func (s *Store) ListExpiredSessionIDs(ctx context.Context, updatedBefore int64) ([]string, error) {
	return s.driver.ListExpiredSessionIDs(ctx, updatedBefore)
}
