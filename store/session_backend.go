package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/schedsense/booking"
)

// SessionBackend adapts the SQL store to the booking session interface.
// The conversational state travels as an opaque JSON payload; row
// timestamps drive the expiry sweep.
type SessionBackend struct {
	store *Store
}

func NewSessionBackend(store *Store) *SessionBackend {
	return &SessionBackend{store: store}
}

func (b *SessionBackend) Get(ctx context.Context, id string) (*booking.Session, error) {
	row, err := b.store.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrSessionNotFound
		}
		return nil, errors.Wrapf(err, "failed to get session %s", id)
	}
	var s booking.Session
	if err := json.Unmarshal(row.Payload, &s); err != nil {
		return nil, errors.Wrapf(err, "failed to decode session %s", id)
	}
	return &s, nil
}

func (b *SessionBackend) Save(ctx context.Context, s *booking.Session) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return errors.Wrapf(err, "failed to encode session %s", s.ID)
	}
	return b.store.UpsertSession(ctx, &Session{
		ID:        s.ID,
		Payload:   payload,
		CreatedTs: s.CreatedAt.Unix(),
		UpdatedTs: s.UpdatedAt.Unix(),
	})
}

func (b *SessionBackend) Delete(ctx context.Context, id string) error {
	return b.store.DeleteSession(ctx, id)
}

func (b *SessionBackend) ListExpired(ctx context.Context, now time.Time, timeout time.Duration) ([]string, error) {
	if timeout <= 0 {
		return nil, nil
	}
	return b.store.ListExpiredSessionIDs(ctx, now.Add(-timeout).Unix())
}

func (b *SessionBackend) ListIDs(ctx context.Context) ([]string, error) {
	return b.store.ListSessionIDs(ctx)
}
