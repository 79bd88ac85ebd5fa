package sqlite

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hrygo/schedsense/store"
)

func (d *DB) UpsertSession(ctx context.Context, session *store.Session) error {
	stmt := `
		INSERT INTO session (id, payload, created_ts, updated_ts)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET payload = excluded.payload, updated_ts = excluded.updated_ts`
	if _, err := d.db.ExecContext(ctx, stmt, session.ID, session.Payload, session.CreatedTs, session.UpdatedTs); err != nil {
		return errors.Wrapf(err, "failed to upsert session %s", session.ID)
	}
	return nil
}

func (d *DB) GetSession(ctx context.Context, id string) (*store.Session, error) {
	stmt := `SELECT id, payload, created_ts, updated_ts FROM session WHERE id = ?`
	session := &store.Session{}
	err := d.db.QueryRowContext(ctx, stmt, id).Scan(
		&session.ID,
		&session.Payload,
		&session.CreatedTs,
		&session.UpdatedTs,
	)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (d *DB) DeleteSession(ctx context.Context, id string) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM session WHERE id = ?`, id); err != nil {
		return errors.Wrapf(err, "failed to delete session %s", id)
	}
	return nil
}

func (d *DB) ListSessionIDs(ctx context.Context) ([]string, error) {
	return d.querySessionIDs(ctx, `SELECT id FROM session ORDER BY updated_ts DESC`)
}

func (d *DB) ListExpiredSessionIDs(ctx context.Context, updatedBefore int64) ([]string, error) {
	return d.querySessionIDs(ctx, `SELECT id FROM session WHERE updated_ts < ?`, updatedBefore)
}

func (d *DB) querySessionIDs(ctx context.Context, stmt string, args ...any) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sessions")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
