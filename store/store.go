package store

import (
	"context"
	"database/sql"

	"github.com/hrygo/schedsense/internal/profile"
)

// Driver is an interface for database access. Implementations live under
// store/db.
type Driver interface {
	GetDB() *sql.DB
	Migrate(ctx context.Context) error
	Close() error

	UpsertSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	DeleteSession(ctx context.Context, id string) error
	ListSessionIDs(ctx context.Context) ([]string, error)
	ListExpiredSessionIDs(ctx context.Context, updatedBefore int64) ([]string, error)

	CreateEvent(ctx context.Context, event *Event) error
	ListEventsBetween(ctx context.Context, calendarID string, startTs, endTs int64) ([]*Event, error)
	ListUpcomingEvents(ctx context.Context, calendarID string, afterTs int64, limit int) ([]*Event, error)
}

// Store provides database access to sessions and calendar events.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) Close() error {
	return s.driver.Close()
}
