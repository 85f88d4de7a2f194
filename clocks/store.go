// Package clocks records clock-in/clock-out events and serves them back.
//
// Events are append-only. The only write is Toggle, which reads the user's
// last event and appends the opposite status; the pgx Store runs that pair
// under a per-user advisory lock so concurrent toggles cannot both observe
// the same prior state.
package clocks

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/user/timemanager-go/apperror"
	"github.com/user/timemanager-go/db"
	"github.com/user/timemanager-go/domain"
)

// Window bounds an event query. Both ends are inclusive; nil means unbounded.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// Store is the event store collaborator.
type Store interface {
	// Append writes a new event stamped at.
	Append(ctx context.Context, userID int64, status bool, at time.Time) (*domain.ClockEvent, error)
	// Last returns the most recent event, or nil when the user has none.
	Last(ctx context.Context, userID int64) (*domain.ClockEvent, error)
	// Query returns the user's events inside w in ascending time order.
	Query(ctx context.Context, userID int64, w Window) ([]domain.ClockEvent, error)
	// Serialize runs fn with a Store whose calls are serialized against
	// every other Serialize for the same user.
	Serialize(ctx context.Context, userID int64, fn func(Store) error) error
}

// txStarter is satisfied by *pgxpool.Pool.
type txStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PgStore is the PostgreSQL Store over the clock_events table.
type PgStore struct {
	db   db.Querier
	pool txStarter
}

// NewPgStore creates a PgStore. pool is typically a *pgxpool.Pool.
func NewPgStore(pool interface {
	db.Querier
	txStarter
}) *PgStore {
	return &PgStore{db: pool, pool: pool}
}

const eventColumns = `id, user_id, status, time`

func scanEvent(row pgx.Row) (*domain.ClockEvent, error) {
	var e domain.ClockEvent
	if err := row.Scan(&e.ID, &e.UserID, &e.Status, &e.Time); err != nil {
		return nil, err
	}
	e.Time = e.Time.UTC()
	return &e, nil
}

// Append inserts one event.
func (s *PgStore) Append(ctx context.Context, userID int64, status bool, at time.Time) (*domain.ClockEvent, error) {
	e, err := scanEvent(s.db.QueryRow(ctx,
		`INSERT INTO clock_events (user_id, status, time) VALUES ($1, $2, $3) RETURNING `+eventColumns,
		userID, status, at))
	if err != nil {
		if _, ok := db.ForeignKeyViolation(err); ok {
			return nil, apperror.NewNotFoundError("User not found", err)
		}
		return nil, apperror.NewDatabaseError("Failed to record clock event", err)
	}
	return e, nil
}

// Last returns the latest event by time. Ties on time go to the later insert.
func (s *PgStore) Last(ctx context.Context, userID int64) (*domain.ClockEvent, error) {
	e, err := scanEvent(s.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM clock_events WHERE user_id = $1 ORDER BY time DESC, id DESC LIMIT 1`,
		userID))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, nil
		}
		return nil, apperror.NewDatabaseError("Failed to read last clock event", err)
	}
	return e, nil
}

// Query lists events in the window, oldest first.
func (s *PgStore) Query(ctx context.Context, userID int64, w Window) ([]domain.ClockEvent, error) {
	conditions := []string{"user_id = $1"}
	args := []any{userID}
	if w.Start != nil {
		args = append(args, *w.Start)
		conditions = append(conditions, "time >= $2")
	}
	if w.End != nil {
		args = append(args, *w.End)
		if w.Start != nil {
			conditions = append(conditions, "time <= $3")
		} else {
			conditions = append(conditions, "time <= $2")
		}
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+eventColumns+` FROM clock_events WHERE `+strings.Join(conditions, " AND ")+` ORDER BY time ASC, id ASC`,
		args...)
	if err != nil {
		return nil, apperror.NewDatabaseError("Failed to list clock events", err)
	}
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ClockEvent, error) {
		e, err := scanEvent(row)
		if err != nil {
			return domain.ClockEvent{}, err
		}
		return *e, nil
	})
	if err != nil {
		return nil, apperror.NewDatabaseError("Failed to list clock events", err)
	}
	return events, nil
}

// Serialize opens a transaction, takes pg_advisory_xact_lock(userID) and runs
// fn against the transaction. The lock is released on commit or rollback.
func (s *PgStore) Serialize(ctx context.Context, userID int64, fn func(Store) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, userID); err != nil {
			return apperror.NewDatabaseError("Failed to lock clock for user", err)
		}
		return fn(&PgStore{db: tx, pool: tx})
	})
}
