// Package sqlite implements store.StatusStore on a local SQLite file, for a
// status service that runs on a single host without a database server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alfredjeanlab/phonecheck/internal/model"
	"github.com/alfredjeanlab/phonecheck/internal/store"
)

// Store provides SQLite-backed lock and usage persistence.
type Store struct {
	db *sql.DB

	// Now returns the store clock; the day key for usage is derived from it.
	Now func() time.Time
}

// Compile-time check that Store implements store.StatusStore.
var _ store.StatusStore = (*Store)(nil)

// New opens (or creates) the database at dbPath and applies the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer at a time keeps the compare-and-set update serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db, Now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) FetchStatus(ctx context.Context) (model.SystemStatus, error) {
	var (
		lockedBy sql.NullString
		used     int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT l.locked_by, COALESCE(u.used, 0)
		FROM system_lock l
		LEFT JOIN daily_usage u ON u.day = ?
		WHERE l.id = 1`,
		store.DayKey(s.Now()),
	).Scan(&lockedBy, &used)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.SystemStatus{}, nil
		}
		return model.SystemStatus{}, fmt.Errorf("fetch status: %w", err)
	}
	return model.SystemStatus{
		Locked:    lockedBy.Valid && lockedBy.String != "",
		LockedBy:  lockedBy.String,
		DailyUsed: used,
	}.Normalize(), nil
}

func (s *Store) AcquireLock(ctx context.Context, operator string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE system_lock
		SET locked_by = ?, locked_at = ?
		WHERE id = 1 AND locked_by IS NULL`,
		operator, s.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if n == 1 {
		return nil
	}

	var holder sql.NullString
	err = s.db.QueryRowContext(ctx, `SELECT locked_by FROM system_lock WHERE id = 1`).Scan(&holder)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read lock holder: %w", err)
	}
	return &store.LockHeldError{Holder: holder.String}
}

func (s *Store) ReleaseLock(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE system_lock SET locked_by = NULL, locked_at = NULL WHERE id = 1`); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

func (s *Store) RecordUsage(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_usage (day, used) VALUES (?, ?)
		ON CONFLICT(day) DO UPDATE SET used = used + excluded.used`,
		store.DayKey(s.Now()), n,
	)
	if err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}
