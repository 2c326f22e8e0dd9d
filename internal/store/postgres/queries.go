package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alfredjeanlab/phonecheck/internal/model"
	"github.com/alfredjeanlab/phonecheck/internal/store"
)

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryFetchStatus(ctx context.Context, db executor, day string) (model.SystemStatus, error) {
	var (
		lockedBy sql.NullString
		used     int
	)
	err := db.QueryRowContext(ctx, `
		SELECT l.locked_by, COALESCE(u.used, 0)
		FROM system_lock l
		LEFT JOIN daily_usage u ON u.day = $1
		WHERE l.id = 1`,
		day,
	).Scan(&lockedBy, &used)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Lock row not seeded yet: nothing is held.
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

// queryAcquireLock sets the holder only if the lock is free. When the update
// matches no row the current holder is read back for the error.
func queryAcquireLock(ctx context.Context, db executor, operator string) error {
	res, err := db.ExecContext(ctx, `
		UPDATE system_lock
		SET locked_by = $1, locked_at = NOW()
		WHERE id = 1 AND locked_by IS NULL`,
		operator,
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
	err = db.QueryRowContext(ctx, `SELECT locked_by FROM system_lock WHERE id = 1`).Scan(&holder)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read lock holder: %w", err)
	}
	return &store.LockHeldError{Holder: holder.String}
}

func queryReleaseLock(ctx context.Context, db executor) error {
	_, err := db.ExecContext(ctx, `
		UPDATE system_lock
		SET locked_by = NULL, locked_at = NULL
		WHERE id = 1`)
	if err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

func queryRecordUsage(ctx context.Context, db executor, day string, n int) error {
	if n <= 0 {
		return nil
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO daily_usage (day, used) VALUES ($1, $2)
		ON CONFLICT (day) DO UPDATE SET used = daily_usage.used + EXCLUDED.used`,
		day, n,
	)
	if err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}
