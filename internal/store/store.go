// Package store defines the shared status store: the lock flag and the daily
// usage counter that every operator session reads and mutates.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alfredjeanlab/phonecheck/internal/model"
)

// ErrLockHeld is matched (via errors.Is) by every *LockHeldError.
var ErrLockHeld = errors.New("lock held")

// LockHeldError is returned by AcquireLock when another operator holds the lock.
type LockHeldError struct {
	Holder string
}

func (e *LockHeldError) Error() string {
	if e.Holder == "" {
		return "lock held by another operator"
	}
	return fmt.Sprintf("lock held by %s", e.Holder)
}

// Is lets errors.Is(err, ErrLockHeld) match.
func (e *LockHeldError) Is(target error) bool {
	return target == ErrLockHeld
}

// StatusReader fetches the current shared status.
type StatusReader interface {
	FetchStatus(ctx context.Context) (model.SystemStatus, error)
}

// Locker mutates the shared lock. AcquireLock succeeds only if the lock was
// free; ReleaseLock clears it unconditionally.
type Locker interface {
	AcquireLock(ctx context.Context, operator string) error
	ReleaseLock(ctx context.Context) error
}

// UsageRecorder adds n lookups to today's counter.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, n int) error
}

// StatusStore is implemented by every backend and by the HTTP client of the
// status service.
type StatusStore interface {
	StatusReader
	Locker
	UsageRecorder

	// Lifecycle
	Close() error
}

// DayKey formats the usage counter key for t.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
