// Package lock wraps the shared lock with a refresh of the session's status
// mirror after every mutation attempt.
package lock

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alfredjeanlab/phonecheck/internal/store"
)

// Refresher re-reads the shared status. *status.Mirror implements it.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// AcquireError is returned when the lock could not be taken. Cause may be a
// *store.LockHeldError.
type AcquireError struct {
	Operator string
	Cause    error
}

func (e *AcquireError) Error() string {
	return fmt.Sprintf("acquire lock for %s: %v", e.Operator, e.Cause)
}

func (e *AcquireError) Unwrap() error { return e.Cause }

// ReleaseError is returned when the lock could not be cleared. The lock may
// remain held in the store until cleared by hand.
type ReleaseError struct {
	Cause error
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("release lock: %v", e.Cause)
}

func (e *ReleaseError) Unwrap() error { return e.Cause }

// Coordinator issues lock mutations and refreshes the mirror afterwards.
type Coordinator struct {
	locker store.Locker
	mirror Refresher
	logger *slog.Logger
}

// NewCoordinator creates a coordinator. mirror may be nil.
func NewCoordinator(locker store.Locker, mirror Refresher, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{locker: locker, mirror: mirror, logger: logger}
}

// Acquire takes the shared lock for operator.
func (c *Coordinator) Acquire(ctx context.Context, operator string) error {
	err := c.locker.AcquireLock(ctx, operator)
	c.refresh(ctx)
	if err != nil {
		return &AcquireError{Operator: operator, Cause: err}
	}
	c.logger.Info("lock acquired", "operator", operator)
	return nil
}

// Release clears the shared lock.
func (c *Coordinator) Release(ctx context.Context) error {
	err := c.locker.ReleaseLock(ctx)
	c.refresh(ctx)
	if err != nil {
		return &ReleaseError{Cause: err}
	}
	c.logger.Info("lock released")
	return nil
}

func (c *Coordinator) refresh(ctx context.Context) {
	if c.mirror == nil {
		return
	}
	if err := c.mirror.Refresh(ctx); err != nil {
		c.logger.Warn("refresh after lock change failed", "err", err)
	}
}
