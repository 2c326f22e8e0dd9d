// Package memory implements store.StatusStore in process memory. It backs
// `serve --database-url memory://` for local trials and the tests of the
// packages that consume a status store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/alfredjeanlab/phonecheck/internal/model"
	"github.com/alfredjeanlab/phonecheck/internal/store"
)

// Store is an in-memory status store.
type Store struct {
	mu       sync.Mutex
	lockedBy string
	usage    map[string]int

	// Now returns the store clock; the day key for usage is derived from it.
	Now func() time.Time
}

// Compile-time check that Store implements store.StatusStore.
var _ store.StatusStore = (*Store)(nil)

// New creates an empty, unlocked store.
func New() *Store {
	return &Store{
		usage: make(map[string]int),
		Now:   time.Now,
	}
}

func (s *Store) FetchStatus(_ context.Context) (model.SystemStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.SystemStatus{
		Locked:    s.lockedBy != "",
		LockedBy:  s.lockedBy,
		DailyUsed: s.usage[store.DayKey(s.Now())],
	}.Normalize(), nil
}

func (s *Store) AcquireLock(_ context.Context, operator string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lockedBy != "" {
		return &store.LockHeldError{Holder: s.lockedBy}
	}
	s.lockedBy = operator
	return nil
}

func (s *Store) ReleaseLock(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockedBy = ""
	return nil
}

func (s *Store) RecordUsage(_ context.Context, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage[store.DayKey(s.Now())] += n
	return nil
}

// SetUsage overwrites today's counter.
func (s *Store) SetUsage(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage[store.DayKey(s.Now())] = n
}

func (s *Store) Close() error { return nil }
