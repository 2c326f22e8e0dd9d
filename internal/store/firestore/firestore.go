// Package firestore implements store.StatusStore on Cloud Firestore. The lock
// lives in one document and acquire runs in a transaction, so two sessions
// can never both take it.
package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/alfredjeanlab/phonecheck/internal/model"
	"github.com/alfredjeanlab/phonecheck/internal/store"
)

// DefaultCollection holds the lock and usage documents.
const DefaultCollection = "phonecheck"

const (
	lockDocID         = "system_lock"
	usageDocPrefix    = "daily_limit_"
	usageCounterField = "used"
)

type lockDoc struct {
	LockedBy string    `firestore:"locked_by"`
	LockedAt time.Time `firestore:"locked_at"`
}

type usageDoc struct {
	Used int64 `firestore:"used"`
}

// Store is a Firestore-backed status store.
type Store struct {
	client     *firestore.Client
	collection string

	// Now returns the store clock; the day key for usage is derived from it.
	Now func() time.Time
}

// Compile-time check that Store implements store.StatusStore.
var _ store.StatusStore = (*Store)(nil)

// New creates a Firestore client for projectID. Credentials are discovered by
// the client library unless opts override them.
func New(ctx context.Context, projectID string, opts ...option.ClientOption) (*Store, error) {
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return &Store{client: client, collection: DefaultCollection, Now: time.Now}, nil
}

// Close closes the Firestore client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) lockRef() *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(lockDocID)
}

func (s *Store) usageRef() *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(usageDocID(s.Now()))
}

func usageDocID(t time.Time) string {
	return usageDocPrefix + store.DayKey(t)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func (s *Store) FetchStatus(ctx context.Context) (model.SystemStatus, error) {
	var l lockDoc
	snap, err := s.lockRef().Get(ctx)
	switch {
	case err == nil:
		if err := snap.DataTo(&l); err != nil {
			return model.SystemStatus{}, fmt.Errorf("decode lock: %w", err)
		}
	case !isNotFound(err):
		return model.SystemStatus{}, fmt.Errorf("fetch lock: %w", err)
	}

	var u usageDoc
	snap, err = s.usageRef().Get(ctx)
	switch {
	case err == nil:
		if err := snap.DataTo(&u); err != nil {
			return model.SystemStatus{}, fmt.Errorf("decode usage: %w", err)
		}
	case !isNotFound(err):
		return model.SystemStatus{}, fmt.Errorf("fetch usage: %w", err)
	}

	return model.SystemStatus{
		Locked:    l.LockedBy != "",
		LockedBy:  l.LockedBy,
		DailyUsed: int(u.Used),
	}.Normalize(), nil
}

func (s *Store) AcquireLock(ctx context.Context, operator string) error {
	ref := s.lockRef()
	var held *store.LockHeldError
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		held = nil
		snap, err := tx.Get(ref)
		if err != nil && !isNotFound(err) {
			return err
		}
		if err == nil {
			var l lockDoc
			if err := snap.DataTo(&l); err != nil {
				return err
			}
			if l.LockedBy != "" {
				held = &store.LockHeldError{Holder: l.LockedBy}
				return held
			}
		}
		return tx.Set(ref, lockDoc{LockedBy: operator, LockedAt: s.Now().UTC()})
	})
	if held != nil {
		return held
	}
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	return nil
}

func (s *Store) ReleaseLock(ctx context.Context) error {
	if _, err := s.lockRef().Set(ctx, lockDoc{}); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

func (s *Store) RecordUsage(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	_, err := s.usageRef().Set(ctx, map[string]any{
		usageCounterField: firestore.Increment(n),
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}
