// Package status keeps a session-local, read-only mirror of the shared status
// store. The mirror is the only path that writes the cached snapshot: every
// mutation a session performs is followed by a Refresh, never by editing the
// cache directly.
package status

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alfredjeanlab/phonecheck/internal/model"
	"github.com/alfredjeanlab/phonecheck/internal/store"
)

// DefaultInterval is how often the mirror polls the store.
const DefaultInterval = 10 * time.Second

// fetchTimeout bounds a single poll so a hung store cannot stall the ticker.
const fetchTimeout = 5 * time.Second

type snapshot struct {
	status    model.SystemStatus
	updatedAt time.Time
}

// Mirror polls a store.StatusReader and exposes the latest snapshot.
type Mirror struct {
	reader   store.StatusReader
	interval time.Duration
	logger   *slog.Logger

	current  atomic.Pointer[snapshot]
	failures atomic.Int64
	lastErr  atomic.Pointer[error]
	onChange func(model.SystemStatus)

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMirror creates a mirror that refreshes every interval (DefaultInterval
// when interval <= 0). Until the first successful refresh the snapshot is the
// zero status.
func NewMirror(reader store.StatusReader, interval time.Duration, logger *slog.Logger) *Mirror {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &Mirror{
		reader:   reader,
		interval: interval,
		logger:   logger,
	}
	m.current.Store(&snapshot{})
	return m
}

// OnChange registers fn to be called after every refresh whose status differs
// from the previous one. Must be called before Start.
func (m *Mirror) OnChange(fn func(model.SystemStatus)) {
	m.onChange = fn
}

// Refresh fetches the status and swaps the snapshot. On failure the previous
// snapshot is kept and the error is recorded and returned.
func (m *Mirror) Refresh(ctx context.Context) error {
	st, err := m.reader.FetchStatus(ctx)
	if err != nil {
		m.failures.Add(1)
		m.lastErr.Store(&err)
		m.logger.Warn("status refresh failed", "err", err)
		return err
	}

	next := &snapshot{status: st.Normalize(), updatedAt: time.Now()}
	prev := m.current.Swap(next)
	if m.onChange != nil && prev.status != next.status {
		m.onChange(next.status)
	}
	return nil
}

// Snapshot returns the latest known status.
func (m *Mirror) Snapshot() model.SystemStatus {
	return m.current.Load().status
}

// Remaining returns the quota left according to the latest snapshot.
func (m *Mirror) Remaining() int {
	return m.Snapshot().Remaining()
}

// UpdatedAt returns when the snapshot was last refreshed successfully.
func (m *Mirror) UpdatedAt() time.Time {
	return m.current.Load().updatedAt
}

// Failures returns the number of failed refreshes since creation.
func (m *Mirror) Failures() int64 {
	return m.failures.Load()
}

// LastError returns the error of the most recent failed refresh, if any.
func (m *Mirror) LastError() error {
	if p := m.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}

// Start begins periodic refresh. It refreshes once immediately, then on each
// tick, until Stop is called.
func (m *Mirror) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.run(ctx)
	}()
}

// Stop cancels the poll loop and waits for an in-flight refresh to finish.
func (m *Mirror) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

func (m *Mirror) run(ctx context.Context) {
	m.tick(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

func (m *Mirror) tick(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	_ = m.Refresh(ctx)
}
