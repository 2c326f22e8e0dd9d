package status

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alfredjeanlab/phonecheck/internal/model"
)

// fakeReader returns queued results in order, repeating the last one.
type fakeReader struct {
	mu      sync.Mutex
	results []fetchResult
	calls   int
}

type fetchResult struct {
	status model.SystemStatus
	err    error
}

func (f *fakeReader) FetchStatus(context.Context) (model.SystemStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.results[min(f.calls, len(f.results)-1)]
	f.calls++
	return r.status, r.err
}

func (f *fakeReader) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRefresh_ReplacesSnapshot(t *testing.T) {
	r := &fakeReader{results: []fetchResult{
		{status: model.SystemStatus{Locked: true, LockedBy: "alice", DailyUsed: 12}},
	}}
	m := NewMirror(r, time.Hour, quietLogger())

	if got := m.Snapshot(); got != (model.SystemStatus{}) {
		t.Fatalf("initial snapshot = %+v, want zero", got)
	}
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	want := model.SystemStatus{Locked: true, LockedBy: "alice", DailyUsed: 12}
	if got := m.Snapshot(); got != want {
		t.Errorf("Snapshot = %+v, want %+v", got, want)
	}
	if m.UpdatedAt().IsZero() {
		t.Error("UpdatedAt should be set after a successful refresh")
	}
}

func TestRefresh_FailureKeepsPreviousSnapshot(t *testing.T) {
	boom := errors.New("store unreachable")
	r := &fakeReader{results: []fetchResult{
		{status: model.SystemStatus{DailyUsed: 30}},
		{err: boom},
	}}
	m := NewMirror(r, time.Hour, quietLogger())
	ctx := context.Background()

	if err := m.Refresh(ctx); err != nil {
		t.Fatalf("first Refresh: %v", err)
	}
	if err := m.Refresh(ctx); !errors.Is(err, boom) {
		t.Fatalf("second Refresh = %v, want %v", err, boom)
	}
	if got := m.Snapshot().DailyUsed; got != 30 {
		t.Errorf("DailyUsed = %d, want 30 (previous snapshot)", got)
	}
	if m.Failures() != 1 {
		t.Errorf("Failures = %d, want 1", m.Failures())
	}
	if !errors.Is(m.LastError(), boom) {
		t.Errorf("LastError = %v, want %v", m.LastError(), boom)
	}
}

func TestRefresh_NormalizesSnapshot(t *testing.T) {
	r := &fakeReader{results: []fetchResult{
		{status: model.SystemStatus{LockedBy: "stale", DailyUsed: 500}},
	}}
	m := NewMirror(r, time.Hour, quietLogger())
	_ = m.Refresh(context.Background())

	want := model.SystemStatus{DailyUsed: model.DailyLimit}
	if got := m.Snapshot(); got != want {
		t.Errorf("Snapshot = %+v, want %+v", got, want)
	}
}

func TestOnChange_FiresOnlyOnDifference(t *testing.T) {
	r := &fakeReader{results: []fetchResult{
		{status: model.SystemStatus{DailyUsed: 1}},
		{status: model.SystemStatus{DailyUsed: 1}},
		{status: model.SystemStatus{DailyUsed: 2}},
	}}
	m := NewMirror(r, time.Hour, quietLogger())
	var seen []int
	m.OnChange(func(s model.SystemStatus) { seen = append(seen, s.DailyUsed) })

	for range 3 {
		_ = m.Refresh(context.Background())
	}
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("OnChange saw %v, want [1 2]", seen)
	}
}

func TestStart_PollsUntilStopped(t *testing.T) {
	r := &fakeReader{results: []fetchResult{
		{err: errors.New("flaky")},
		{status: model.SystemStatus{DailyUsed: 7}},
	}}
	m := NewMirror(r, 5*time.Millisecond, quietLogger())
	m.Start()

	deadline := time.Now().Add(2 * time.Second)
	for m.Snapshot().DailyUsed != 7 {
		if time.Now().After(deadline) {
			m.Stop()
			t.Fatal("mirror never recovered after a failed poll")
		}
		time.Sleep(time.Millisecond)
	}
	m.Stop()

	calls := r.Calls()
	time.Sleep(20 * time.Millisecond)
	if r.Calls() != calls {
		t.Error("mirror kept polling after Stop")
	}
}
