package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/phonecheck/internal/model"
)

// Log is the append-only, leveled event log of one session. Append is the only
// mutator besides Reset, which a runner calls at the start of each run.
type Log struct {
	mu        sync.Mutex
	entries   []model.LogEntry
	observers map[int]func(model.LogEntry)
	nextID    int

	// Now stamps entries; tests may replace it.
	Now func() time.Time
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{
		observers: make(map[int]func(model.LogEntry)),
		Now:       time.Now,
	}
}

// Append records message at level and notifies observers in append order.
func (l *Log) Append(message string, level model.Level) model.LogEntry {
	l.mu.Lock()
	entry := model.LogEntry{Timestamp: l.Now(), Message: message, Level: level}
	l.entries = append(l.entries, entry)
	observers := make([]func(model.LogEntry), 0, len(l.observers))
	for id := 0; id < l.nextID; id++ {
		if fn, ok := l.observers[id]; ok {
			observers = append(observers, fn)
		}
	}
	l.mu.Unlock()

	for _, fn := range observers {
		fn(entry)
	}
	return entry
}

// Info, Success, Warning and Error append at the matching level.
func (l *Log) Info(message string) model.LogEntry    { return l.Append(message, model.LevelInfo) }
func (l *Log) Success(message string) model.LogEntry { return l.Append(message, model.LevelSuccess) }
func (l *Log) Warning(message string) model.LogEntry { return l.Append(message, model.LevelWarning) }
func (l *Log) Error(message string) model.LogEntry   { return l.Append(message, model.LevelError) }

// Entries returns a copy of every entry in append order.
func (l *Log) Entries() []model.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Reset drops all entries. Observers stay registered.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Subscribe registers fn to receive every subsequent entry. Observers run
// synchronously on the appending goroutine. The returned function removes fn.
func (l *Log) Subscribe(fn func(model.LogEntry)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	l.observers[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.observers, id)
	}
}

// Forward returns a log observer that mirrors entries to pub under the run's
// log topic. runID is read per entry so one observer can serve several runs.
// Publish failures are logged and otherwise ignored.
func Forward(pub Publisher, runID func() string, operator string, logger *slog.Logger) func(model.LogEntry) {
	if logger == nil {
		logger = slog.Default()
	}
	return func(entry model.LogEntry) {
		id := runID()
		if id == "" {
			return
		}
		ev := RunLogged{RunID: id, Operator: operator, Entry: entry}
		if err := pub.Publish(context.Background(), RunLogTopic(id), ev); err != nil {
			logger.Warn("failed to publish run log entry", "run", id, "err", err)
		}
	}
}
