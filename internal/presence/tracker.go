// Package presence tracks which operators have recently talked to the status
// service.
//
// The server calls Record for every lock, unlock and usage request it
// handles; GET /v1/operators returns the roster. State is in memory only and
// is lost on restart.
package presence

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Entry is a single operator's presence state.
type Entry struct {
	Name        string    `json:"name"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
	LastAction  string    `json:"last_action"` // "lock", "unlock" or "usage"
	Actions     int64     `json:"actions"`
	IdleSecs    float64   `json:"idle_secs"`
	HoldingLock bool      `json:"holding_lock,omitempty"`
}

// Tracker maintains an in-memory roster of operators.
type Tracker struct {
	mu        sync.RWMutex
	operators map[string]*operatorState
	now       func() time.Time
}

type operatorState struct {
	firstSeen   time.Time
	lastSeen    time.Time
	lastAction  string
	actions     int64
	holdingLock bool
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{
		operators: make(map[string]*operatorState),
		now:       time.Now,
	}
}

// Record notes that operator performed action. Empty names are ignored.
func (t *Tracker) Record(operator, action string) {
	if operator == "" {
		return
	}

	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.operators[operator]
	if !ok {
		state = &operatorState{firstSeen: now}
		t.operators[operator] = state
	}
	state.lastSeen = now
	state.lastAction = action
	state.actions++

	switch action {
	case "lock":
		for _, other := range t.operators {
			other.holdingLock = false
		}
		state.holdingLock = true
	case "unlock":
		for _, other := range t.operators {
			other.holdingLock = false
		}
	}
}

// LockReleased clears the lock marker on every operator. The server calls it
// when a release arrives without an operator name.
func (t *Tracker) LockReleased() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, state := range t.operators {
		state.holdingLock = false
	}
}

// Roster returns a snapshot of all tracked operators, most recently active
// first. Operators idle longer than staleThreshold are left out; pass 0 to
// include everyone.
func (t *Tracker) Roster(staleThreshold time.Duration) []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := t.now()
	entries := make([]Entry, 0, len(t.operators))
	for name, state := range t.operators {
		idle := now.Sub(state.lastSeen)
		if staleThreshold > 0 && idle > staleThreshold {
			continue
		}
		entries = append(entries, Entry{
			Name:        name,
			FirstSeen:   state.firstSeen,
			LastSeen:    state.lastSeen,
			LastAction:  state.lastAction,
			Actions:     state.actions,
			IdleSecs:    idle.Seconds(),
			HoldingLock: state.holdingLock,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].LastSeen.Equal(entries[j].LastSeen) {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].LastSeen.After(entries[j].LastSeen)
	})
	return entries
}

// Evict drops operators idle longer than maxIdle, except the one currently
// marked as holding the lock. It returns the number removed.
func (t *Tracker) Evict(maxIdle time.Duration) int {
	now := t.now()

	t.mu.Lock()
	var evicted []string
	for name, state := range t.operators {
		if state.holdingLock {
			continue
		}
		if now.Sub(state.lastSeen) > maxIdle {
			delete(t.operators, name)
			evicted = append(evicted, name)
		}
	}
	t.mu.Unlock()

	for _, name := range evicted {
		slog.Info("presence: evicted idle operator", "operator", name, "max_idle", maxIdle)
	}
	return len(evicted)
}
