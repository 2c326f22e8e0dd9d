package model

import "fmt"

// RunState is the phase of a batch run.
type RunState string

const (
	RunIdle      RunState = "idle"
	RunAdmitting RunState = "admitting"
	RunAcquiring RunState = "acquiring"
	RunRunning   RunState = "running"
	RunReporting RunState = "reporting"
	RunReleasing RunState = "releasing"
	RunComplete  RunState = "complete"
	RunAborted   RunState = "aborted"
)

// String returns the string representation of the state.
func (s RunState) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are possible.
func (s RunState) IsTerminal() bool {
	return s == RunComplete || s == RunAborted
}

var allowedRunTransitions = map[RunState]map[RunState]struct{}{
	RunIdle: {
		RunAdmitting: {},
	},
	RunAdmitting: {
		RunAcquiring: {},
		RunAborted:   {},
	},
	RunAcquiring: {
		RunRunning: {},
		RunAborted: {},
	},
	RunRunning: {
		RunReporting: {},
		RunReleasing: {}, // loop panicked
	},
	RunReporting: {
		RunReleasing: {},
	},
	RunReleasing: {
		RunComplete: {},
	},
	RunComplete: {},
	RunAborted:  {},
}

// ValidateRunState returns an error for unknown states.
func ValidateRunState(s RunState) error {
	if _, ok := allowedRunTransitions[s]; !ok {
		return fmt.Errorf("invalid run state: %q", s)
	}
	return nil
}

// ValidateRunTransition checks that from -> to is an edge of the run state
// machine. A terminal state may only be left by starting a new run, which
// resets to RunIdle outside of this table.
func ValidateRunTransition(from, to RunState) error {
	if err := ValidateRunState(from); err != nil {
		return err
	}
	if err := ValidateRunState(to); err != nil {
		return err
	}
	if _, ok := allowedRunTransitions[from][to]; !ok {
		return fmt.Errorf("invalid run transition: %s -> %s", from, to)
	}
	return nil
}

// RunProgress counts processed identifiers of the active run.
type RunProgress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}
