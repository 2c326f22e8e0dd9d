// Package quota decides whether a batch may start given the shared status.
package quota

import (
	"fmt"

	"github.com/alfredjeanlab/phonecheck/internal/model"
)

// DenialKind names why a batch was refused.
type DenialKind string

const (
	DenialBusy          DenialKind = "busy"
	DenialQuotaExceeded DenialKind = "quota_exceeded"
)

// Denial is the reason CanAdmit refused a batch. It is returned as an error by
// the runner.
type Denial struct {
	Kind      DenialKind
	Holder    string // set for DenialBusy
	Remaining int    // set for DenialQuotaExceeded
}

func (d *Denial) Error() string {
	switch d.Kind {
	case DenialBusy:
		if d.Holder == "" {
			return "system busy: another operator is running a check"
		}
		return fmt.Sprintf("system busy: %s is running a check", d.Holder)
	case DenialQuotaExceeded:
		return fmt.Sprintf("daily limit exceeded: %d lookups remaining today", d.Remaining)
	}
	return fmt.Sprintf("denied: %s", d.Kind)
}

// Decision is the result of CanAdmit.
type Decision struct {
	Admit     bool
	Remaining int
	Reason    *Denial
}

// CanAdmit reports whether a batch of n identifiers may start against
// snapshot. A held lock wins over the quota check. n <= 0 is never admitted
// and carries no reason; callers treat it as a validation failure.
func CanAdmit(snapshot model.SystemStatus, n int) Decision {
	snapshot = snapshot.Normalize()
	remaining := snapshot.Remaining()

	switch {
	case snapshot.Locked:
		return Decision{
			Remaining: remaining,
			Reason:    &Denial{Kind: DenialBusy, Holder: snapshot.LockedBy},
		}
	case n <= 0:
		return Decision{Remaining: remaining}
	case n > remaining:
		return Decision{
			Remaining: remaining,
			Reason:    &Denial{Kind: DenialQuotaExceeded, Remaining: remaining},
		}
	}
	return Decision{Admit: true, Remaining: remaining}
}
