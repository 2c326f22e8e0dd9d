package quota

import (
	"errors"
	"testing"

	"github.com/alfredjeanlab/phonecheck/internal/model"
)

func TestCanAdmit(t *testing.T) {
	tests := []struct {
		name      string
		snapshot  model.SystemStatus
		n         int
		admit     bool
		remaining int
		kind      DenialKind // empty when no reason is expected
		holder    string
	}{
		{
			name:      "exact remaining admits",
			snapshot:  model.SystemStatus{DailyUsed: 95},
			n:         5,
			admit:     true,
			remaining: 5,
		},
		{
			name:      "one over remaining is denied",
			snapshot:  model.SystemStatus{DailyUsed: 95},
			n:         6,
			remaining: 5,
			kind:      DenialQuotaExceeded,
		},
		{
			name:      "locked is busy",
			snapshot:  model.SystemStatus{Locked: true, LockedBy: "alice"},
			n:         1,
			remaining: 100,
			kind:      DenialBusy,
			holder:    "alice",
		},
		{
			name:      "locked wins over quota",
			snapshot:  model.SystemStatus{Locked: true, LockedBy: "alice", DailyUsed: 100},
			n:         50,
			remaining: 0,
			kind:      DenialBusy,
			holder:    "alice",
		},
		{
			name:      "empty batch",
			snapshot:  model.SystemStatus{},
			n:         0,
			remaining: 100,
		},
		{
			name:      "usage above limit is clamped",
			snapshot:  model.SystemStatus{DailyUsed: 140},
			n:         1,
			remaining: 0,
			kind:      DenialQuotaExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CanAdmit(tt.snapshot, tt.n)
			if d.Admit != tt.admit {
				t.Errorf("Admit = %v, want %v", d.Admit, tt.admit)
			}
			if d.Remaining != tt.remaining {
				t.Errorf("Remaining = %d, want %d", d.Remaining, tt.remaining)
			}
			if tt.kind == "" {
				if d.Reason != nil {
					t.Errorf("Reason = %v, want nil", d.Reason)
				}
				return
			}
			if d.Reason == nil {
				t.Fatalf("Reason = nil, want %s", tt.kind)
			}
			if d.Reason.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", d.Reason.Kind, tt.kind)
			}
			if d.Reason.Holder != tt.holder {
				t.Errorf("Holder = %q, want %q", d.Reason.Holder, tt.holder)
			}
		})
	}
}

func TestCanAdmit_ScenarioA_RemainingUnchanged(t *testing.T) {
	snap := model.SystemStatus{DailyUsed: 95}
	before := snap.Remaining()
	d := CanAdmit(snap, 5)
	if !d.Admit || before != 5 || snap.Remaining() != 5 {
		t.Errorf("admit=%v before=%d after=%d, want true 5 5", d.Admit, before, snap.Remaining())
	}
}

func TestCanAdmit_ScenarioB_QuotaExceededRemaining(t *testing.T) {
	d := CanAdmit(model.SystemStatus{DailyUsed: 95}, 6)
	if d.Reason == nil || d.Reason.Remaining != 5 {
		t.Fatalf("Reason = %+v, want QuotaExceeded(5)", d.Reason)
	}
	if got, want := d.Reason.Error(), "daily limit exceeded: 5 lookups remaining today"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestCanAdmit_LockedAlwaysBusy(t *testing.T) {
	for used := 0; used <= model.DailyLimit; used++ {
		for _, n := range []int{1, 5, model.DailyLimit, model.DailyLimit + 1} {
			d := CanAdmit(model.SystemStatus{Locked: true, LockedBy: "alice", DailyUsed: used}, n)
			if d.Admit || d.Reason == nil || d.Reason.Kind != DenialBusy {
				t.Fatalf("used=%d n=%d: got %+v, want busy denial", used, n, d)
			}
		}
	}
}

func TestCanAdmit_UnlockedAdmitsIffWithinRemaining(t *testing.T) {
	for used := 0; used <= model.DailyLimit; used++ {
		for n := 1; n <= model.DailyLimit+1; n++ {
			snap := model.SystemStatus{DailyUsed: used}
			d := CanAdmit(snap, n)
			want := n <= model.DailyLimit-used
			if d.Admit != want {
				t.Fatalf("used=%d n=%d: Admit = %v, want %v", used, n, d.Admit, want)
			}
			if again := CanAdmit(snap, n); again.Admit != d.Admit || again.Remaining != d.Remaining {
				t.Fatalf("used=%d n=%d: decision not stable", used, n)
			}
		}
	}
}

func TestDenial_IsError(t *testing.T) {
	var err error = &Denial{Kind: DenialBusy, Holder: "bob"}
	var d *Denial
	if !errors.As(err, &d) || d.Holder != "bob" {
		t.Fatalf("errors.As failed for %v", err)
	}
	if got, want := err.Error(), "system busy: bob is running a check"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
